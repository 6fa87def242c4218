package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// googleJWKSURL serves the public keys Google signs ID tokens with.
const googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// ErrInvalidIDToken is returned when a Google ID token fails
// signature, issuer or audience checks.
var ErrInvalidIDToken = errors.New("invalid google id token")

// GoogleIdentity is the subset of ID-token claims the application
// cares about when provisioning an account.
type GoogleIdentity struct {
	Email string
	Name  string
}

// VerifyGoogleIDToken validates a Google Sign-In ID token against
// Google's JWKS and returns the verified email and display name.
// The audience must match the application's OAuth client id.  The
// JWKS document is fetched per call; callers sit behind the auth
// rate limiter.
func VerifyGoogleIDToken(ctx context.Context, rawToken, audience string) (GoogleIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleJWKSURL, nil)
	if err != nil {
		return GoogleIdentity{}, err
	}
	client := &http.Client{Timeout: 5 * time.Second}
	res, err := client.Do(req)
	if err != nil {
		return GoogleIdentity{}, fmt.Errorf("fetch google jwks: %w", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return GoogleIdentity{}, err
	}

	jwks, err := keyfunc.NewJSON(body)
	if err != nil {
		return GoogleIdentity{}, fmt.Errorf("parse google jwks: %w", err)
	}
	// Keyfunc selects the key matching the token's kid header.
	token, err := jwt.Parse(rawToken, jwks.Keyfunc,
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return GoogleIdentity{}, ErrInvalidIDToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return GoogleIdentity{}, ErrInvalidIDToken
	}
	if iss, _ := claims["iss"].(string); !strings.HasSuffix(iss, "accounts.google.com") {
		return GoogleIdentity{}, ErrInvalidIDToken
	}
	if verified, _ := claims["email_verified"].(bool); !verified {
		return GoogleIdentity{}, ErrInvalidIDToken
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return GoogleIdentity{}, ErrInvalidIDToken
	}
	name, _ := claims["name"].(string)
	if name == "" {
		name = emailLocalPart(email)
	}
	return GoogleIdentity{Email: strings.ToLower(email), Name: name}, nil
}

// emailLocalPart returns the part before the "@", or the whole
// string when there is none.
func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
