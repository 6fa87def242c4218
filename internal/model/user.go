package model

import "time"

// Roles stored in the users.role column and embedded in access tokens.
const (
	RoleUser  = "USER"
	RoleOwner = "OWNER"
	RoleAdmin = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table.  A user is either a student (USER), a landlord
// (OWNER) or a moderator (ADMIN).  Accounts provisioned through
// Google sign-in carry a social_provider value and an empty
// password hash.
//
// Fields:
//  ID             - primary key identifier of the user.
//  Name           - display name.
//  Email          - unique email address.
//  PasswordHash   - bcrypt hashed password (empty for social accounts).
//  Phone          - optional contact phone number.
//  Role           - one of USER, OWNER, ADMIN.
//  SocialProvider - external identity provider (e.g. GOOGLE), nil for local accounts.
//  IsActive       - whether the account is active.
//  CreatedAt      - timestamp of creation.
//  UpdatedAt      - timestamp of last update.
type User struct {
	ID             uint64    // users.id
	Name           string    // users.name
	Email          string    // users.email
	PasswordHash   string    // users.password_hash
	Phone          *string   // users.phone (nullable)
	Role           string    // users.role
	SocialProvider *string   // users.social_provider (nullable)
	IsActive       bool      // users.is_active
	CreatedAt      time.Time // users.created_at
	UpdatedAt      time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        - primary key identifier.
//  UserID    - owner of the token.
//  TokenHash - SHA-256 hex digest of the token value.
//  ExpiresAt - expiration timestamp of the token.
//  RevokedAt - when the token was revoked (null if still active).
//  CreatedAt - timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
