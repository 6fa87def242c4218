package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/Hassanskary/unistay/internal/model"
)

// HomeSearchQuery defines filters & pagination for searching approved homes.
type HomeSearchQuery struct {
	Text        string
	City        string
	Gender      string
	HomeType    string
	MinCents    uint32
	MaxCents    uint32
	FacilityIDs []uint64
	Page        int
	PageSize    int
}

// HomeSearchRow is the public projection of a home returned by search.
type HomeSearchRow struct {
	ID            uint64  `json:"id"`
	Title         string  `json:"title"`
	City          string  `json:"city"`
	Gender        string  `json:"gender"`
	HomeType      string  `json:"home_type"`
	DistanceM     int     `json:"distance_m"`
	MinPriceCents uint32  `json:"min_price_cents"`
	MinPrice      float64 `json:"min_price"`
	FreeBeds      uint32  `json:"free_beds"`
}

// searchCandidateCap bounds how many filtered rows are pulled for
// fuzzy re-ranking before pagination is applied in Go.
const searchCandidateCap = 500

// Search returns a page of approved homes matching the structured
// filters.  When free text is present, candidates are fetched without
// a LIKE restriction and re-ranked by Levenshtein distance against
// title and city, so near-miss spellings still match; pagination then
// happens over the ranked list.
func (r *HomeRepo) Search(ctx context.Context, q HomeSearchQuery) ([]HomeSearchRow, int64, error) {
	where := []string{"h.status = ?"}
	args := []any{model.HomeStatusApproved}

	if q.City != "" {
		where = append(where, "LOWER(h.city) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.City)+"%")
	}
	if q.Gender != "" {
		where = append(where, "h.gender = ?")
		args = append(args, strings.ToUpper(q.Gender))
	}
	if q.HomeType != "" {
		where = append(where, "h.home_type = ?")
		args = append(args, strings.ToUpper(q.HomeType))
	}
	if q.MinCents > 0 {
		where = append(where, "COALESCE(p.min_price,0) >= ?")
		args = append(args, q.MinCents)
	}
	if q.MaxCents > 0 {
		where = append(where, "COALESCE(p.min_price,0) <= ?")
		args = append(args, q.MaxCents)
	}
	for _, fid := range q.FacilityIDs {
		where = append(where, "EXISTS (SELECT 1 FROM home_facilities hf WHERE hf.home_id = h.id AND hf.facility_id = ?)")
		args = append(args, fid)
	}

	cond := strings.Join(where, " AND ")
	base := `FROM homes h
		LEFT JOIN (SELECT home_id, MIN(price_cents) AS min_price, SUM(beds) AS free_beds
		           FROM rooms GROUP BY home_id) p ON p.home_id = h.id
		WHERE ` + cond

	dataSQL := `SELECT h.id, h.title, h.city, h.gender, h.home_type, h.distance_m,
			COALESCE(p.min_price, 0), COALESCE(p.free_beds, 0) ` + base + `
		ORDER BY h.created_at DESC`

	text := strings.TrimSpace(strings.ToLower(q.Text))
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	if text == "" {
		var total int64
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) "+base, args...).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err := r.queryRows(ctx, dataSQL+" LIMIT ? OFFSET ?", append(append([]any{}, args...), limit, offset)...)
		if err != nil {
			return nil, 0, err
		}
		return rows, total, nil
	}

	candidates, err := r.queryRows(ctx, dataSQL+" LIMIT ?", append(append([]any{}, args...), searchCandidateCap)...)
	if err != nil {
		return nil, 0, err
	}
	ranked := RankByDistance(candidates, text)
	total := int64(len(ranked))
	if offset >= len(ranked) {
		return []HomeSearchRow{}, total, nil
	}
	end := offset + limit
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[offset:end], total, nil
}

// RankByDistance orders candidates by their fuzzy distance to the
// query and drops rows that are neither a substring match nor within
// the edit-distance cutoff.  The cutoff scales with the query length
// so short queries stay strict.
func RankByDistance(candidates []HomeSearchRow, text string) []HomeSearchRow {
	type scored struct {
		row  HomeSearchRow
		dist int
	}
	cutoff := len(text) / 2
	if cutoff < 2 {
		cutoff = 2
	}
	keep := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		d := fuzzyDistance(text, c.Title)
		if cd := fuzzyDistance(text, c.City); cd < d {
			d = cd
		}
		if d > cutoff {
			continue
		}
		keep = append(keep, scored{row: c, dist: d})
	}
	sort.SliceStable(keep, func(i, j int) bool { return keep[i].dist < keep[j].dist })
	out := make([]HomeSearchRow, len(keep))
	for i, s := range keep {
		out[i] = s.row
	}
	return out
}

// fuzzyDistance returns 0 for substring matches and otherwise the
// smallest Levenshtein distance between the query and any single word
// of the field.
func fuzzyDistance(query, field string) int {
	f := strings.ToLower(field)
	if strings.Contains(f, query) {
		return 0
	}
	best := len(query) + len(f)
	for _, w := range strings.Fields(f) {
		if d := levenshtein.ComputeDistance(query, w); d < best {
			best = d
		}
	}
	return best
}

func (r *HomeRepo) queryRows(ctx context.Context, q string, args ...any) ([]HomeSearchRow, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]HomeSearchRow, 0)
	for rows.Next() {
		var d HomeSearchRow
		if err := rows.Scan(&d.ID, &d.Title, &d.City, &d.Gender, &d.HomeType,
			&d.DistanceM, &d.MinPriceCents, &d.FreeBeds); err != nil {
			return nil, err
		}
		d.MinPrice = float64(d.MinPriceCents) / 100.0
		out = append(out, d)
	}
	return out, rows.Err()
}
