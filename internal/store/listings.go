package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"jobmill-engine/internal/domain"
)

const listingCols = `id, slug, title, description, company_name, tags, seniority,
contract_type, type, remote, city, country, state, salary, plan,
apply_link, relative_link, contact_email, source, created_at, updated_at, expires_on`

// SaveListing inserts l unless a unique key (relative link, slug, id)
// already holds. The uniqueness conflict surfaces as added=false, not as
// an error; it is the store-level backstop behind the in-memory resolver.
func (s *Store) SaveListing(ctx context.Context, l domain.Listing) (bool, error) {
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return false, fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO listings (`+listingCols+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		l.ID, l.Slug, l.Title, l.Description, l.CompanyName, string(tagsJSON), l.Seniority,
		l.ContractType, l.Type, l.Remote, l.City, l.Country, l.State, l.Salary, l.Plan,
		l.ApplyLink, l.RelativeLink, l.ContactEmail, l.Source,
		l.CreatedAt.UTC().Format(time.RFC3339), l.UpdatedAt.UTC().Format(time.RFC3339),
		l.ExpiresOn.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert listing: %w", err)
	}

	// changes() is connection-scoped; the pool is pinned to one conn
	var changes int
	if err := s.db.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); err != nil {
		return true, nil
	}
	return changes > 0, nil
}

// DedupeKeys projects every known link key: all non-empty relative links
// plus all non-empty apply links, so both key styles seed the resolver.
func (s *Store) DedupeKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT relative_link FROM listings WHERE relative_link != ''
UNION
SELECT apply_link FROM listings WHERE apply_link != '';`)
	if err != nil {
		return nil, fmt.Errorf("load dedupe keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *Store) FindBySlug(ctx context.Context, slug string) (*domain.Listing, error) {
	return s.findOne(ctx, "slug = ?", slug)
}

func (s *Store) FindByRelativeLink(ctx context.Context, link string) (*domain.Listing, error) {
	return s.findOne(ctx, "relative_link = ?", link)
}

func (s *Store) FindByApplyLink(ctx context.Context, link string) (*domain.Listing, error) {
	return s.findOne(ctx, "apply_link = ?", link)
}

func (s *Store) findOne(ctx context.Context, where string, arg any) (*domain.Listing, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+listingCols+` FROM listings WHERE `+where+` LIMIT 1;`, arg)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListBySource returns a source's listings in ingestion order.
func (s *Store) ListBySource(ctx context.Context, source string) ([]domain.Listing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listingCols+` FROM listings WHERE source = ? ORDER BY created_at, id;`, source)
	if err != nil {
		return nil, fmt.Errorf("list by source: %w", err)
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings;`).Scan(&n)
	return n, err
}

func (s *Store) CountBySource(ctx context.Context, source string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings WHERE source = ?;`, source).Scan(&n)
	return n, err
}

// DeleteBySource removes every listing ingested from one source.
func (s *Store) DeleteBySource(ctx context.Context, source string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE source = ?;`, source)
	if err != nil {
		return 0, fmt.Errorf("delete by source: %w", err)
	}
	return res.RowsAffected()
}

// DeleteCreatedBetween removes listings created in [from, to). RFC3339
// strings in UTC compare lexicographically, so the range works on TEXT.
func (s *Store) DeleteCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM listings WHERE created_at >= ? AND created_at < ?;`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("delete by created window: %w", err)
	}
	return res.RowsAffected()
}

// DeleteExpired removes listings whose expiry has passed.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE expires_on < ?;`,
		now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (domain.Listing, error) {
	var l domain.Listing
	var tagsJSON, createdAt, updatedAt, expiresOn string
	err := row.Scan(
		&l.ID, &l.Slug, &l.Title, &l.Description, &l.CompanyName, &tagsJSON, &l.Seniority,
		&l.ContractType, &l.Type, &l.Remote, &l.City, &l.Country, &l.State, &l.Salary, &l.Plan,
		&l.ApplyLink, &l.RelativeLink, &l.ContactEmail, &l.Source,
		&createdAt, &updatedAt, &expiresOn,
	)
	if err != nil {
		return domain.Listing{}, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &l.Tags); err != nil {
		return domain.Listing{}, fmt.Errorf("decode tags: %w", err)
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	l.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	l.ExpiresOn, _ = time.Parse(time.RFC3339, expiresOn)
	return l, nil
}
