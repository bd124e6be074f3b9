package photo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const photoColumns = `id, owner_id, storage_key, original_name, url,
	size_bytes, mime_type, description, tags, is_public, views, uploaded_at`

// Store is the metadata persistence contract. Satisfied by *Repository;
// tests substitute a mock.
type Store interface {
	Create(ctx context.Context, ownerID, storageKey, originalName, url string, sizeBytes int64, mimeType string) (*Photo, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Photo, int, error)
	ListPublic(ctx context.Context, limit, offset int) ([]Photo, int, error)
	Find(ctx context.Context, id string) (*Photo, error)
	FindOwned(ctx context.Context, id, ownerID string) (*Photo, error)
	DeleteByID(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	UpdateOwned(ctx context.Context, id, ownerID string, upd Update) (*Photo, error)
}

// Repository handles all photo database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new photo record and returns it.
func (r *Repository) Create(ctx context.Context, ownerID, storageKey, originalName, url string, sizeBytes int64, mimeType string) (*Photo, error) {
	p := &Photo{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO photos (owner_id, storage_key, original_name, url, size_bytes, mime_type)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+photoColumns,
		ownerID, storageKey, originalName, url, sizeBytes, mimeType,
	).Scan(scanTargets(p)...)
	if err != nil {
		return nil, fmt.Errorf("create photo: %w", err)
	}
	return p, nil
}

// ListByOwner returns one page of the owner's photos, most recent first,
// together with the owner's full photo count.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Photo, int, error) {
	return r.list(ctx,
		`SELECT `+photoColumns+` FROM photos
		 WHERE owner_id = $1
		 ORDER BY uploaded_at DESC
		 LIMIT $2 OFFSET $3`,
		`SELECT COUNT(*) FROM photos WHERE owner_id = $1`,
		[]any{ownerID, limit, offset}, []any{ownerID},
	)
}

// ListPublic returns one page of public photos, most recent first,
// together with the full public count.
func (r *Repository) ListPublic(ctx context.Context, limit, offset int) ([]Photo, int, error) {
	return r.list(ctx,
		`SELECT `+photoColumns+` FROM photos
		 WHERE is_public
		 ORDER BY uploaded_at DESC
		 LIMIT $1 OFFSET $2`,
		`SELECT COUNT(*) FROM photos WHERE is_public`,
		[]any{limit, offset}, nil,
	)
}

func (r *Repository) list(ctx context.Context, query, countQuery string, args, countArgs []any) ([]Photo, int, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	photos := []Photo{}
	for rows.Next() {
		var p Photo
		if err := rows.Scan(scanTargets(&p)...); err != nil {
			return nil, 0, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list photos: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count photos: %w", err)
	}
	return photos, total, nil
}

// Find fetches a photo by id regardless of owner.
func (r *Repository) Find(ctx context.Context, id string) (*Photo, error) {
	return r.find(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, id)
}

// FindOwned fetches a photo by id scoped to its owner. Ownership lives in
// the query itself so foreign records are indistinguishable from missing ones.
func (r *Repository) FindOwned(ctx context.Context, id, ownerID string) (*Photo, error) {
	return r.find(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = $1 AND owner_id = $2`,
		id, ownerID)
}

func (r *Repository) find(ctx context.Context, query string, args ...any) (*Photo, error) {
	p := &Photo{}
	err := r.db.QueryRow(ctx, query, args...).Scan(scanTargets(p)...)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find photo: %w", err)
	}
	return p, nil
}

// DeleteByID removes a photo record.
func (r *Repository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

// IncrementViews bumps a photo's view counter.
func (r *Repository) IncrementViews(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `UPDATE photos SET views = views + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// UpdateOwned applies the non-nil fields of upd to an owned photo.
func (r *Repository) UpdateOwned(ctx context.Context, id, ownerID string, upd Update) (*Photo, error) {
	p := &Photo{}
	err := r.db.QueryRow(ctx,
		`UPDATE photos SET
			description = COALESCE($3, description),
			tags        = COALESCE($4, tags),
			is_public   = COALESCE($5, is_public)
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+photoColumns,
		id, ownerID, upd.Description, upd.Tags, upd.IsPublic,
	).Scan(scanTargets(p)...)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update photo: %w", err)
	}
	return p, nil
}

func scanTargets(p *Photo) []any {
	return []any{
		&p.ID, &p.OwnerID, &p.StorageKey, &p.OriginalName, &p.URL,
		&p.SizeBytes, &p.MimeType, &p.Description, &p.Tags,
		&p.IsPublic, &p.Views, &p.UploadedAt,
	}
}

// isInvalidUUID detects a malformed uuid literal (PostgreSQL code 22P02),
// which callers see as a plain not-found.
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
