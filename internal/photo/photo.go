// Package photo implements the upload/gallery request flows. The Service
// interface has two implementations selected once at start-up: DBService
// persists a metadata record per object, BucketService works against the
// bucket alone with per-user key prefixes. Handlers never branch on the
// deployment mode themselves.
package photo

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/store2s3/service/internal/auth"
)

// MaxBatchFiles caps a single multi-file upload.
const MaxBatchFiles = 10

// DefaultPageSize is the page size when the client sends none.
const DefaultPageSize = 20

// bucketListCap bounds a bucket-mode listing, matching the original
// MaxKeys ceiling.
const bucketListCap = 100

// ErrNotFound is returned when a photo does not exist or is not visible
// to the caller. Ownership is enforced inside the metadata query, so a
// foreign record is indistinguishable from a missing one.
var ErrNotFound = errors.New("photo not found or access denied")

// ErrNotOwned is returned in bucket mode when a key lies outside the
// caller's prefix.
var ErrNotOwned = errors.New("access denied: object not owned by user")

// ErrStorageUnavailable is returned when object storage is not configured.
var ErrStorageUnavailable = errors.New("object storage not configured")

// ErrMetadataUnavailable is returned for operations that need the
// metadata store while running in bucket-only mode.
var ErrMetadataUnavailable = errors.New("metadata store not configured")

// Photo is a metadata record for one stored object.
type Photo struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"-"`
	StorageKey   string    `json:"key"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	SizeBytes    int64     `json:"size"`
	MimeType     string    `json:"mimeType"`
	Description  string    `json:"description,omitempty"`
	Tags         []string  `json:"tags"`
	IsPublic     bool      `json:"isPublic"`
	Views        int       `json:"views"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// File is one incoming upload. Open is called only after the whole batch
// has passed validation, so a poisoned batch writes nothing.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FileInfo is the per-file upload response descriptor.
type FileInfo struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// BucketEntry is one listing row in bucket-only mode, reconstructed from
// the key convention alone.
type BucketEntry struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	OriginalName string    `json:"originalName"`
}

// Pagination is the page envelope for metadata-backed listings.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalPhotos int  `json:"totalPhotos"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// Page is a listing response. Photos holds []Photo in metadata mode and
// []BucketEntry in bucket mode; Pagination is present only in the former.
type Page struct {
	Photos     any         `json:"photos"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Update carries the mutable photo fields. Nil members are left unchanged.
type Update struct {
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	IsPublic    *bool    `json:"isPublic"`
}

// Service is the upload/gallery capability behind the HTTP handlers.
type Service interface {
	Upload(ctx context.Context, owner auth.Identity, file File) (FileInfo, error)
	UploadBatch(ctx context.Context, owner auth.Identity, files []File) ([]FileInfo, error)
	List(ctx context.Context, owner auth.Identity, page, limit int) (Page, error)
	ListPublic(ctx context.Context, page, limit int) (Page, error)
	Get(ctx context.Context, viewer *auth.Identity, id string) (*Photo, error)
	Update(ctx context.Context, owner auth.Identity, id string, upd Update) (*Photo, error)
	Delete(ctx context.Context, owner auth.Identity, idOrKey string) error
}

// paginate computes the page envelope for a full count and page window.
func paginate(page, limit, total int) *Pagination {
	totalPages := (total + limit - 1) / limit
	return &Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalPhotos: total,
		HasNext:     page*limit < total,
		HasPrev:     page > 1,
	}
}
