package photo

import (
	"context"
	"fmt"
	"strings"

	"github.com/store2s3/service/internal/auth"
	"github.com/store2s3/service/internal/storage"
)

// BucketService is the storage-only Service: photo identity is the
// storage key, ownership is the per-user key prefix derived from the
// verified subject, and listings are reconstructed from the key
// convention. Operations that need metadata report ErrMetadataUnavailable.
type BucketService struct {
	storage storage.Storage
}

// NewBucketService creates a BucketService over the given gateway.
func NewBucketService(st storage.Storage) *BucketService {
	return &BucketService{storage: st}
}

// prefix is the caller's key namespace. An empty subject (no verifier
// configured would have 503'd earlier) scopes nothing.
func prefix(owner auth.Identity) string {
	if owner.SubjectID == "" {
		return ""
	}
	return owner.SubjectID + "/"
}

// Upload stores one file under the caller's prefix.
func (s *BucketService) Upload(ctx context.Context, owner auth.Identity, file File) (FileInfo, error) {
	infos, err := s.UploadBatch(ctx, owner, []File{file})
	if err != nil {
		return FileInfo{}, err
	}
	return infos[0], nil
}

// UploadBatch validates every file before the first write, then uploads
// them in submission order under the caller's prefix.
func (s *BucketService) UploadBatch(ctx context.Context, owner auth.Identity, files []File) ([]FileInfo, error) {
	for _, f := range files {
		if err := storage.ValidateUpload(storage.PutInput{
			OriginalName: f.Name, ContentType: f.ContentType, Size: f.Size,
		}); err != nil {
			return nil, err
		}
	}

	infos := make([]FileInfo, 0, len(files))
	for _, f := range files {
		src, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %q: %w", f.Name, err)
		}

		obj, err := s.storage.Put(ctx, storage.PutInput{
			Reader:       src,
			OriginalName: f.Name,
			ContentType:  f.ContentType,
			Size:         f.Size,
		}, prefix(owner))
		src.Close()
		if err != nil {
			return nil, err
		}

		infos = append(infos, FileInfo{
			ID:         obj.Key,
			URL:        obj.URL,
			Name:       obj.Key,
			Size:       obj.Size,
			Type:       f.ContentType,
			UploadedAt: obj.LastModified,
		})
	}
	return infos, nil
}

// List enumerates the caller's prefix and maps each key back to its
// upload time and original name. Bucket mode has no pagination envelope.
func (s *BucketService) List(ctx context.Context, owner auth.Identity, page, limit int) (Page, error) {
	objects, err := s.storage.List(ctx, prefix(owner), bucketListCap)
	if err != nil {
		return Page{}, err
	}

	entries := make([]BucketEntry, 0, len(objects))
	for _, o := range objects {
		uploadedAt, name := storage.ParseKey(o.Key)
		lastModified := o.LastModified
		if lastModified.IsZero() {
			lastModified = uploadedAt
		}
		entries = append(entries, BucketEntry{
			Key:          o.Key,
			URL:          o.URL,
			Size:         o.Size,
			LastModified: lastModified,
			OriginalName: name,
		})
	}
	return Page{Photos: entries}, nil
}

// ListPublic needs the metadata store.
func (s *BucketService) ListPublic(ctx context.Context, page, limit int) (Page, error) {
	return Page{}, ErrMetadataUnavailable
}

// Get needs the metadata store.
func (s *BucketService) Get(ctx context.Context, viewer *auth.Identity, id string) (*Photo, error) {
	return nil, ErrMetadataUnavailable
}

// Update needs the metadata store.
func (s *BucketService) Update(ctx context.Context, owner auth.Identity, id string, upd Update) (*Photo, error) {
	return nil, ErrMetadataUnavailable
}

// Delete removes an object by key after checking it lies inside the
// caller's prefix. No existence check: the storage delete is idempotent.
func (s *BucketService) Delete(ctx context.Context, owner auth.Identity, key string) error {
	if !strings.HasPrefix(key, prefix(owner)) {
		return ErrNotOwned
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
