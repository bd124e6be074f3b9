package photo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/store2s3/service/internal/auth"
	"github.com/store2s3/service/internal/storage"
)

// DBService is the metadata-backed Service: every stored object gets a
// photo record owned by the uploader, and listing/deletion go through the
// metadata store before fanning out to the bucket.
type DBService struct {
	store   Store
	storage storage.Storage
}

// NewDBService creates a DBService. A nil storage is allowed: metadata
// reads keep working and write paths report ErrStorageUnavailable.
func NewDBService(store Store, st storage.Storage) *DBService {
	return &DBService{store: store, storage: st}
}

// Upload stores one file and creates its record.
func (s *DBService) Upload(ctx context.Context, owner auth.Identity, file File) (FileInfo, error) {
	infos, err := s.UploadBatch(ctx, owner, []File{file})
	if err != nil {
		return FileInfo{}, err
	}
	return infos[0], nil
}

// UploadBatch validates every file before the first write, then uploads
// and records them strictly in submission order. A validation failure
// rejects the whole batch with nothing written; a storage or metadata
// failure mid-batch stops there without rolling back earlier files.
func (s *DBService) UploadBatch(ctx context.Context, owner auth.Identity, files []File) ([]FileInfo, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
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
		}, "")
		src.Close()
		if err != nil {
			return nil, err
		}

		rec, err := s.store.Create(ctx, owner.SubjectID, obj.Key, f.Name, obj.URL, obj.Size, f.ContentType)
		if err != nil {
			return nil, err
		}

		infos = append(infos, FileInfo{
			ID:         rec.ID,
			URL:        rec.URL,
			Name:       rec.StorageKey,
			Size:       rec.SizeBytes,
			Type:       rec.MimeType,
			UploadedAt: rec.UploadedAt,
		})
	}
	return infos, nil
}

// List returns one page of the owner's photos with the pagination envelope.
func (s *DBService) List(ctx context.Context, owner auth.Identity, page, limit int) (Page, error) {
	photos, total, err := s.store.ListByOwner(ctx, owner.SubjectID, limit, (page-1)*limit)
	if err != nil {
		return Page{}, err
	}
	return Page{Photos: photos, Pagination: paginate(page, limit, total)}, nil
}

// ListPublic returns one page of public photos with the pagination envelope.
func (s *DBService) ListPublic(ctx context.Context, page, limit int) (Page, error) {
	photos, total, err := s.store.ListPublic(ctx, limit, (page-1)*limit)
	if err != nil {
		return Page{}, err
	}
	return Page{Photos: photos, Pagination: paginate(page, limit, total)}, nil
}

// Get returns a photo visible to the viewer (public, or owned when a
// verified identity is present) and bumps its view counter.
func (s *DBService) Get(ctx context.Context, viewer *auth.Identity, id string) (*Photo, error) {
	p, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsPublic && (viewer == nil || viewer.SubjectID != p.OwnerID) {
		return nil, ErrNotFound
	}

	if err := s.store.IncrementViews(ctx, p.ID); err != nil {
		slog.Error("failed to increment views", "photo", p.ID, "err", err)
	} else {
		p.Views++
	}
	return p, nil
}

// Update applies description/tags/visibility edits to an owned photo.
func (s *DBService) Update(ctx context.Context, owner auth.Identity, id string, upd Update) (*Photo, error) {
	return s.store.UpdateOwned(ctx, id, owner.SubjectID, upd)
}

// Delete removes an owned photo: the bucket object first, then the
// record. A record-delete failure after a successful storage delete is
// surfaced to the caller and not rolled back; retrying the whole delete
// is safe because the storage side is idempotent.
func (s *DBService) Delete(ctx context.Context, owner auth.Identity, id string) error {
	p, err := s.store.FindOwned(ctx, id, owner.SubjectID)
	if err != nil {
		return err
	}
	if s.storage == nil {
		return ErrStorageUnavailable
	}

	if err := s.storage.Delete(ctx, p.StorageKey); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	if err := s.store.DeleteByID(ctx, p.ID); err != nil {
		return fmt.Errorf("delete record after storage delete: %w", err)
	}
	return nil
}
