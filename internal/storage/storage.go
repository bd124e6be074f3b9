// Package storage defines the gateway for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO, AWS S3).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// MaxUploadSize is the per-file size ceiling enforced before any network call.
const MaxUploadSize = 10 << 20 // 10 MiB

// ErrUnsupportedMediaType is returned when a file's content type is not an image.
var ErrUnsupportedMediaType = errors.New("only image files are allowed")

// ErrPayloadTooLarge is returned when a file exceeds MaxUploadSize.
var ErrPayloadTooLarge = errors.New("file exceeds the 10 MiB size limit")

// Object is a stored object as reported by the backing bucket.
type Object struct {
	Key          string
	URL          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// PutInput describes a single upload.
type PutInput struct {
	Reader       io.Reader
	OriginalName string
	ContentType  string
	Size         int64
}

// Storage is the gateway interface for the three bucket operations the
// service needs. Implementations must validate uploads with ValidateUpload
// before touching the network, and must re-filter List results by prefix
// rather than trust provider-side filtering.
type Storage interface {
	// Put validates the input, derives a timestamped key under keyPrefix,
	// and streams the data to the bucket.
	Put(ctx context.Context, in PutInput, keyPrefix string) (Object, error)
	// List returns up to maxKeys objects whose keys start with prefix.
	List(ctx context.Context, prefix string, maxKeys int) ([]Object, error)
	// Delete removes an object by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}

// ValidateUpload enforces the image allowlist and the size ceiling.
func ValidateUpload(in PutInput) error {
	if !strings.HasPrefix(in.ContentType, "image/") {
		return fmt.Errorf("%w: got %q", ErrUnsupportedMediaType, in.ContentType)
	}
	if in.Size > MaxUploadSize {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, in.Size)
	}
	return nil
}

// BuildKey derives the storage key for an upload: the caller's prefix, the
// current epoch milliseconds, an underscore, and the original file name.
// The timestamp is read at call time so a multi-file batch gets a
// non-decreasing component per file in submission order. Two uploads of the
// same name within the same millisecond produce the same key and the later
// write wins, matching the backing store's last-writer semantics.
func BuildKey(keyPrefix, originalName string) string {
	return keyPrefix + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + originalName
}

// ParseKey splits a key produced by BuildKey into its upload time and the
// original file name. Keys that do not follow the convention report a zero
// time and the base name unchanged.
func ParseKey(key string) (uploadedAt time.Time, originalName string) {
	base := key
	if i := strings.LastIndex(key, "/"); i >= 0 {
		base = key[i+1:]
	}
	ts, name, ok := strings.Cut(base, "_")
	if !ok {
		return time.Time{}, base
	}
	millis, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Time{}, base
	}
	return time.UnixMilli(millis).UTC(), name
}

// FilterPrefix drops objects whose keys do not start with prefix. Provider
// pagination semantics vary, so listings are always re-filtered locally.
func FilterPrefix(objects []Object, prefix string) []Object {
	if prefix == "" {
		return objects
	}
	out := objects[:0]
	for _, o := range objects {
		if strings.HasPrefix(o.Key, prefix) {
			out = append(out, o)
		}
	}
	return out
}
