// Package storage keeps generated report files.
//
// Two providers implement Storage:
// - LocalStorage: a directory on disk, for development
// - R2Storage: Cloudflare R2 or any S3-compatible bucket, for production
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage defines the interface for file storage operations.
//
// All methods are context-aware for timeout and cancellation support.
type Storage interface {
	// Put stores data at key. Returns ErrKeyExists if the key is taken and
	// opts.Overwrite is false.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get returns the object at key; the caller must close the reader.
	// Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns a link to the object. Providers that sign URLs honour
	// expires; others ignore it.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists reports whether an object is stored at key.
	Exists(ctx context.Context, key string) (bool, error)
}

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType is the MIME type. Detected from the key when empty.
	ContentType string

	// ContentDisposition is returned with the object, e.g.
	// `attachment; filename="SD-Report-North_Plant-2024-05-01.xlsx"`.
	ContentDisposition string

	// MaxSize rejects objects larger than this many bytes. 0 means no limit.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	Overwrite bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory, e.g. "./storage".
	BasePath string

	// BaseURL prefixes object URLs, e.g. "http://localhost:8080/files".
	BaseURL string
}

// R2Config holds configuration for Cloudflare R2 or another S3-compatible
// service.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// Endpoint overrides the R2 endpoint derived from AccountID, for
	// S3-compatible services such as MinIO.
	Endpoint string

	// PublicURL serves objects without signing when set.
	PublicURL string

	// Region defaults to "auto".
	Region string
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	Local    LocalConfig
	R2       R2Config
}

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderR2 identifies the Cloudflare R2 storage provider.
	ProviderR2 = "r2"
)

// New creates the storage provider named by cfg.Provider.
func New(cfg Config, logger *slog.Logger) (Storage, error) {
	switch cfg.Provider {
	case ProviderLocal, "":
		return NewLocalStorage(cfg.Local, logger)
	case ProviderR2:
		return NewR2Storage(cfg.R2, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// ReportKey generates a storage key for a generated report.
// Format: sites/{siteID}/reports/{uuid}.{ext}
func ReportKey(siteID uuid.UUID, ext string) string {
	return fmt.Sprintf("sites/%s/reports/%s.%s", siteID, uuid.New(), strings.TrimPrefix(ext, "."))
}

// AttachmentDisposition builds a Content-Disposition value for filename.
func AttachmentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
