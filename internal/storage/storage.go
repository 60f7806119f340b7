// Package storage provides the object store abstraction for the Nuzum media
// pipeline.
//
// This package defines a Storage interface with implementations for:
// - LocalStorage: File system storage for development
// - R2Storage: Cloudflare R2 (S3-compatible) storage for production
//
// Keys look like filesystem paths ("safety_checks/<uuid>.jpg") but carry no
// directory semantics. Keys are stored in the database as opaque identifiers;
// public URLs are synthesized by concatenating a fixed base with the key.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage defines the interface for object store operations.
//
// All methods are context-aware for timeout and cancellation support. The
// backend is expected to be strongly consistent for read-after-write on the
// same key; overwrites are allowed.
type Storage interface {
	// Put stores data at the specified key with the given options.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get retrieves the data at the specified key.
	// Returns the data as an io.ReadCloser (caller must close), object metadata,
	// and an error. Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at the specified key.
	// This operation is idempotent - no error is returned if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// List returns the keys under the given folder prefix ("folder/").
	List(ctx context.Context, folder string) ([]string, error)

	// URL returns a URL for accessing the object at the specified key.
	// For public objects, this is a permanent URL.
	// For private objects, this is a presigned URL valid for the specified duration.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists checks if an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)
}

// =============================================================================
// Lenient Wrappers
// =============================================================================

// Fetch reads the full payload at key, returning nil on a missing object or
// transport failure. The mobile upload and PDF paths treat a missing blob as
// a degraded condition, not a hard error; failures are logged by the adapter.
func Fetch(ctx context.Context, s Storage, key string) []byte {
	rc, _, err := s.Get(ctx, key)
	if err != nil {
		return nil
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil
	}
	return data
}

// Remove deletes the object at key, reporting success as a bool and never
// returning an error to the caller.
func Remove(ctx context.Context, s Storage, key string) bool {
	return s.Delete(ctx, key) == nil
}

// =============================================================================
// Data Types
// =============================================================================

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType specifies the MIME type of the object.
	// If empty, it will be auto-detected from the file extension or content.
	ContentType string

	// MaxSize specifies the maximum allowed size in bytes.
	// If the data exceeds this size, ErrTooLarge is returned.
	// A value of 0 means no limit.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	// If false and the key exists, ErrKeyExists is returned.
	Overwrite bool

	// Public determines if the object should be publicly accessible.
	// For R2, this sets the ACL to public-read.
	// For local storage, this is informational only.
	Public bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string    // Object key/path
	Size         int64     // Size in bytes
	ContentType  string    // MIME type
	LastModified time.Time // Last modification time
	ETag         string    // Entity tag (if available)
}

// =============================================================================
// Configuration Types
// =============================================================================

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where files are stored.
	BasePath string

	// BaseURL is the public URL prefix for accessing files.
	// Example: "http://localhost:8080/storage"
	BaseURL string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	// AccountID is the Cloudflare account ID.
	AccountID string

	// AccessKeyID is the R2 API access key ID.
	AccessKeyID string

	// SecretAccessKey is the R2 API secret key.
	SecretAccessKey string

	// BucketName is the name of the R2 bucket to use.
	BucketName string

	// PublicURL is the public URL for the bucket (custom domain).
	// If empty, presigned URLs will be used for all access.
	PublicURL string

	// Region is the AWS region to use (required by AWS SDK).
	// Default: "auto"
	Region string
}

// =============================================================================
// Provider Constants
// =============================================================================

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderR2 identifies the Cloudflare R2 storage provider.
	ProviderR2 = "r2"
)

// Folder layout in the object store. Only SafetyChecksFolder is written by
// this service; the accident folders are populated by the administration
// application and read here for PDF composition.
const (
	SafetyChecksFolder = "safety_checks"
	AccidentsFolder    = "accidents"
)

// =============================================================================
// Key Helpers
// =============================================================================

// Join builds a key from a folder and filename: "folder/filename".
func Join(folder, filename string) string {
	return folder + "/" + filename
}

// SafetyImageKey generates the object key for a normalized check photo.
// Format: safety_checks/{uuid}.jpg
func SafetyImageKey(imageID uuid.UUID) string {
	return fmt.Sprintf("%s/%s.jpg", SafetyChecksFolder, imageID)
}

// Filename returns the part of the key after the last slash. URL synthesis for
// stored images keys off this component.
func Filename(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			return key[i+1:]
		}
	}
	return key
}
