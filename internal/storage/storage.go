package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// ObjectStore uploads binary objects and returns a public download URL.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// downloadTokenKey is the metadata key Firebase Storage reads download tokens from.
const downloadTokenKey = "firebaseStorageDownloadTokens"

// FirebaseBucket writes objects into the project's Firebase Storage bucket.
type FirebaseBucket struct {
	bucket *gcs.BucketHandle
	name   string
}

// NewFirebaseBucket wraps a bucket handle. name is the bucket name used to build URLs.
func NewFirebaseBucket(bucket *gcs.BucketHandle, name string) *FirebaseBucket {
	return &FirebaseBucket{bucket: bucket, name: name}
}

// Upload streams r into objectPath and tags the object with a fresh download token.
func (b *FirebaseBucket) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	token := uuid.NewString()

	w := b.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: token}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", objectPath, err)
	}
	return DownloadURL(b.name, objectPath, token), nil
}

// DownloadURL builds the tokenized Firebase Storage URL of an object.
func DownloadURL(bucket, objectPath, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(objectPath), url.QueryEscape(token))
}

// ListingImagePath returns listings/{uid}/{unixMillis}-{name}. Directory parts and spaces are
// stripped from the client supplied name.
func ListingImagePath(ownerID, fileName string, at time.Time) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if name == "" || name == "." || name == "/" {
		name = "image"
	}
	return fmt.Sprintf("listings/%s/%d-%s", ownerID, at.UnixMilli(), name)
}
