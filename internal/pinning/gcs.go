package pinning

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/mr-tron/base58"
)

// DefaultGCSPublicBaseURL serves objects of public buckets.
const DefaultGCSPublicBaseURL = "https://storage.googleapis.com"

// ObjectStore writes one object. Implemented by GCS and by test fakes.
type ObjectStore interface {
	Put(ctx context.Context, object, contentType string, data []byte) error
}

// GCSObjectStore writes objects into a Cloud Storage bucket.
type GCSObjectStore struct {
	bucket *storage.BucketHandle
}

// NewGCSObjectStore wraps a bucket of client.
func NewGCSObjectStore(client *storage.Client, bucket string) *GCSObjectStore {
	return &GCSObjectStore{bucket: client.Bucket(bucket)}
}

// Put uploads data as object.
func (s *GCSObjectStore) Put(ctx context.Context, object, contentType string, data []byte) error {
	w := s.bucket.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000, immutable"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close object %s: %w", object, err)
	}
	return nil
}

// GCSPinner stores blobs in a public bucket under their content hash,
// so an object path never changes content.
type GCSPinner struct {
	store         ObjectStore
	bucket        string
	prefix        string
	publicBaseURL string
	logger        *log.Logger
}

// GCSPinnerOptions configures GCSPinner.
type GCSPinnerOptions struct {
	Bucket        string
	Prefix        string // optional object prefix, e.g. "tokens"
	PublicBaseURL string // defaults to DefaultGCSPublicBaseURL
	Logger        *log.Logger
}

// NewGCSPinner creates a pinner writing through store.
func NewGCSPinner(store ObjectStore, opts GCSPinnerOptions) *GCSPinner {
	base := opts.PublicBaseURL
	if base == "" {
		base = DefaultGCSPublicBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &GCSPinner{
		store:         store,
		bucket:        opts.Bucket,
		prefix:        strings.Trim(opts.Prefix, "/"),
		publicBaseURL: strings.TrimRight(base, "/"),
		logger:        logger,
	}
}

// PinFile writes data to <prefix>/<hash>/<name>.
func (p *GCSPinner) PinFile(ctx context.Context, name, contentType string, data []byte) (*Pin, error) {
	sum := sha256.Sum256(data)
	hash := base58.Encode(sum[:])
	object := p.objectName(hash, name)

	if err := p.store.Put(ctx, object, contentType, data); err != nil {
		return nil, &UploadError{Name: name, Err: err}
	}

	p.logger.Printf("[gcs] stored %s (%d bytes) as gs://%s/%s", name, len(data), p.bucket, object)
	return &Pin{
		Hash: hash,
		URL:  p.objectURL(object),
		Size: int64(len(data)),
	}, nil
}

// PinJSON uploads v as metadata.json.
func (p *GCSPinner) PinJSON(ctx context.Context, v interface{}) (*Pin, error) {
	return pinJSON(ctx, p, v)
}

func (p *GCSPinner) objectName(hash, name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	if p.prefix == "" {
		return hash + "/" + base
	}
	return p.prefix + "/" + hash + "/" + base
}

// objectURL escapes each segment of bucket/object under the public base URL.
func (p *GCSPinner) objectURL(object string) string {
	segments := strings.Split(p.bucket+"/"+object, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return p.publicBaseURL + "/" + strings.Join(segments, "/")
}

var _ Pinner = (*GCSPinner)(nil)
