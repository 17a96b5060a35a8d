// Package pinning uploads token images and metadata documents to
// content-addressed storage and returns their retrieval URLs.
package pinning

import (
	"context"
	"encoding/json"
	"fmt"
)

// MetadataFilename is the file name metadata documents are uploaded under.
const MetadataFilename = "metadata.json"

// Pin is the result of a successful upload.
type Pin struct {
	Hash string // content identifier
	URL  string // retrieval URL
	Size int64
}

// Pinner uploads blobs and JSON documents.
type Pinner interface {
	// PinFile uploads data under name and returns where it can be fetched.
	PinFile(ctx context.Context, name, contentType string, data []byte) (*Pin, error)

	// PinJSON serializes v and uploads it as metadata.json.
	PinJSON(ctx context.Context, v interface{}) (*Pin, error)
}

// UploadError reports a failed upload. The workflow that issued it aborts.
type UploadError struct {
	Name       string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload %s: status %d: %v", e.Name, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upload %s: %v", e.Name, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// pinJSON is the shared PinJSON implementation.
func pinJSON(ctx context.Context, p Pinner, v interface{}) (*Pin, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &UploadError{Name: MetadataFilename, Err: fmt.Errorf("marshal metadata: %w", err)}
	}
	return p.PinFile(ctx, MetadataFilename, "application/json", data)
}
