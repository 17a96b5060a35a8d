package pinning

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/mr-tron/base58"
)

// MemoryPinner keeps pinned blobs in memory, addressed by base58(sha256(data)).
// Used by tests and dry runs.
type MemoryPinner struct {
	mu         sync.RWMutex
	gatewayURL string
	blobs      map[string]memoryBlob
	uploads    []string

	// Err, when set, fails every upload.
	Err error
}

type memoryBlob struct {
	name        string
	contentType string
	data        []byte
}

// NewMemoryPinner creates an in-memory pinner whose URLs start with gatewayURL.
func NewMemoryPinner(gatewayURL string) *MemoryPinner {
	if gatewayURL == "" {
		gatewayURL = "memory://pins"
	}
	return &MemoryPinner{
		gatewayURL: gatewayURL,
		blobs:      make(map[string]memoryBlob),
	}
}

// PinFile stores data and returns its content hash URL.
func (p *MemoryPinner) PinFile(ctx context.Context, name, contentType string, data []byte) (*Pin, error) {
	if err := ctx.Err(); err != nil {
		return nil, &UploadError{Name: name, Err: err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.uploads = append(p.uploads, name)
	if p.Err != nil {
		return nil, &UploadError{Name: name, Err: p.Err}
	}

	sum := sha256.Sum256(data)
	hash := base58.Encode(sum[:])

	cp := make([]byte, len(data))
	copy(cp, data)
	p.blobs[hash] = memoryBlob{name: name, contentType: contentType, data: cp}

	return &Pin{
		Hash: hash,
		URL:  fmt.Sprintf("%s/ipfs/%s", p.gatewayURL, hash),
		Size: int64(len(data)),
	}, nil
}

// PinJSON uploads v as metadata.json.
func (p *MemoryPinner) PinJSON(ctx context.Context, v interface{}) (*Pin, error) {
	return pinJSON(ctx, p, v)
}

// Get returns a copy of the blob stored under hash.
func (p *MemoryPinner) Get(hash string) ([]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	b, ok := p.blobs[hash]
	if !ok {
		return nil, false
	}
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return cp, true
}

// Uploads returns the names of every attempted upload in order.
func (p *MemoryPinner) Uploads() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.uploads))
	copy(out, p.uploads)
	return out
}

var _ Pinner = (*MemoryPinner)(nil)
