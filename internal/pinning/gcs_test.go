package pinning

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeObjectStore) Put(_ context.Context, object, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.objects[object] = data
	s.types[object] = contentType
	return nil
}

func TestGCSPinner_PinFile(t *testing.T) {
	store := newFakeObjectStore()
	p := NewGCSPinner(store, GCSPinnerOptions{Bucket: "launchpad", Prefix: "/tokens/", Logger: quietLogger()})

	pin, err := p.PinFile(context.Background(), "../logo.png", "image/png", []byte("png"))
	require.NoError(t, err)

	object := "tokens/" + pin.Hash + "/logo.png"
	assert.Equal(t, []byte("png"), store.objects[object])
	assert.Equal(t, "image/png", store.types[object])
	assert.Equal(t, "https://storage.googleapis.com/launchpad/"+object, pin.URL)
}

func TestGCSPinner_PinFile_EscapesURL(t *testing.T) {
	store := newFakeObjectStore()
	p := NewGCSPinner(store, GCSPinnerOptions{Bucket: "launchpad", Logger: quietLogger()})

	pin, err := p.PinFile(context.Background(), "my logo#1?.png", "image/png", []byte("png"))
	require.NoError(t, err)

	_, stored := store.objects[pin.Hash+"/my logo#1?.png"]
	assert.True(t, stored, "object name keeps the raw file name")
	assert.Equal(t, "https://storage.googleapis.com/launchpad/"+pin.Hash+"/my%20logo%231%3F.png", pin.URL)

	u, err := url.Parse(pin.URL)
	require.NoError(t, err)
	assert.Empty(t, u.Fragment)
	assert.Empty(t, u.RawQuery)
	assert.Equal(t, "/launchpad/"+pin.Hash+"/my logo#1?.png", u.Path)
}

func TestGCSPinner_PinJSON(t *testing.T) {
	store := newFakeObjectStore()
	p := NewGCSPinner(store, GCSPinnerOptions{Bucket: "b", PublicBaseURL: "https://cdn.test/", Logger: quietLogger()})

	pin, err := p.PinJSON(context.Background(), map[string]string{"symbol": "TST"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(pin.URL, "https://cdn.test/b/"))
	assert.True(t, strings.HasSuffix(pin.URL, "/"+MetadataFilename))
}

func TestGCSPinner_Error(t *testing.T) {
	store := newFakeObjectStore()
	store.err = errors.New("permission denied")
	p := NewGCSPinner(store, GCSPinnerOptions{Bucket: "b", Logger: quietLogger()})

	_, err := p.PinFile(context.Background(), "logo.png", "image/png", []byte("png"))
	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "logo.png", uploadErr.Name)
}
