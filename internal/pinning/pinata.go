package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// Pinata defaults.
const (
	DefaultPinataAPIURL     = "https://api.pinata.cloud"
	DefaultPinataGatewayURL = "https://gateway.pinata.cloud"
	DefaultPinataTimeout    = 60 * time.Second
)

// PinataClient pins files through the Pinata pinFileToIPFS endpoint.
// Uploads are not retried.
type PinataClient struct {
	jwt        string
	apiURL     string
	gatewayURL string
	client     *http.Client
	logger     *log.Logger
}

// PinataOption configures PinataClient.
type PinataOption func(*PinataClient)

// WithAPIURL overrides the Pinata API base URL.
func WithAPIURL(u string) PinataOption {
	return func(c *PinataClient) {
		c.apiURL = strings.TrimRight(u, "/")
	}
}

// WithGatewayURL overrides the gateway used to build retrieval URLs.
func WithGatewayURL(u string) PinataOption {
	return func(c *PinataClient) {
		c.gatewayURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) PinataOption {
	return func(c *PinataClient) {
		c.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) PinataOption {
	return func(c *PinataClient) {
		c.logger = l
	}
}

// NewPinataClient creates a Pinata client authenticated with a JWT.
func NewPinataClient(jwt string, opts ...PinataOption) *PinataClient {
	c := &PinataClient{
		jwt:        jwt,
		apiURL:     DefaultPinataAPIURL,
		gatewayURL: DefaultPinataGatewayURL,
		client:     &http.Client{Timeout: DefaultPinataTimeout},
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pinFileResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// PinFile uploads data as the multipart "file" field.
func (c *PinataClient) PinFile(ctx context.Context, name, contentType string, data []byte) (*Pin, error) {
	body, formType, err := multipartFile(name, contentType, data)
	if err != nil {
		return nil, &UploadError{Name: name, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/pinning/pinFileToIPFS", body)
	if err != nil {
		return nil, &UploadError{Name: name, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.jwt)
	req.Header.Set("Content-Type", formType)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UploadError{Name: name, Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UploadError{Name: name, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UploadError{Name: name, StatusCode: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(respBody)))}
	}

	var out pinFileResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &UploadError{Name: name, StatusCode: resp.StatusCode, Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	if out.IpfsHash == "" {
		return nil, &UploadError{Name: name, StatusCode: resp.StatusCode, Err: errors.New("empty IpfsHash")}
	}

	pin := &Pin{
		Hash: out.IpfsHash,
		URL:  c.gatewayURL + "/ipfs/" + out.IpfsHash,
		Size: out.PinSize,
	}
	c.logger.Printf("[pinata] pinned %s (%d bytes) as %s in %s", name, len(data), out.IpfsHash, time.Since(start).Round(time.Millisecond))
	return pin, nil
}

// PinJSON uploads v as metadata.json.
func (c *PinataClient) PinJSON(ctx context.Context, v interface{}) (*Pin, error) {
	return pinJSON(ctx, c, v)
}

func multipartFile(name, contentType string, data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var _ Pinner = (*PinataClient)(nil)
