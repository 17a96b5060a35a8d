package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// ErrSecretNotFound is returned when a secret has no payload.
var ErrSecretNotFound = errors.New("secret not found")

// SecretSource reads secret payloads by name.
type SecretSource interface {
	Secret(ctx context.Context, name string) ([]byte, error)
}

// SecretManager reads secrets from GCP Secret Manager.
type SecretManager struct {
	client  *secretmanager.Client
	project string
}

// NewSecretManager creates a client using application default credentials.
func NewSecretManager(ctx context.Context, project string) (*SecretManager, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create secret manager client: %w", err)
	}
	return &SecretManager{client: client, project: strings.TrimSpace(project)}, nil
}

// Secret returns the payload of the latest version of name.
func (s *SecretManager) Secret(ctx context.Context, name string) ([]byte, error) {
	resource := secretVersionName(s.project, name)
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: resource})
	if err != nil {
		return nil, fmt.Errorf("access secret %s: %w", resource, err)
	}
	if res.GetPayload() == nil || len(res.GetPayload().GetData()) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, resource)
	}
	return res.GetPayload().GetData(), nil
}

// Close closes the underlying client.
func (s *SecretManager) Close() error {
	return s.client.Close()
}

// secretVersionName expands a short secret id into a version resource name.
// Full names are kept; a name without a version gets "latest".
func secretVersionName(project, name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasPrefix(name, "projects/") {
		name = fmt.Sprintf("projects/%s/secrets/%s", project, name)
	}
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}
	return name
}

// ResolveSecrets fills PinataJWT from PinataJWTSecret when only the secret
// name is configured. The keypair secret is read separately by LoadKeypair.
func ResolveSecrets(ctx context.Context, c *Config, src SecretSource) error {
	if c.Pinner != PinnerPinata || c.PinataJWT != "" || c.PinataJWTSecret == "" {
		return nil
	}
	data, err := src.Secret(ctx, c.PinataJWTSecret)
	if err != nil {
		return fmt.Errorf("resolve pinata jwt: %w", err)
	}
	c.PinataJWT = strings.TrimSpace(string(data))
	return nil
}

// KeypairBytes returns the raw keypair from the configured secret.
func KeypairBytes(ctx context.Context, c *Config, src SecretSource) ([]byte, error) {
	if c.KeypairSecret == "" {
		return nil, fmt.Errorf("%w: no keypair secret configured", ErrInvalid)
	}
	data, err := src.Secret(ctx, c.KeypairSecret)
	if err != nil {
		return nil, fmt.Errorf("read keypair secret: %w", err)
	}
	return data, nil
}
