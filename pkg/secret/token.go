// Package secret provides the personal access token used to call the remote API.
package secret

import (
	"fmt"

	"github.com/hashicorp/vault/api"

	"github.com/flant/negentropy/sepctl/pkg/config"
)

type TokenSource interface {
	Token() (string, error)
}

// Logical is the part of the vault logical backend used to read secrets.
type Logical interface {
	Read(path string) (*api.Secret, error)
}

// Static is a token passed in a flag, variable or config file.
type Static string

func (s Static) Token() (string, error) {
	if s == "" {
		return "", fmt.Errorf("access token is empty")
	}
	return string(s), nil
}

// VaultSource reads the token from a field of a KV secret. Both KV v1 and
// KV v2 (data nested under "data") layouts are supported.
type VaultSource struct {
	logical Logical
	path    string
	field   string
}

// NewVaultSource creates a vault client configured from VAULT_* variables.
// A non-empty address overrides VAULT_ADDR.
func NewVaultSource(address, path, field string) (*VaultSource, error) {
	cfg := api.DefaultConfig()
	if cfg.Error != nil {
		return nil, fmt.Errorf("vault config: %w", cfg.Error)
	}
	if address != "" {
		cfg.Address = address
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}

	return NewVaultSourceWithLogical(client.Logical(), path, field), nil
}

func NewVaultSourceWithLogical(logical Logical, path, field string) *VaultSource {
	return &VaultSource{
		logical: logical,
		path:    path,
		field:   config.FirstNonEmptyString(field, config.DefaultVaultField),
	}
}

func (s *VaultSource) Token() (string, error) {
	secret, err := s.logical.Read(s.path)
	if err != nil {
		return "", fmt.Errorf("read vault secret '%s': %w", s.path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault secret '%s' not found", s.path)
	}

	data := secret.Data
	if nested, ok := data["data"].(map[string]interface{}); ok {
		data = nested
	}

	value, found := data[s.field]
	if !found {
		return "", fmt.Errorf("vault secret '%s' has no field '%s'", s.path, s.field)
	}
	token, ok := value.(string)
	if !ok || token == "" {
		return "", fmt.Errorf("field '%s' of vault secret '%s' is not a non-empty string", s.field, s.path)
	}
	return token, nil
}

// NewTokenSource returns the literal token if it is configured and a vault
// source otherwise.
func NewTokenSource(cfg *config.Config) (TokenSource, error) {
	if cfg.AccessToken != "" {
		return Static(cfg.AccessToken), nil
	}
	if cfg.Vault.Path == "" {
		return nil, fmt.Errorf("access token is not set: use accessToken or vault.path")
	}
	return NewVaultSource(cfg.Vault.Address, cfg.Vault.Path, cfg.Vault.Field)
}
