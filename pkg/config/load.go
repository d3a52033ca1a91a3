package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "SEPCTL"

// Keys of settings that can be overridden by flags and SEPCTL_* environment variables.
const (
	ConfigKey        = "config"
	BaseURLKey       = "base-url"
	ProjectKey       = "project"
	AccessTokenKey   = "access-token"
	JournalKey       = "journal"
	VaultAddressKey  = "vault-address"
	VaultPathKey     = "vault-path"
	VaultFieldKey    = "vault-field"
	EndpointNameKey  = "endpoint-name"
	ProviderKey      = "provider"
	EndpointURLKey   = "endpoint-url"
	EndpointTokenKey = "endpoint-token"
	UsernameKey      = "username"
	PasswordKey      = "password"
)

// NewViper returns viper reading SEPCTL_* variables, e.g. SEPCTL_BASE_URL for base-url.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file if path is not empty and overlays it with
// values from v. Values from v take precedence.
func Load(path string, v *viper.Viper) (*Config, error) {
	cfg := new(Config)
	if path != "" {
		var err error
		cfg, err = LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config '%s': %w", path, err)
		}
	}

	return Assemble(cfg, v), nil
}

func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes parses a versioned document, validates it against the
// schema of its version and applies schema defaults.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	vu := new(VersionedUntyped)
	if err := vu.DetectMetadata(data); err != nil {
		return nil, err
	}

	if vu.Metadata.Kind != SepctlConfigKind {
		return nil, fmt.Errorf("kind '%s' is not supported", vu.Metadata.Kind)
	}
	if vu.Metadata.Api != ApiGroup {
		return nil, fmt.Errorf("api '%s' is not supported", vu.Metadata.ApiVersion())
	}

	schema, ok := Schemas[vu.Metadata.SchemaKey()]
	if !ok {
		return nil, fmt.Errorf("version '%s' is not supported", vu.Metadata.ApiVersion())
	}

	obj, err := schema.Validate(vu.Object())
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", vu.Metadata, err)
	}

	d, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	cfg := new(Config)
	if err := json.Unmarshal(d, cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %v", err)
	}
	return cfg, nil
}

// Assemble returns cfg overlaid with values from v and filled with defaults.
func Assemble(cfg *Config, v *viper.Viper) *Config {
	get := func(key string) string {
		if v == nil {
			return ""
		}
		return v.GetString(key)
	}

	return &Config{
		BaseURL:     FirstNonEmptyString(get(BaseURLKey), cfg.BaseURL),
		Project:     FirstNonEmptyString(get(ProjectKey), cfg.Project),
		AccessToken: FirstNonEmptyString(get(AccessTokenKey), cfg.AccessToken),
		Journal:     FirstNonEmptyString(get(JournalKey), cfg.Journal),
		Vault: VaultSettings{
			Address: FirstNonEmptyString(get(VaultAddressKey), cfg.Vault.Address, os.Getenv("VAULT_ADDR")),
			Path:    FirstNonEmptyString(get(VaultPathKey), cfg.Vault.Path),
			Field:   FirstNonEmptyString(get(VaultFieldKey), cfg.Vault.Field, DefaultVaultField),
		},
		Endpoint: EndpointSettings{
			Name:     FirstNonEmptyString(get(EndpointNameKey), cfg.Endpoint.Name),
			Provider: FirstNonEmptyString(get(ProviderKey), cfg.Endpoint.Provider, DefaultProvider),
			URL:      FirstNonEmptyString(get(EndpointURLKey), cfg.Endpoint.URL),
			Token:    FirstNonEmptyString(get(EndpointTokenKey), cfg.Endpoint.Token),
			Username: FirstNonEmptyString(get(UsernameKey), cfg.Endpoint.Username),
			Password: FirstNonEmptyString(get(PasswordKey), cfg.Endpoint.Password),
		},
	}
}

func FirstNonEmptyString(args ...string) string {
	for _, arg := range args {
		if arg != "" {
			return arg
		}
	}
	return ""
}
