package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

const (
	SepctlConfigKind = "SepctlConfig"
	ApiGroup         = "sepctl.flant.com"

	ProviderAppCenter = "appcenter"
	ProviderSonarQube = "sonarqube"

	DefaultProvider   = ProviderAppCenter
	DefaultVaultField = "token"
)

/*
apiVersion: sepctl.flant.com/v1
kind: SepctlConfig
baseURL: https://account.visualstudio.com/
project: YOUR-PROJECT
vault:

	address: https://vault.example.com
	path: secret/data/sepctl
	field: token

endpoint:

	name: SEP-NAME
	provider: appcenter
	token: api-token

journal: /var/lib/sepctl/journal.db
*/
type Config struct {
	BaseURL     string           `json:"baseURL" validate:"required,url"`
	Project     string           `json:"project" validate:"required"`
	AccessToken string           `json:"accessToken"`
	Journal     string           `json:"journal"`
	Vault       VaultSettings    `json:"vault"`
	Endpoint    EndpointSettings `json:"endpoint"`
}

// VaultSettings point to a KV secret with the personal access token.
type VaultSettings struct {
	Address string `json:"address"`
	Path    string `json:"path"`
	Field   string `json:"field"`
}

// EndpointSettings describe the managed service endpoint. Provider secrets
// are checked when an endpoint is created, not here.
type EndpointSettings struct {
	Name     string `json:"name" validate:"required"`
	Provider string `json:"provider" validate:"oneof=appcenter sonarqube"`
	URL      string `json:"url"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Password string `json:"password"`
}

var validate = validator.New()

// Validate checks settings required to talk to the remote API.
func (c *Config) Validate() error {
	var allErrs *multierror.Error

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fieldErr := range fieldErrs {
			allErrs = multierror.Append(allErrs, fmt.Errorf("%s: failed on '%s' rule", fieldErr.Namespace(), fieldErr.Tag()))
		}
	}

	if c.AccessToken == "" && c.Vault.Path == "" {
		allErrs = multierror.Append(allErrs, fmt.Errorf("access token is not set: use accessToken or vault.path"))
	}

	return allErrs.ErrorOrNil()
}
