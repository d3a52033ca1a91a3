package vsts

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	SchemeToken            = "Token"
	SchemeUsernamePassword = "UsernamePassword"

	AppCenterEndpointType = "vsmobilecenter"
	AppCenterURL          = "https://api.mobile.azure.com/v0.1"
	GenericEndpointType   = "generic"
)

var validate = validator.New()

// Authorization is the scheme specific part of a service endpoint.
type Authorization struct {
	Parameters map[string]string `json:"parameters"`
	Scheme     string            `json:"scheme"`
}

// ServiceEndpoint is the creation payload of a service endpoint.
type ServiceEndpoint struct {
	ID                  uuid.UUID     `json:"id"`
	Description         string        `json:"description"`
	AdministratorsGroup *string       `json:"administratorsGroup"`
	Name                string        `json:"name"`
	Type                string        `json:"type"`
	URL                 string        `json:"url"`
	ReadersGroup        *string       `json:"readersGroup"`
	GroupScopeID        *string       `json:"groupScopeId"`
	Authorization       Authorization `json:"authorization"`
}

// Credential describes what the remote side needs to authorize an
// integration: provider type, target URL and authorization block.
type Credential interface {
	EndpointType() string
	EndpointURL() string
	Authorization() Authorization
	Validate() error
}

// NewServiceEndpoint builds the creation payload for a credential.
func NewServiceEndpoint(id uuid.UUID, name string, cred Credential) ServiceEndpoint {
	return ServiceEndpoint{
		ID:            id,
		Description:   "",
		Name:          name,
		Type:          cred.EndpointType(),
		URL:           cred.EndpointURL(),
		Authorization: cred.Authorization(),
	}
}

// TokenCredential authorizes with a single API token.
type TokenCredential struct {
	Type  string `validate:"required"`
	URL   string `validate:"required,url"`
	Token string `validate:"required"`
}

// AppCenterCredential returns a token credential for the App Center service.
func AppCenterCredential(token string) *TokenCredential {
	return &TokenCredential{
		Type:  AppCenterEndpointType,
		URL:   AppCenterURL,
		Token: token,
	}
}

func (c *TokenCredential) EndpointType() string { return c.Type }
func (c *TokenCredential) EndpointURL() string  { return c.URL }

func (c *TokenCredential) Authorization() Authorization {
	return Authorization{
		Parameters: map[string]string{"apitoken": c.Token},
		Scheme:     SchemeToken,
	}
}

func (c *TokenCredential) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("token credential: %w", err)
	}
	return nil
}

// UsernamePasswordCredential authorizes with a user name and a password.
type UsernamePasswordCredential struct {
	Type     string `validate:"required"`
	URL      string `validate:"required,url"`
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// SonarQubeCredential returns a generic endpoint pointing to a SonarQube server.
func SonarQubeCredential(serverURL, username, password string) *UsernamePasswordCredential {
	return &UsernamePasswordCredential{
		Type:     GenericEndpointType,
		URL:      serverURL,
		Username: username,
		Password: password,
	}
}

func (c *UsernamePasswordCredential) EndpointType() string { return c.Type }
func (c *UsernamePasswordCredential) EndpointURL() string  { return c.URL }

func (c *UsernamePasswordCredential) Authorization() Authorization {
	return Authorization{
		Parameters: map[string]string{
			"username": c.Username,
			"password": c.Password,
		},
		Scheme: SchemeUsernamePassword,
	}
}

func (c *UsernamePasswordCredential) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("username/password credential: %w", err)
	}
	return nil
}
