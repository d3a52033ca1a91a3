package vsts

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/flant/negentropy/sepctl/pkg/httpx"
	"github.com/flant/negentropy/sepctl/pkg/log"
)

const (
	projectPath               = "defaultcollection/_apis/projects/%s"
	listServiceEndpointsPath  = "defaultcollection/%s/_apis/distributedtask/serviceendpoints?api-version=1.0"
	createServiceEndpointPath = "defaultcollection/%s/_apis/distributedtask/serviceendpoints/%s?api-version=2.2-preview.1"
	deleteServiceEndpointPath = "defaultcollection/%s/_apis/serviceendpoint/endpoints/%s?api-version=4.1-preview.1"
)

// Client calls the project and service endpoint APIs of one account.
type Client struct {
	http *httpx.Client
	// NewID generates identifiers of created endpoints.
	NewID func() uuid.UUID
}

func NewClient(httpClient *httpx.Client) *Client {
	return &Client{
		http:  httpClient,
		NewID: uuid.New,
	}
}

// NewClientForAccount returns a client authenticated with a personal access token.
func NewClientForAccount(baseURL, accessToken string, opts ...httpx.Option) (*Client, error) {
	opts = append([]httpx.Option{httpx.WithBasicAuthToken(accessToken)}, opts...)
	httpClient, err := httpx.NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return NewClient(httpClient), nil
}

// ResolveProjectID returns the identifier of the project with the given name.
func (c *Client) ResolveProjectID(ctx context.Context, name string) (uuid.UUID, error) {
	resp, err := c.http.Get(ctx, fmt.Sprintf(projectPath, url.PathEscape(name)))
	if err != nil {
		return uuid.Nil, err
	}
	if err := httpx.EnsureSuccess(resp); err != nil {
		return uuid.Nil, fmt.Errorf("get project '%s': %w", name, err)
	}

	var project projectResponse
	if err := httpx.DecodeJSON(resp, projectSchema, &project); err != nil {
		return uuid.Nil, fmt.Errorf("get project '%s': %w", name, err)
	}
	return project.ID, nil
}

// FindEndpointID returns the identifier of the first endpoint named exactly
// name. A missing endpoint is reported with found == false, not with an error.
func (c *Client) FindEndpointID(ctx context.Context, projectID uuid.UUID, name string) (id uuid.UUID, found bool, err error) {
	resp, err := c.http.Get(ctx, fmt.Sprintf(listServiceEndpointsPath, projectID))
	if err != nil {
		return uuid.Nil, false, err
	}
	if err := httpx.EnsureSuccess(resp); err != nil {
		return uuid.Nil, false, fmt.Errorf("list service endpoints: %w", err)
	}

	var list serviceEndpointListResponse
	if err := httpx.DecodeJSON(resp, serviceEndpointListSchema, &list); err != nil {
		return uuid.Nil, false, fmt.Errorf("list service endpoints: %w", err)
	}

	for _, endpoint := range list.Value {
		if endpoint.Name == name {
			return endpoint.ID, true, nil
		}
	}
	return uuid.Nil, false, nil
}

// EndpointExists reports whether an endpoint named name exists in the project.
func (c *Client) EndpointExists(ctx context.Context, projectID uuid.UUID, name string) (bool, error) {
	_, found, err := c.FindEndpointID(ctx, projectID, name)
	return found, err
}

// CreateEndpoint creates a service endpoint with a locally generated
// identifier and returns the identifier reported by the remote side.
func (c *Client) CreateEndpoint(ctx context.Context, projectID uuid.UUID, name string, cred Credential) (uuid.UUID, error) {
	if err := cred.Validate(); err != nil {
		return uuid.Nil, err
	}

	id := c.NewID()
	payload := NewServiceEndpoint(id, name, cred)

	resp, err := c.http.PostJSON(ctx, fmt.Sprintf(createServiceEndpointPath, projectID, id), payload)
	if err != nil {
		return uuid.Nil, err
	}
	if err := httpx.EnsureSuccess(resp); err != nil {
		return uuid.Nil, fmt.Errorf("create service endpoint '%s': %w", name, err)
	}

	var created createdServiceEndpointResponse
	if err := httpx.DecodeJSON(resp, createdServiceEndpointSchema, &created); err != nil {
		return uuid.Nil, fmt.Errorf("create service endpoint '%s': %w", name, err)
	}
	if created.ID != id {
		log.Warnf(ctx)("service endpoint '%s' was submitted with id %s, remote returned %s", name, id, created.ID)
	}
	return created.ID, nil
}

// DeleteEndpoint deletes a service endpoint by its identifier.
func (c *Client) DeleteEndpoint(ctx context.Context, projectID, endpointID uuid.UUID) error {
	resp, err := c.http.Delete(ctx, fmt.Sprintf(deleteServiceEndpointPath, projectID, endpointID))
	if err != nil {
		return err
	}
	if err := httpx.EnsureSuccess(resp); err != nil {
		return fmt.Errorf("delete service endpoint %s: %w", endpointID, err)
	}
	httpx.Discard(resp)
	return nil
}
