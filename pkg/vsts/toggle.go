package vsts

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flant/negentropy/sepctl/pkg/log"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionDeleted Action = "deleted"
)

// ToggleResult describes what Toggle did.
type ToggleResult struct {
	Action       Action
	ProjectID    uuid.UUID
	EndpointID   uuid.UUID
	EndpointName string
}

func (r *ToggleResult) String() string {
	switch r.Action {
	case ActionCreated:
		return fmt.Sprintf("Created service endpoint '%s' with id: %s", r.EndpointName, r.EndpointID)
	case ActionDeleted:
		return fmt.Sprintf("Deleted service endpoint '%s' with id: %s", r.EndpointName, r.EndpointID)
	}
	return fmt.Sprintf("service endpoint '%s' %s: %s", r.EndpointName, r.Action, r.EndpointID)
}

// Toggle creates the endpoint if the project has no endpoint with this name
// and deletes it otherwise. Calls are sequential and the first error stops
// the toggle, nothing is rolled back.
func (c *Client) Toggle(ctx context.Context, projectName, endpointName string, cred Credential) (*ToggleResult, error) {
	ctx = log.WithFields(ctx, map[string]interface{}{
		"project":  projectName,
		"endpoint": endpointName,
	})

	projectID, err := c.ResolveProjectID(ctx, projectName)
	if err != nil {
		return nil, err
	}
	log.Debugf(ctx)("project id: %s", projectID)

	endpointID, found, err := c.FindEndpointID(ctx, projectID, endpointName)
	if err != nil {
		return nil, err
	}

	result := &ToggleResult{
		ProjectID:    projectID,
		EndpointName: endpointName,
	}

	if !found {
		log.Debugf(ctx)("service endpoint is absent, create it")
		result.EndpointID, err = c.CreateEndpoint(ctx, projectID, endpointName, cred)
		if err != nil {
			return nil, err
		}
		result.Action = ActionCreated
		return result, nil
	}

	log.Debugf(ctx)("service endpoint %s is present, delete it", endpointID)
	if err := c.DeleteEndpoint(ctx, projectID, endpointID); err != nil {
		return nil, err
	}
	result.EndpointID = endpointID
	result.Action = ActionDeleted
	return result, nil
}
