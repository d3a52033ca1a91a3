package vsts

import (
	"github.com/google/uuid"

	"github.com/flant/negentropy/sepctl/pkg/openapi"
)

// Response schemas describe only the fields sepctl reads. Anything else the
// remote side returns is ignored.
var (
	projectSchema = openapi.MustSchemaValidator(`
type: object
required:
- id
properties:
  id:
    type: string
    format: uuid
`)

	serviceEndpointListSchema = openapi.MustSchemaValidator(`
type: object
required:
- value
properties:
  value:
    type: array
    items:
      type: object
      required:
      - id
      - name
      properties:
        id:
          type: string
          format: uuid
        name:
          type: string
`)

	createdServiceEndpointSchema = openapi.MustSchemaValidator(`
type: object
required:
- id
properties:
  id:
    type: string
    format: uuid
`)
)

type projectResponse struct {
	ID uuid.UUID `json:"id"`
}

type serviceEndpointListResponse struct {
	Value []struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	} `json:"value"`
}

type createdServiceEndpointResponse struct {
	ID uuid.UUID `json:"id"`
}
