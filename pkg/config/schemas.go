package config

import (
	"github.com/flant/negentropy/sepctl/pkg/openapi"
)

var Schemas = map[string]openapi.Validator{
	SepctlConfigKind + "/v1": openapi.MustSchemaValidator(`
type: object
additionalProperties: false
required:
- apiVersion
- kind
properties:
  apiVersion:
    title: apiVersion
    description: |
      API domain and version
    type: string
  kind:
    title: kind
    description: |
      Config kind
    type: string
  baseURL:
    description: |
      Account URL, e.g. https://account.visualstudio.com/
    type: string
  project:
    description: |
      Name of the project owning the service endpoint
    type: string
  accessToken:
    description: |
      Personal access token. Prefer vault for anything but local runs.
    type: string
  journal:
    description: |
      Path to the sqlite journal of toggles
    type: string
  vault:
    type: object
    additionalProperties: false
    properties:
      address:
        type: string
      path:
        description: |
          KV secret holding the personal access token
        type: string
      field:
        type: string
        default: token
  endpoint:
    type: object
    additionalProperties: false
    properties:
      name:
        type: string
      provider:
        type: string
        default: appcenter
        enum:
        - appcenter
        - sonarqube
      url:
        description: |
          Server URL, used by the sonarqube provider
        type: string
      token:
        description: |
          API token of the appcenter provider
        type: string
      username:
        type: string
      password:
        type: string
`),
}
