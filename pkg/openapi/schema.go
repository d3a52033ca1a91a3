package openapi

import (
	"encoding/json"
	"fmt"

	"github.com/go-openapi/spec"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
	"github.com/go-openapi/validate/post"
	"github.com/hashicorp/go-multierror"
)

// Validator checks generic data (as produced by json.Unmarshal into interface{})
// against a schema. Valid data is returned with schema defaults applied.
type Validator interface {
	Validate(data interface{}) (interface{}, error)
}

type schemaValidator struct {
	validator *validate.SchemaValidator
}

func (v *schemaValidator) Validate(data interface{}) (interface{}, error) {
	result := v.validator.Validate(data)
	if result.IsValid() {
		post.ApplyDefaults(result)
		return result.Data(), nil
	}

	var allErrs *multierror.Error
	allErrs = multierror.Append(allErrs, result.Errors...)

	return nil, allErrs.ErrorOrNil()
}

// SchemaValidator compiles a schema written in YAML.
func SchemaValidator(content string) (Validator, error) {
	schema, err := LoadSchema(content)
	if err != nil {
		return nil, err
	}

	return &schemaValidator{
		validator: validate.NewSchemaValidator(schema, nil, "", strfmt.Default),
	}, nil
}

// MustSchemaValidator is SchemaValidator for package level schemas known to be valid.
func MustSchemaValidator(content string) Validator {
	v, err := SchemaValidator(content)
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return v
}

// LoadSchema returns an expanded spec.Schema from its YAML text.
func LoadSchema(content string) (*spec.Schema, error) {
	yml, err := swag.BytesToYAMLDoc([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %v", err)
	}
	d, err := swag.YAMLToJSON(yml)
	if err != nil {
		return nil, fmt.Errorf("yaml to json: %v", err)
	}

	s := new(spec.Schema)
	if err := json.Unmarshal(d, s); err != nil {
		return nil, fmt.Errorf("json unmarshal: %v", err)
	}

	if err := spec.ExpandSchema(s, s, nil); err != nil {
		return nil, fmt.Errorf("expand schema: %v", err)
	}

	return s, nil
}
