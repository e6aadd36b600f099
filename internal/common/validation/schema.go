package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationResult mirrors the shape the product surfaces to callers:
// a flat list of field-level problems.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (r *ValidationResult) Error() string {
	if r.Valid {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(msgs, "; ")
}

// staticAdParamsSchema constrains the static-ad submission payload. Product
// image and at least one selected angle are mandatory before submission ever
// reaches the backend.
const staticAdParamsSchema = `{
	"type": "object",
	"properties": {
		"productImageUrl": {"type": "string", "minLength": 1},
		"templateId": {"type": "string", "minLength": 1},
		"avatarIndex": {"type": "integer", "minimum": 0},
		"angleIndexes": {
			"type": "array",
			"items": {"type": "integer", "minimum": 0},
			"minItems": 1
		},
		"imageCount": {"type": "integer", "minimum": 1, "maximum": 10},
		"allowOverage": {"type": "boolean"}
	},
	"required": ["productImageUrl", "templateId", "angleIndexes"],
	"additionalProperties": true
}`

// prelanderParamsSchema constrains the swipe-file / pre-lander submission payload.
const prelanderParamsSchema = `{
	"type": "object",
	"properties": {
		"avatarIndex": {"type": "integer", "minimum": 0},
		"angleIndex": {"type": "integer", "minimum": 0},
		"templateId": {"type": "string", "minLength": 1},
		"allowOverage": {"type": "boolean"}
	},
	"required": ["templateId", "avatarIndex", "angleIndex"],
	"additionalProperties": true
}`

// templateEntrySchema validates template registry entries at load time.
const templateEntrySchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"kind": {"type": "string", "enum": ["static_ad", "prelander"]},
		"previewUrl": {"type": "string"},
		"promptSlots": {"type": "integer", "minimum": 0}
	},
	"required": ["id", "name", "kind"]
}`

// ValidateStaticAdParams validates a static-ad job payload before submission.
func ValidateStaticAdParams(params map[string]interface{}) *ValidationResult {
	return validateAgainst(params, staticAdParamsSchema)
}

// ValidatePrelanderParams validates a pre-lander job payload before submission.
func ValidatePrelanderParams(params map[string]interface{}) *ValidationResult {
	return validateAgainst(params, prelanderParamsSchema)
}

// ValidateTemplateEntry validates one template registry entry.
func ValidateTemplateEntry(entry map[string]interface{}) *ValidationResult {
	return validateAgainst(entry, templateEntrySchema)
}

func validateAgainst(doc map[string]interface{}, schema string) *ValidationResult {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	docLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "", Message: err.Error()}},
		}
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   re.Field(),
			Message: re.Description(),
		})
	}
	return &ValidationResult{Valid: false, Errors: errs}
}
