package enhance

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed response.schema.json
var responseSchemaJSON string

var responseSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchemaJSON))
})

var ErrNoJSON = errors.New("no json object in response")

// ValidationError lists the schema violations of a remote answer.
type ValidationError struct {
	Errors []FieldError
}

type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return "response validation failed: " + strings.Join(parts, "; ")
}

type response struct {
	MatchScore          float64  `mapstructure:"match_score"`
	MatchingSkills      []string `mapstructure:"matching_skills"`
	MissingSkills       []string `mapstructure:"missing_skills"`
	ExperienceAlignment any      `mapstructure:"experience_alignment"`
	Explanation         string   `mapstructure:"explanation"`
	Recommendations     []string `mapstructure:"recommendations"`
}

func parseResponse(raw string) (*response, error) {
	span, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	schema, err := responseSchema()
	if err != nil {
		return nil, fmt.Errorf("load response schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(span))
	if err != nil {
		return nil, fmt.Errorf("parse response json: %w", err)
	}
	if !result.Valid() {
		ve := &ValidationError{}
		for _, desc := range result.Errors() {
			ve.Errors = append(ve.Errors, FieldError{Field: desc.Field(), Message: desc.Description()})
		}
		return nil, ve
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(span), &data); err != nil {
		return nil, fmt.Errorf("parse response json: %w", err)
	}

	var out response
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &out, nil
}

// extractJSON returns the text between the first '{' and the last '}'.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return raw[start : end+1], nil
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
