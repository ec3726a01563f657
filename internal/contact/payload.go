package contact

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Submission is the form payload.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Decode parses and validates a request body. A body that is not JSON at
// all is a plain error; a JSON body that fails the schema is a
// *ValidationError.
func Decode(body []byte) (Submission, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return Submission{}, fmt.Errorf("decode contact payload: %w", err)
	}

	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return Submission{}, fmt.Errorf("validate contact payload: %w", err)
	}
	if !res.Valid() {
		verr := &ValidationError{}
		for _, e := range res.Errors() {
			verr.Problems = append(verr.Problems, e.String())
		}
		return Submission{}, verr
	}

	var sub Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		return Submission{}, fmt.Errorf("decode contact payload: %w", err)
	}
	return sub, nil
}
