package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

// maxReportedViolations caps how many violations an error message lists.
const maxReportedViolations = 3

// compiledSchemas holds compiled schemas keyed by Schema.Name.
var compiledSchemas sync.Map // map[string]*jsonschema.Schema

// Violation is one place where a structured reply breaks its schema.
type Violation struct {
	// Path is the JSON pointer of the offending value, e.g. "/quiz/1/correct".
	Path    string
	Message string
}

// Field renders Path for people: "/quiz/1/correct" becomes "quiz[1].correct".
func (v Violation) Field() string {
	if v.Path == "" {
		return "(root)"
	}
	var b strings.Builder
	for _, tok := range strings.Split(strings.TrimPrefix(v.Path, "/"), "/") {
		tok = strings.NewReplacer("~1", "/", "~0", "~").Replace(tok)
		if _, err := strconv.Atoi(tok); err == nil && b.Len() > 0 {
			fmt.Fprintf(&b, "[%s]", tok)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(tok)
	}
	return b.String()
}

func (v Violation) String() string {
	return v.Field() + ": " + v.Message
}

// validateResponse checks a structured reply against schema. A nil schema
// accepts anything. Failures are *ErrInvalidResponse; schema mismatches
// carry one Violation per offending value.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("reply is not JSON: %w", err)}
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("compile schema %q: %w", schema.Name, err)}
	}

	err = compiled.Validate(parsed)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}

	violations := collectViolations(verr)
	return &ErrInvalidResponse{
		Content:    raw,
		Violations: violations,
		Err:        fmt.Errorf("%s reply breaks its schema: %s", schema.Name, summarize(violations)),
	}
}

// collectViolations flattens a validation error to its concrete failures,
// dropping the grouping nodes, ordered by path.
func collectViolations(verr *jsonschema.ValidationError) []Violation {
	var out []Violation
	for _, unit := range verr.BasicOutput().Errors {
		if unit.Error == nil {
			continue
		}
		switch unit.Error.Kind.(type) {
		case *kind.Group, *kind.Schema, *kind.Reference:
			continue
		}
		out = append(out, Violation{Path: unit.InstanceLocation, Message: unit.Error.String()})
	}
	if len(out) == 0 {
		var path string
		if len(verr.InstanceLocation) > 0 {
			path = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		out = append(out, Violation{Path: path, Message: verr.Error()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func summarize(violations []Violation) string {
	parts := make([]string, 0, maxReportedViolations+1)
	for i, v := range violations {
		if i == maxReportedViolations {
			parts = append(parts, fmt.Sprintf("and %d more", len(violations)-i))
			break
		}
		parts = append(parts, v.String())
	}
	return strings.Join(parts, "; ")
}

func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants decoded JSON, not Go maps with typed slices.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := "schema://" + schema.Name + ".json"
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	compiledSchemas.Store(schema.Name, compiled)
	return compiled, nil
}
