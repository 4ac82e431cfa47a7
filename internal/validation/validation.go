// Package validation checks a manual dataset against its JSON schema.
//
// Normalization tolerates almost any shape, so a malformed record is silently
// skipped or defaulted at merge time. Validation is the strict counterpart,
// run by the validate command before a dataset is published.
package validation

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/agentstation/peerreviews/internal/sources/local"
	"github.com/agentstation/peerreviews/pkg/errors"
)

//go:embed manual.schema.json
var manualSchema []byte

const manualSchemaURL = "https://peerreviews.local/schema/manual.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Violation is one schema failure.
type Violation struct {
	// Path is a JSON pointer into the dataset, "/" for the root.
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

// String formats the violation for display.
func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Schema returns the embedded schema document.
func Schema() []byte {
	return slices.Clone(manualSchema)
}

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(manualSchema))
		if err != nil {
			compileErr = errors.WrapParse("json", "manual.schema.json", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(manualSchemaURL, doc); err != nil {
			compileErr = errors.NewConfigError("validation", "invalid embedded schema", err)
			return
		}
		compiled, compileErr = c.Compile(manualSchemaURL)
	})
	return compiled, compileErr
}

// ValidateManual validates JSON dataset bytes and returns every violation,
// ordered by path. The error is non-nil only when data is not JSON.
func ValidateManual(data []byte) ([]Violation, error) {
	sch, err := schema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapParse("json", "", err)
	}

	err = sch.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}

	printer := message.NewPrinter(language.English)
	var violations []Violation
	collect(verr, printer, &violations)

	slices.SortStableFunc(violations, func(a, b Violation) int {
		return strings.Compare(a.Path, b.Path)
	})
	return slices.Compact(violations), nil
}

// ValidateFile reads a dataset file, converting YAML to JSON when the
// extension asks for it, and validates it.
func ValidateFile(path string) ([]Violation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("manual dataset", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}

	if local.IsYAML(path) {
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return nil, errors.WrapParse("yaml", path, err)
		}
	}

	violations, err := ValidateManual(data)
	var parseErr *errors.ParseError
	if errors.As(err, &parseErr) {
		parseErr.File = path
	}
	return violations, err
}

// collect gathers the leaf causes, which carry the specific keyword failures.
func collect(verr *jsonschema.ValidationError, printer *message.Printer, out *[]Violation) {
	if len(verr.Causes) == 0 {
		*out = append(*out, Violation{
			Path:    pointer(verr.InstanceLocation),
			Message: verr.ErrorKind.LocalizedString(printer),
		})
		return
	}
	for _, cause := range verr.Causes {
		collect(cause, printer, out)
	}
}

func pointer(location []string) string {
	if len(location) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, token := range location {
		b.WriteByte('/')
		token = strings.ReplaceAll(token, "~", "~0")
		b.WriteString(strings.ReplaceAll(token, "/", "~1"))
	}
	return b.String()
}

