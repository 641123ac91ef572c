package planfile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/masonql/mason/internal/plan"
)

// Error code constants, stable across CLI output formats.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = "E002" // Plan file not found
	ErrCodeBadExtension = "E003" // Unrecognized file extension
	ErrCodeParseFailed  = "E004" // YAML/CUE parse failed
	ErrCodeSchema       = "E005" // CUE schema violation
	ErrCodeMissingQuery = "E101" // Document has no query
	ErrCodeBadCondition = "E102" // Unknown or malformed condition
)

// LoadError is a coded loading failure.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

//go:embed schema.cue
var schemaSource []byte

// Load reads a plan file, picking the format from the extension:
// .yaml/.yml or .cue.
func Load(path string) (*plan.QueryPlan, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("plan file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading plan file: %v", err)}
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	case ".cue":
		return LoadCUE(data)
	default:
		return nil, &LoadError{Code: ErrCodeBadExtension, Message: fmt.Sprintf("unrecognized plan file extension %q (want .yaml, .yml or .cue)", filepath.Ext(path))}
	}
}

// LoadYAML decodes a YAML plan document.
func LoadYAML(data []byte) (*plan.QueryPlan, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing YAML plan: %v", err)}
	}
	return Build(&f)
}

// LoadCUE compiles a CUE plan document, unifies it with the embedded
// #Plan schema and decodes the validated value.
func LoadCUE(data []byte) (*plan.QueryPlan, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource)
	if err := schema.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("compiling plan schema: %v", err)}
	}
	def := schema.LookupPath(cue.ParsePath("#Plan"))
	if !def.Exists() {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "plan schema has no #Plan definition"}
	}
	doc := ctx.CompileBytes(data)
	if err := doc.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing CUE plan: %v", err)}
	}
	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("plan does not satisfy schema: %v", err)}
	}
	var f File
	if err := unified.Decode(&f); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("decoding CUE plan: %v", err)}
	}
	return Build(&f)
}
