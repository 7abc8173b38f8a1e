package utility

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/choicelab/choicelab/internal/expr"
	"github.com/choicelab/choicelab/schemas"
	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// modelSchema is the compiled JSON Schema for model files.
var modelSchema *jsonschema.Schema

func init() {
	modelSchema = mustCompileSchema(schemas.ModelSchemaJSON, "model.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// modelFile is the on-disk layout of a model file.
type modelFile struct {
	Name        string         `mapstructure:"name"`
	Description string         `mapstructure:"description"`
	Parameters  []Parameter    `mapstructure:"parameters"`
	Utilities   map[string]any `mapstructure:"utilities"`
}

// Load reads a YAML (or JSON) model file.
func Load(path string) (*Specification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Parse decodes a model document. Schema violations and malformed
// expressions are reported as *SpecificationError.
func Parse(data []byte) (*Specification, error) {
	doc, err := decodeYAML(data)
	if err != nil {
		return nil, &SpecificationError{Problem: err.Error()}
	}
	if errs := validateAgainstSchema(modelSchema, doc); len(errs) > 0 {
		return nil, &SpecificationError{Problem: "schema: " + strings.Join(errs, "; ")}
	}

	var mf modelFile
	if err := mapstructure.Decode(doc, &mf); err != nil {
		return nil, &SpecificationError{Problem: err.Error()}
	}

	spec := &Specification{
		Name:       mf.Name,
		Parameters: mf.Parameters,
		Utilities:  make(map[int]expr.Expr, len(mf.Utilities)),
	}

	labels := make([]string, 0, len(mf.Utilities))
	for k := range mf.Utilities {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	for _, k := range labels {
		alt, err := strconv.Atoi(k)
		if err != nil {
			return nil, spec.fail("alternative label %q is not an integer", k)
		}
		e, err := expr.Decode(mf.Utilities[k])
		if err != nil {
			return nil, spec.fail("utility of alternative %d: %v", alt, err)
		}
		spec.Utilities[alt] = e
	}
	return spec, nil
}

// ValidateBytes checks raw model bytes against the model schema and returns
// one message per violation.
func ValidateBytes(data []byte) []string {
	doc, err := decodeYAML(data)
	if err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}
	return validateAgainstSchema(modelSchema, doc)
}

func decodeYAML(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return convertToJSONCompatible(doc), nil
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible turns YAML-decoded values into the shapes the
// schema validator expects. Unquoted numeric mapping keys (utilities: {1: ...})
// decode as map[any]any and are stringified here.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[fmt.Sprint(k)] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
