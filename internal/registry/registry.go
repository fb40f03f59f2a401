// Package registry loads and serves the tool catalogue. Every tool the
// suggestion engine can point at is declared here, with a JSON Schema for
// its arguments, declared defaults, and an argv template for the executor.
// The registry fails fast: a malformed document or an uncompilable schema
// is rejected at load time, never at query time.
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	apperrors "eda-copilot/internal/common/errors"
)

//go:embed tools.json
var defaultRegistryJSON []byte

// document is the on-disk shape of a registry file.
type document struct {
	Version     string      `json:"version"`
	LastUpdated string      `json:"lastUpdated"`
	Tools       []*ToolSpec `json:"tools"`
}

// ToolSpec describes one executable tool: what it is, how to invoke it,
// and the JSON Schema its arguments must satisfy.
type ToolSpec struct {
	Name        string                 `json:"name"`
	DisplayName string                 `json:"displayName"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Command     []string               `json:"command"`
	Timeout     string                 `json:"timeout"`
	Tags        []string               `json:"tags"`
	InputSchema map[string]interface{} `json:"inputSchema"`

	schema   *gojsonschema.Schema
	defaults map[string]interface{}
	required []string
	minItems map[string]int
	descs    map[string]string
}

// Registry is an immutable, name-indexed view over a parsed document.
// Declaration order is preserved.
type Registry struct {
	Version     string
	LastUpdated string

	byName map[string]*ToolSpec
	order  []string
}

// Load reads and parses a registry document from disk.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewRegistryLoadFailedError(path, err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, apperrors.NewRegistryLoadFailedError(path, err)
	}
	return reg, nil
}

// Default parses the registry document embedded in the binary.
func Default() (*Registry, error) {
	return Parse(defaultRegistryJSON)
}

// MustDefault is Default for wiring code and tests where the embedded
// document is known good.
func MustDefault() *Registry {
	reg, err := Default()
	if err != nil {
		panic(err)
	}
	return reg
}

// Parse decodes a registry document and compiles every tool schema.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode registry document: %w", err)
	}
	if len(doc.Tools) == 0 {
		return nil, fmt.Errorf("registry document declares no tools")
	}

	reg := &Registry{
		Version:     doc.Version,
		LastUpdated: doc.LastUpdated,
		byName:      make(map[string]*ToolSpec, len(doc.Tools)),
		order:       make([]string, 0, len(doc.Tools)),
	}
	for i, ts := range doc.Tools {
		if ts.Name == "" {
			return nil, fmt.Errorf("tool at index %d has no name", i)
		}
		if _, dup := reg.byName[ts.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", ts.Name)
		}
		if len(ts.Command) == 0 {
			return nil, fmt.Errorf("tool %q declares no command", ts.Name)
		}
		if ts.InputSchema == nil {
			return nil, fmt.Errorf("tool %q declares no input schema", ts.Name)
		}
		if err := ts.compile(); err != nil {
			return nil, err
		}
		reg.byName[ts.Name] = ts
		reg.order = append(reg.order, ts.Name)
	}
	return reg, nil
}

// compile builds the validator and the derived per-parameter views.
func (ts *ToolSpec) compile() error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(ts.InputSchema))
	if err != nil {
		return apperrors.NewSchemaCompileFailedError(ts.Name, err)
	}
	ts.schema = schema

	ts.defaults = make(map[string]interface{})
	ts.minItems = make(map[string]int)
	ts.descs = make(map[string]string)

	props, _ := ts.InputSchema["properties"].(map[string]interface{})
	for name, raw := range props {
		prop, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if def, ok := prop["default"]; ok {
			ts.defaults[name] = def
		}
		if desc, ok := prop["description"].(string); ok {
			ts.descs[name] = desc
		}
		if min, ok := prop["minItems"].(float64); ok {
			ts.minItems[name] = int(min)
		}
	}

	if rawReq, ok := ts.InputSchema["required"].([]interface{}); ok {
		for _, r := range rawReq {
			if s, ok := r.(string); ok {
				ts.required = append(ts.required, s)
			}
		}
	}
	return nil
}

// Tool looks a tool up by name.
func (r *Registry) Tool(name string) (*ToolSpec, bool) {
	ts, ok := r.byName[name]
	return ts, ok
}

// Names returns tool names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Specs returns all tool specs in declaration order.
func (r *Registry) Specs() []*ToolSpec {
	out := make([]*ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len reports the number of registered tools.
func (r *Registry) Len() int { return len(r.order) }

// Defaults returns a copy of the tool's declared parameter defaults.
func (ts *ToolSpec) Defaults() map[string]interface{} {
	out := make(map[string]interface{}, len(ts.defaults))
	for k, v := range ts.defaults {
		out[k] = v
	}
	return out
}

// Required returns the tool's required parameter names, sorted for
// stable clarification output.
func (ts *ToolSpec) Required() []string {
	out := make([]string, len(ts.required))
	copy(out, ts.required)
	sort.Strings(out)
	return out
}

// MinItems reports the schema minItems constraint for a list parameter,
// or zero when none is declared.
func (ts *ToolSpec) MinItems(param string) int {
	return ts.minItems[param]
}

// ParamDescription returns the schema description for a parameter,
// falling back to the parameter name.
func (ts *ToolSpec) ParamDescription(param string) string {
	if d, ok := ts.descs[param]; ok {
		return d
	}
	return param
}

// ExecTimeout parses the tool's declared timeout, falling back to a
// given default when absent or malformed.
func (ts *ToolSpec) ExecTimeout(fallback time.Duration) time.Duration {
	if ts.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(ts.Timeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// ValidateArgs checks a fully built argument map against the tool's
// schema. Validation failures come back as ARGUMENTS_INVALID.
func (ts *ToolSpec) ValidateArgs(args map[string]interface{}) error {
	result, err := ts.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return apperrors.NewArgumentsInvalidError(ts.Name, err.Error())
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return apperrors.NewArgumentsInvalidError(ts.Name, strings.Join(msgs, "; "))
}

// BuildArgv renders the tool's command template against an argument
// map. Placeholders use {{name}} syntax and may appear mid-token.
func (ts *ToolSpec) BuildArgv(args map[string]interface{}) []string {
	argv := make([]string, len(ts.Command))
	for i, token := range ts.Command {
		argv[i] = expandToken(token, args)
	}
	return argv
}

func expandToken(token string, args map[string]interface{}) string {
	out := token
	for name, val := range args {
		placeholder := "{{" + name + "}}"
		if strings.Contains(out, placeholder) {
			out = strings.ReplaceAll(out, placeholder, formatArg(val))
		}
	}
	return out
}

func formatArg(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case []string:
		return strings.Join(val, ",")
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatArg(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", val)
	}
}
