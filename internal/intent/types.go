// Package intent maps free-text engineering queries to tool suggestions.
// The pipeline is deterministic and rule based: a lexical pattern library
// scores the query into an intent, an entity extractor pulls typed values
// out of the text, a parameter builder merges them with conversation
// context and registry defaults, and a formatter renders the result as a
// suggestion the caller can confirm or refine. Nothing in this package
// executes a tool.
package intent

import (
	"encoding/json"
	"fmt"
)

// IntentType names one recognized category of query.
type IntentType string

const (
	IntentUnknown           IntentType = "unknown"
	IntentDieCalculation    IntentType = "die_calculation"
	IntentVendorComparison  IntentType = "vendor_comparison"
	IntentVendorSearch      IntentType = "vendor_search"
	IntentRTLParse          IntentType = "rtl_parse"
	IntentSynthesis         IntentType = "synthesis"
	IntentEquivalenceCheck  IntentType = "equivalence_check"
	IntentBoundedModelCheck IntentType = "bounded_model_check"
	IntentWaveformView      IntentType = "waveform_view"
)

// Intent is the classifier's verdict on a query: what the user is asking
// for, how strongly the text supports it, and the entities found along
// the way.
type Intent struct {
	Type       IntentType `json:"type"`
	Confidence float64    `json:"confidence"`
	Entities   EntityBag  `json:"entities"`
}

// IsUnknown reports whether classification fell below the confidence
// threshold.
func (in Intent) IsUnknown() bool { return in.Type == IntentUnknown }

// EntityKind tags the payload variant carried by an EntityValue.
type EntityKind int

const (
	KindNumber EntityKind = iota
	KindText
	KindList
)

var kindNames = map[EntityKind]string{
	KindNumber: "number",
	KindText:   "text",
	KindList:   "list",
}

func (k EntityKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// EntityValue is one extracted value. Exactly one payload field is
// meaningful, selected by Kind.
type EntityValue struct {
	Kind   EntityKind
	Number float64
	Text   string
	List   []string
}

// Number constructs a numeric entity value.
func Number(v float64) EntityValue { return EntityValue{Kind: KindNumber, Number: v} }

// Text constructs a text entity value.
func Text(s string) EntityValue { return EntityValue{Kind: KindText, Text: s} }

// List constructs a list entity value.
func List(items ...string) EntityValue { return EntityValue{Kind: KindList, List: items} }

// Arg returns the value in the shape the argument map and JSON Schema
// validation expect.
func (v EntityValue) Arg() interface{} {
	switch v.Kind {
	case KindNumber:
		return v.Number
	case KindList:
		return v.List
	default:
		return v.Text
	}
}

type entityValueJSON struct {
	Kind   string   `json:"kind"`
	Number *float64 `json:"number,omitempty"`
	Text   string   `json:"text,omitempty"`
	List   []string `json:"list,omitempty"`
}

// MarshalJSON renders the kind as a stable string so stored context
// survives across binary versions.
func (v EntityValue) MarshalJSON() ([]byte, error) {
	out := entityValueJSON{Kind: v.Kind.String()}
	switch v.Kind {
	case KindNumber:
		n := v.Number
		out.Number = &n
	case KindList:
		out.List = v.List
	default:
		out.Text = v.Text
	}
	return json.Marshal(out)
}

func (v *EntityValue) UnmarshalJSON(data []byte) error {
	var raw entityValueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case "number":
		if raw.Number == nil {
			return fmt.Errorf("number entity without a number payload")
		}
		*v = Number(*raw.Number)
	case "list":
		*v = EntityValue{Kind: KindList, List: raw.List}
	case "text":
		*v = Text(raw.Text)
	default:
		return fmt.Errorf("unknown entity kind %q", raw.Kind)
	}
	return nil
}

// EntityBag holds the entities extracted from a single query, keyed by
// canonical entity name.
type EntityBag map[string]EntityValue

// NumberValue returns the named numeric entity, if present.
func (b EntityBag) NumberValue(key string) (float64, bool) {
	v, ok := b[key]
	if !ok || v.Kind != KindNumber {
		return 0, false
	}
	return v.Number, true
}

// TextValue returns the named text entity, if present.
func (b EntityBag) TextValue(key string) (string, bool) {
	v, ok := b[key]
	if !ok || v.Kind != KindText {
		return "", false
	}
	return v.Text, true
}

// ListValue returns the named list entity, if present.
func (b EntityBag) ListValue(key string) ([]string, bool) {
	v, ok := b[key]
	if !ok || v.Kind != KindList {
		return nil, false
	}
	return v.List, true
}

// ConversationContext carries entity values remembered from earlier
// turns of a session. It shares the EntityValue representation so
// follow-up queries can reuse prior extractions directly.
type ConversationContext map[string]EntityValue

// Merged returns a copy of the context overlaid with fresher entities.
// Entities from the current query win over remembered values.
func (cc ConversationContext) Merged(fresh EntityBag) ConversationContext {
	out := make(ConversationContext, len(cc)+len(fresh))
	for k, v := range cc {
		out[k] = v
	}
	for k, v := range fresh {
		out[k] = v
	}
	return out
}

// Suggestion is the engine's answer to a query. SuggestedTool is empty
// when the engine needs clarification; Hints then tell the user what to
// add or rephrase.
type Suggestion struct {
	Interpretation     string                 `json:"interpretation"`
	SuggestedTool      string                 `json:"suggestedTool,omitempty"`
	SuggestedArguments map[string]interface{} `json:"suggestedArguments,omitempty"`
	Explanation        string                 `json:"explanation"`
	Hints              []string               `json:"hints,omitempty"`
}

// NeedsClarification reports whether the suggestion carries no runnable
// tool and the hints are a request for more detail.
func (s Suggestion) NeedsClarification() bool { return s.SuggestedTool == "" }

// ParameterSet is a fully built, typed argument set for one tool. Each
// intent has its own concrete parameter struct; the engine only converts
// to a generic map at the validation and formatting boundary.
type ParameterSet interface {
	// Tool names the registry tool these parameters belong to.
	Tool() string
	// Args renders the parameters as a JSON-Schema-validatable map.
	Args() map[string]interface{}
}
