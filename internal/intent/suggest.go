package intent

import (
	"fmt"
	"strings"
	"time"

	"eda-copilot/internal/common/logger"
	"eda-copilot/internal/common/metrics"
	"eda-copilot/internal/registry"
)

// Engine is the query-to-suggestion pipeline. It is safe for concurrent
// use: all state is set at construction and read-only afterwards.
type Engine struct {
	reg       *registry.Registry
	log       logger.Logger
	patterns  []Pattern
	threshold float64
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithPatterns replaces the built-in pattern library.
func WithPatterns(patterns []Pattern) Option {
	return func(e *Engine) { e.patterns = patterns }
}

// WithThreshold overrides the confidence threshold.
func WithThreshold(t float64) Option {
	return func(e *Engine) { e.threshold = t }
}

// New builds an engine over a tool registry. Construction fails when the
// pattern library is inconsistent or references a tool or intent the
// rest of the pipeline cannot serve; a bad deployment surfaces here, not
// on the first query.
func New(reg *registry.Registry, log logger.Logger, opts ...Option) (*Engine, error) {
	if reg == nil {
		return nil, fmt.Errorf("engine requires a tool registry")
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	e := &Engine{
		reg:       reg,
		log:       log,
		patterns:  DefaultPatterns(),
		threshold: DefaultConfidenceThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.threshold <= 0 || e.threshold > 1 {
		return nil, fmt.Errorf("confidence threshold %v out of range (0, 1]", e.threshold)
	}
	if err := validatePatterns(e.patterns); err != nil {
		return nil, err
	}
	for _, p := range e.patterns {
		if _, ok := reg.Tool(p.Tool); !ok {
			return nil, fmt.Errorf("pattern %q references unregistered tool %q", p.Intent, p.Tool)
		}
		if _, ok := builders[p.Intent]; !ok {
			return nil, fmt.Errorf("no parameter builder for intent %q", p.Intent)
		}
	}
	return e, nil
}

// Threshold reports the confidence threshold in effect.
func (e *Engine) Threshold() float64 { return e.threshold }

// Patterns returns the pattern library in declaration order.
func (e *Engine) Patterns() []Pattern {
	out := make([]Pattern, len(e.patterns))
	copy(out, e.patterns)
	return out
}

// Recognize classifies a query and extracts its entities. It is a pure
// read on the engine: calling it twice with the same query returns the
// same result.
func (e *Engine) Recognize(query string) Intent {
	intentType, confidence := classify(query, e.patterns, e.threshold)
	return Intent{
		Type:       intentType,
		Confidence: confidence,
		Entities:   e.ExtractEntities(query, intentType),
	}
}

// ExtractEntities runs the extractor for a known intent type.
func (e *Engine) ExtractEntities(query string, it IntentType) EntityBag {
	return extractEntities(query, it)
}

// BuildSuggestion runs the full pipeline: classify, extract, merge with
// conversation context, assemble parameters, and format. It always
// returns a suggestion; ambiguity and missing detail come back as
// clarification hints, never as an error.
func (e *Engine) BuildSuggestion(query string, cc ConversationContext) Suggestion {
	start := time.Now()
	in := e.Recognize(query)
	defer func() {
		metrics.SuggestionDuration.WithLabelValues(string(in.Type)).Observe(time.Since(start).Seconds())
	}()
	metrics.QueriesTotal.WithLabelValues(string(in.Type)).Inc()

	e.log.Debug("classified query", map[string]interface{}{
		"intent":     string(in.Type),
		"confidence": in.Confidence,
		"entities":   len(in.Entities),
	})

	if in.IsUnknown() {
		metrics.ClarificationsTotal.WithLabelValues(metrics.ReasonUnknownIntent).Inc()
		return e.unknownSuggestion(in)
	}

	pattern := e.patternFor(in.Type)
	spec, _ := e.reg.Tool(pattern.Tool)
	merged := cc.Merged(in.Entities)
	result := builders[in.Type](spec, merged)

	if result.params == nil {
		metrics.ClarificationsTotal.WithLabelValues(metrics.ReasonMissingParams).Inc()
		return e.incompleteSuggestion(in, spec, result.missing)
	}

	args := result.params.Args()
	if err := spec.ValidateArgs(args); err != nil {
		// Extraction and assembly disagree with the schema. This is a
		// pipeline defect, not a user problem, so log it loudly and ask
		// for a rephrase rather than suggesting broken arguments.
		e.log.Error("built arguments failed schema validation", map[string]interface{}{
			"tool":  spec.Name,
			"error": err.Error(),
		})
		metrics.ClarificationsTotal.WithLabelValues(metrics.ReasonMissingParams).Inc()
		return e.incompleteSuggestion(in, spec, spec.Required())
	}

	return Suggestion{
		Interpretation:     describe(result.params),
		SuggestedTool:      spec.Name,
		SuggestedArguments: args,
		Explanation: fmt.Sprintf("Matched intent %s with confidence %.2f; run %s to get the answer.",
			in.Type, in.Confidence, spec.DisplayName),
		Hints: defaultHints(spec, result.applied),
	}
}

// unknownSuggestion answers a query no pattern matched: no tool, and one
// example per intent so the user can see what the engine understands.
func (e *Engine) unknownSuggestion(in Intent) Suggestion {
	hints := make([]string, 0, len(e.patterns))
	for _, p := range e.patterns {
		hints = append(hints, fmt.Sprintf("For %s, try: %q", p.Intent, p.Example))
	}
	return Suggestion{
		Interpretation: "I could not map this query to a known task.",
		Explanation: fmt.Sprintf("No intent scored at or above the %.2f confidence threshold (best %.2f).",
			e.threshold, in.Confidence),
		Hints: hints,
	}
}

// incompleteSuggestion answers a recognized query that lacks required
// parameters: no tool yet, and one hint per missing field.
func (e *Engine) incompleteSuggestion(in Intent, spec *registry.ToolSpec, missing []string) Suggestion {
	hints := make([]string, 0, len(missing))
	for _, param := range missing {
		hints = append(hints, fmt.Sprintf("Add %s: %s.", param, spec.ParamDescription(param)))
	}
	return Suggestion{
		Interpretation: fmt.Sprintf("This looks like a %s request for %s, but some details are missing.",
			in.Type, spec.DisplayName),
		Explanation: fmt.Sprintf("Matched intent %s with confidence %.2f, but %s needs more detail to run.",
			in.Type, in.Confidence, spec.Name),
		Hints: hints,
	}
}

// defaultHints tells the user which values were assumed rather than
// stated, so a silent default never surprises them.
func defaultHints(spec *registry.ToolSpec, applied []string) []string {
	if len(applied) == 0 {
		return nil
	}
	defaults := spec.Defaults()
	hints := make([]string, 0, len(applied))
	for _, param := range applied {
		hints = append(hints, fmt.Sprintf("Assumed %s = %v (%s).", param, defaults[param], spec.ParamDescription(param)))
	}
	return hints
}

func (e *Engine) patternFor(it IntentType) Pattern {
	for _, p := range e.patterns {
		if p.Intent == it {
			return p
		}
	}
	return Pattern{}
}

// describe renders a one-line reading of the assembled parameters.
func describe(p ParameterSet) string {
	switch v := p.(type) {
	case DieCalcParams:
		return fmt.Sprintf("Calculate die per wafer for a %gx%gmm die on a %gmm wafer (edge exclusion %gmm, scribe lane %gmm).",
			v.DieWidth, v.DieHeight, v.WaferDiameter, v.EdgeExclusion, v.ScribeLane)
	case VendorCompareParams:
		return fmt.Sprintf("Compare vendors %s on %s.", strings.Join(v.Vendors, ", "), v.Aspect)
	case VendorSearchParams:
		return fmt.Sprintf("Search for up to %g %s vendors (process node: %s).", v.Limit, v.Category, v.ProcessNode)
	case RTLParseParams:
		return fmt.Sprintf("Parse module %s and report its %s.", v.ModuleName, v.Detail)
	case SynthesisParams:
		return fmt.Sprintf("Synthesize module %s for the %s target.", v.ModuleName, v.Target)
	case EquivalenceParams:
		return fmt.Sprintf("Check equivalence between C function %s and RTL module %s to depth %g.",
			v.CFunction, v.RTLModule, v.Depth)
	case BMCParams:
		return fmt.Sprintf("Run bounded model checking with unwind bound %g.", v.Bound)
	case WaveformParams:
		return fmt.Sprintf("Show the %s waveform for signal %s.", v.Format, v.SignalName)
	default:
		return fmt.Sprintf("Run %s.", p.Tool())
	}
}
