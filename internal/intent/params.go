package intent

import (
	"sort"

	"eda-copilot/internal/registry"
)

// buildResult is the outcome of parameter assembly for one intent.
// params is nil when any required parameter is still missing; missing
// then names the gaps and the formatter turns them into hints.
type buildResult struct {
	params  ParameterSet
	missing []string
	applied []string
}

type builderFunc func(spec *registry.ToolSpec, values ConversationContext) buildResult

// builders binds each intent to its parameter assembly. Every pattern
// the engine accepts must have an entry here; New checks this at
// construction time.
var builders = map[IntentType]builderFunc{
	IntentDieCalculation:    buildDieCalc,
	IntentVendorComparison:  buildVendorCompare,
	IntentVendorSearch:      buildVendorSearch,
	IntentRTLParse:          buildRTLParse,
	IntentSynthesis:         buildSynthesis,
	IntentEquivalenceCheck:  buildEquivalence,
	IntentBoundedModelCheck: buildBMC,
	IntentWaveformView:      buildWaveform,
}

// assembler resolves each parameter through the merge order: a value
// extracted or remembered for the session wins, then the registry
// default, and with neither the parameter is recorded as missing.
type assembler struct {
	spec     *registry.ToolSpec
	values   ConversationContext
	defaults map[string]interface{}
	missing  []string
	applied  []string
}

func newAssembler(spec *registry.ToolSpec, values ConversationContext) *assembler {
	return &assembler{spec: spec, values: values, defaults: spec.Defaults()}
}

func (a *assembler) number(entityKey, param string) float64 {
	if v, ok := a.values[entityKey]; ok && v.Kind == KindNumber {
		return v.Number
	}
	if def, ok := a.defaults[param].(float64); ok {
		a.applied = append(a.applied, param)
		return def
	}
	a.missing = append(a.missing, param)
	return 0
}

func (a *assembler) text(entityKey, param string) string {
	if v, ok := a.values[entityKey]; ok && v.Kind == KindText {
		return v.Text
	}
	if def, ok := a.defaults[param].(string); ok {
		a.applied = append(a.applied, param)
		return def
	}
	a.missing = append(a.missing, param)
	return ""
}

// list enforces the schema's minItems at build time, so a comparison
// with one vendor asks for another name instead of failing validation.
func (a *assembler) list(entityKey, param string) []string {
	min := a.spec.MinItems(param)
	if v, ok := a.values[entityKey]; ok && v.Kind == KindList && len(v.List) >= min {
		return v.List
	}
	a.missing = append(a.missing, param)
	return nil
}

func (a *assembler) finish(p ParameterSet) buildResult {
	sort.Strings(a.applied)
	if len(a.missing) > 0 {
		sort.Strings(a.missing)
		return buildResult{missing: a.missing, applied: a.applied}
	}
	return buildResult{params: p, applied: a.applied}
}

// DieCalcParams drives calculate_die_per_wafer. All lengths are in
// millimetres.
type DieCalcParams struct {
	WaferDiameter float64
	DieWidth      float64
	DieHeight     float64
	EdgeExclusion float64
	ScribeLane    float64
}

func (p DieCalcParams) Tool() string { return "calculate_die_per_wafer" }

func (p DieCalcParams) Args() map[string]interface{} {
	return map[string]interface{}{
		"wafer_diameter": p.WaferDiameter,
		"die_width":      p.DieWidth,
		"die_height":     p.DieHeight,
		"edge_exclusion": p.EdgeExclusion,
		"scribe_lane":    p.ScribeLane,
	}
}

func buildDieCalc(spec *registry.ToolSpec, values ConversationContext) buildResult {
	a := newAssembler(spec, values)
	p := DieCalcParams{
		WaferDiameter: a.number("waferDiameter", "wafer_diameter"),
		DieWidth:      a.number("dieWidth", "die_width"),
		DieHeight:     a.number("dieHeight", "die_height"),
		EdgeExclusion: a.number("edgeExclusion", "edge_exclusion"),
		ScribeLane:    a.number("scribeLane", "scribe_lane"),
	}
	return a.finish(p)
}

// VendorCompareParams drives compare_vendors.
type VendorCompareParams struct {
	Vendors []string
	Aspect  string
}

func (p VendorCompareParams) Tool() string { return "compare_vendors" }

func (p VendorCompareParams) Args() map[string]interface{} {
	return map[string]interface{}{
		"vendors": p.Vendors,
		"aspect":  p.Aspect,
	}
}

func buildVendorCompare(spec *registry.ToolSpec, values ConversationContext) buildResult {
	a := newAssembler(spec, values)
	p := VendorCompareParams{
		Vendors: a.list("vendors", "vendors"),
		Aspect:  a.text("aspect", "aspect"),
	}
	return a.finish(p)
}

// VendorSearchParams drives find_ip_vendor.
type VendorSearchParams struct {
	Category    string
	ProcessNode string
	Limit       float64
}

func (p VendorSearchParams) Tool() string { return "find_ip_vendor" }

func (p VendorSearchParams) Args() map[string]interface{} {
	return map[string]interface{}{
		"category":     p.Category,
		"process_node": p.ProcessNode,
		"limit":        p.Limit,
	}
}

func buildVendorSearch(spec *registry.ToolSpec, values ConversationContext) buildResult {
	a := newAssembler(spec, values)
	p := VendorSearchParams{
		Category:    a.text("category", "category"),
		ProcessNode: a.text("processNode", "process_node"),
		Limit:       a.number("limit", "limit"),
	}
	return a.finish(p)
}

// RTLParseParams drives parse_rtl.
type RTLParseParams struct {
	ModuleName string
	Detail     string
}

func (p RTLParseParams) Tool() string { return "parse_rtl" }

func (p RTLParseParams) Args() map[string]interface{} {
	return map[string]interface{}{
		"module_name": p.ModuleName,
		"detail":      p.Detail,
	}
}

func buildRTLParse(spec *registry.ToolSpec, values ConversationContext) buildResult {
	a := newAssembler(spec, values)
	p := RTLParseParams{
		ModuleName: a.text("moduleName", "module_name"),
		Detail:     a.text("detail", "detail"),
	}
	return a.finish(p)
}

// SynthesisParams drives run_synthesis.
type SynthesisParams struct {
	ModuleName string
	Target     string
}

func (p SynthesisParams) Tool() string { return "run_synthesis" }

func (p SynthesisParams) Args() map[string]interface{} {
	return map[string]interface{}{
		"module_name": p.ModuleName,
		"target":      p.Target,
	}
}

func buildSynthesis(spec *registry.ToolSpec, values ConversationContext) buildResult {
	a := newAssembler(spec, values)
	p := SynthesisParams{
		ModuleName: a.text("moduleName", "module_name"),
		Target:     a.text("target", "target"),
	}
	return a.finish(p)
}

// EquivalenceParams drives c2rtl_equivalence. Every field has a registry
// default, so a bare "run an equivalence check" is runnable as-is.
type EquivalenceParams struct {
	CFunction string
	RTLModule string
	Depth     float64
}

func (p EquivalenceParams) Tool() string { return "c2rtl_equivalence" }

func (p EquivalenceParams) Args() map[string]interface{} {
	return map[string]interface{}{
		"c_function": p.CFunction,
		"rtl_module": p.RTLModule,
		"depth":      p.Depth,
	}
}

func buildEquivalence(spec *registry.ToolSpec, values ConversationContext) buildResult {
	a := newAssembler(spec, values)
	p := EquivalenceParams{
		CFunction: a.text("functionName", "c_function"),
		RTLModule: a.text("moduleName", "rtl_module"),
		Depth:     a.number("depth", "depth"),
	}
	return a.finish(p)
}

// BMCParams drives run_bmc.
type BMCParams struct {
	Bound float64
}

func (p BMCParams) Tool() string { return "run_bmc" }

func (p BMCParams) Args() map[string]interface{} {
	return map[string]interface{}{"bound": p.Bound}
}

func buildBMC(spec *registry.ToolSpec, values ConversationContext) buildResult {
	a := newAssembler(spec, values)
	p := BMCParams{Bound: a.number("bound", "bound")}
	return a.finish(p)
}

// WaveformParams drives view_waveform.
type WaveformParams struct {
	SignalName string
	Format     string
}

func (p WaveformParams) Tool() string { return "view_waveform" }

func (p WaveformParams) Args() map[string]interface{} {
	return map[string]interface{}{
		"signal_name": p.SignalName,
		"format":      p.Format,
	}
}

func buildWaveform(spec *registry.ToolSpec, values ConversationContext) buildResult {
	a := newAssembler(spec, values)
	p := WaveformParams{
		SignalName: a.text("signalName", "signal_name"),
		Format:     a.text("format", "format"),
	}
	return a.finish(p)
}
