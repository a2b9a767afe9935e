// Package agenttype provides a declarative, constructed registry of the
// valid agent-type names and their aliases, replacing a singleton-like
// static validator with process-wide side effects (per the Design Notes).
// It is grounded on internal/agent/discovery.go's Registry shape
// (map-backed, Exists/Get/List) but built from a fixed table instead of
// filesystem discovery.
package agenttype

import "strings"

// Type is one of the five canonical agent roles.
type Type string

const (
	Wyrm         Type = "Wyrm"
	Wyvern       Type = "Wyvern"
	Drake        Type = "Drake"
	KoboldPlanner Type = "KoboldPlanner"
	Kobold       Type = "Kobold"
)

// canonical lists every valid Type with the aliases that resolve to it.
var canonical = map[Type][]string{
	Wyrm:          {"wyrm", "planner-wyrm", "analyst"},
	Wyvern:        {"wyvern", "reviewer"},
	Drake:         {"drake", "implementer", "executor"},
	KoboldPlanner: {"kobold-planner", "kobold_planner", "planner"},
	Kobold:        {"kobold", "worker"},
}

// Validator is a constructed, immutable value owned by whichever
// component needs to validate/normalize agent-type names (the Scheduler).
// There is no package-level mutable singleton: callers hold their own
// Validator value.
type Validator struct {
	aliasToType map[string]Type
	order       []Type
}

// New builds a Validator from the declarative canonical table.
func New() *Validator {
	v := &Validator{aliasToType: make(map[string]Type)}
	for _, t := range []Type{Wyrm, Wyvern, Drake, KoboldPlanner, Kobold} {
		v.order = append(v.order, t)
		v.aliasToType[strings.ToLower(string(t))] = t
		for _, alias := range canonical[t] {
			v.aliasToType[strings.ToLower(alias)] = t
		}
	}
	return v
}

// Exists reports whether name (case-insensitive, alias or canonical)
// resolves to a known Type.
func (v *Validator) Exists(name string) bool {
	_, ok := v.aliasToType[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Resolve normalizes name to its canonical Type.
func (v *Validator) Resolve(name string) (Type, bool) {
	t, ok := v.aliasToType[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// List returns every canonical Type in a fixed, stable order.
func (v *Validator) List() []Type {
	out := make([]Type, len(v.order))
	copy(out, v.order)
	return out
}
