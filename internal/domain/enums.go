package domain

import "strings"

type FlowState string

const (
	FlowFocused    FlowState = "focused"
	FlowDeepWork   FlowState = "deep_work"
	FlowRelaxed    FlowState = "relaxed"
	FlowDistracted FlowState = "distracted"
)

// Label renders the flow state for display, e.g. "Deep work".
func (f FlowState) Label() string {
	s := strings.ReplaceAll(string(f), "_", " ")
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Trait is one of the four behavioral buckets scored from category usage.
type Trait string

const (
	TraitProducer      Trait = "P"
	TraitAdministrator Trait = "A"
	TraitEntrepreneur  Trait = "E"
	TraitIntegrator    Trait = "I"
)

// TraitOrder is the fixed priority used for iteration and tie-breaks.
var TraitOrder = []Trait{TraitProducer, TraitAdministrator, TraitEntrepreneur, TraitIntegrator}

// IsKnownTrait reports whether t is one of the four trait codes.
func IsKnownTrait(t Trait) bool {
	for _, k := range TraitOrder {
		if k == t {
			return true
		}
	}
	return false
}
