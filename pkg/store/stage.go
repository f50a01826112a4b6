package store

import "fmt"

// StageKey identifies a pipeline milestone. The keys form a strict total
// order: Symptoms < Triage < Action < Documentation.
type StageKey string

const (
	StageSymptoms      StageKey = "symptoms"
	StageTriage        StageKey = "triage"
	StageAction        StageKey = "action"
	StageDocumentation StageKey = "documentation"
)

// StageOrder lists all stage keys in pipeline order.
var StageOrder = []StageKey{StageSymptoms, StageTriage, StageAction, StageDocumentation}

// Index returns the position of the key in the pipeline, or -1 for an
// unknown key.
func (k StageKey) Index() int {
	for i, s := range StageOrder {
		if s == k {
			return i
		}
	}
	return -1
}

func (k StageKey) Valid() bool {
	return k.Index() >= 0
}

func (k StageKey) String() string {
	return string(k)
}

// ParseStageKey converts a raw string into a StageKey.
func ParseStageKey(s string) (StageKey, error) {
	k := StageKey(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown stage key: %q", s)
	}
	return k, nil
}
