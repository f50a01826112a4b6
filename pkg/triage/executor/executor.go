package executor

import (
	"context"
	"fmt"

	"smart-triage-be/pkg/llm"
	"smart-triage-be/pkg/store"
)

// ResultKind classifies what an executor produced.
type ResultKind int

const (
	// Committed means a new artifact was written to the session.
	Committed ResultKind = iota

	// InsufficientData means the stage stalled: required facts are still
	// missing and the patient must be asked. No artifact was written.
	InsufficientData

	// NeedsClarification is the reasoning back-edge: the symptoms artifact
	// was reset and control returns to the interview stage.
	NeedsClarification
)

// Result is the outcome of one executor invocation.
type Result struct {
	Kind          ResultKind
	Artifact      *store.Artifact
	Reply         string
	MissingFields []string
}

// QuestionState is the interview's conversational sub-state. It lives
// outside the artifact so completion detection stays a pure function of the
// accumulated facts.
type QuestionState struct {
	AskedMedications bool `json:"asked_medications"`
	AskedHistory     bool `json:"asked_history"`
}

// ExecContext carries everything a stage executor may need for one cycle.
type ExecContext struct {
	Session    *store.Session
	Turn       string
	Transcript []llm.Message
	Questions  *QuestionState
}

// Executor is the common stage contract. Execute either commits exactly one
// artifact, stalls on missing data, or triggers the sanctioned back-edge.
type Executor interface {
	StageKey() store.StageKey
	Execute(ctx context.Context, ec *ExecContext) (*Result, error)
}

// Registry is the dispatch table mapping stage keys to executors.
type Registry struct {
	executors map[store.StageKey]Executor
}

func NewRegistry(executors ...Executor) *Registry {
	r := &Registry{executors: make(map[store.StageKey]Executor, len(executors))}
	for _, e := range executors {
		r.executors[e.StageKey()] = e
	}
	return r
}

// Lookup returns the executor for a stage key.
func (r *Registry) Lookup(key store.StageKey) (Executor, error) {
	e, ok := r.executors[key]
	if !ok {
		return nil, fmt.Errorf("no executor registered for stage %s", key)
	}
	return e, nil
}
