package state

import (
	"log"

	"smart-triage-be/pkg/store"
)

// DecisionKind says what the controller wants to happen next.
type DecisionKind int

const (
	// NoOp means the session is terminal; only a completion
	// acknowledgment should be emitted.
	NoOp DecisionKind = iota

	// Invoke means exactly one stage executor should run.
	Invoke
)

// Decision is the controller's verdict for one control cycle.
type Decision struct {
	Kind  DecisionKind
	Stage store.StageKey
}

// Machine is the stage-orchestration state machine. Decide is a pure
// function of the artifacts present, so calling it twice on an unchanged
// session yields the same decision.
type Machine struct {
	logger *log.Logger
}

// NewMachine creates a new stage machine.
func NewMachine(logger *log.Logger) *Machine {
	return &Machine{logger: logger}
}

// Decide inspects the session and picks the next stage to run. The first
// missing stage in pipeline order is the one to invoke; a full session is
// terminal.
func (m *Machine) Decide(session *store.Session) Decision {
	if session.ResetArmed() {
		m.logger.Printf("[STATE] Session %s back-edge armed -> invoke %s", session.ID, store.StageSymptoms)
		return Decision{Kind: Invoke, Stage: store.StageSymptoms}
	}
	for _, key := range store.StageOrder {
		if !session.Has(key) {
			m.logger.Printf("[STATE] Session %s -> invoke %s", session.ID, key)
			return Decision{Kind: Invoke, Stage: key}
		}
	}
	m.logger.Printf("[STATE] Session %s complete -> noop", session.ID)
	return Decision{Kind: NoOp}
}

// CycleGuard enforces the at-most-once-per-artifact-version rule inside a
// single control cycle. A stage transition fires once per (stage, version);
// re-evaluation after a back-edge sees a new symptoms version and may fire
// the interview again, but never twice for the same version.
type CycleGuard struct {
	fired map[store.StageKey]int
}

// NewCycleGuard starts a fresh control cycle.
func NewCycleGuard() *CycleGuard {
	return &CycleGuard{fired: make(map[store.StageKey]int)}
}

// Admit reports whether the stage may fire for the given artifact version,
// and records the firing. The version for a not-yet-written stage is the
// version the commit would create.
func (g *CycleGuard) Admit(key store.StageKey, version int) bool {
	if v, ok := g.fired[key]; ok && v == version {
		return false
	}
	g.fired[key] = version
	return true
}

// NextVersion computes the artifact version an executor commit would
// produce for the stage in its current session state.
func NextVersion(session *store.Session, key store.StageKey) int {
	if a := session.Get(key); a != nil {
		return a.Version + 1
	}
	return 1
}
