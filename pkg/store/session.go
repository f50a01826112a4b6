package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStageImmutable is returned when a stage artifact would be
	// overwritten outside the sanctioned symptoms back-edge.
	ErrStageImmutable = errors.New("stage artifact is immutable")

	// ErrStageOutOfOrder is returned when a later stage would be written
	// before all earlier stages exist.
	ErrStageOutOfOrder = errors.New("stage written out of order")
)

// Artifact is the committed output of one stage executor.
type Artifact struct {
	StageKey  StageKey        `json:"stage_key"`
	Payload   json.RawMessage `json:"payload"`
	Producer  string          `json:"producer"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
}

// DecodePayload unmarshals the payload into the given typed struct.
func (a *Artifact) DecodePayload(out interface{}) error {
	if err := json.Unmarshal(a.Payload, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", a.StageKey, err)
	}
	return nil
}

// Session is one patient's triage encounter. Artifacts are written in
// strict stage order and are immutable once committed, with a single
// exception: a triage back-edge may reset the symptoms artifact so the
// interview can gather what was missing.
type Session struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	artifacts map[StageKey]*Artifact

	// symptomsReset is armed by ResetSymptoms and consumed by the next
	// Set(StageSymptoms, ...). It is the only path to an overwrite.
	symptomsReset bool

	// requestedFields remembers which symptom fields a back-edge already
	// asked for, so the patient is never asked for the same field twice.
	requestedFields map[string]bool
}

// NewSession creates an empty session.
func NewSession(id, patientID string) *Session {
	return &Session{
		ID:              id,
		PatientID:       patientID,
		CreatedAt:       time.Now(),
		artifacts:       make(map[StageKey]*Artifact),
		requestedFields: make(map[string]bool),
	}
}

// Clone returns an independent copy. Artifact pointers are shared:
// artifacts are never mutated in place, a re-commit replaces the pointer.
func (s *Session) Clone() *Session {
	c := &Session{
		ID:              s.ID,
		PatientID:       s.PatientID,
		Location:        s.Location,
		CreatedAt:       s.CreatedAt,
		symptomsReset:   s.symptomsReset,
		artifacts:       make(map[StageKey]*Artifact, len(s.artifacts)),
		requestedFields: make(map[string]bool, len(s.requestedFields)),
	}
	for k, a := range s.artifacts {
		c.artifacts[k] = a
	}
	for f, v := range s.requestedFields {
		c.requestedFields[f] = v
	}
	return c
}

// Get returns the committed artifact for the key, or nil.
func (s *Session) Get(key StageKey) *Artifact {
	return s.artifacts[key]
}

// Has reports whether the stage has a committed artifact.
func (s *Session) Has(key StageKey) bool {
	return s.artifacts[key] != nil
}

// Set commits an artifact for the stage. The ordering and immutability
// invariants are enforced here, not by caller discipline.
func (s *Session) Set(key StageKey, payload interface{}, producer string) (*Artifact, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("set artifact: unknown stage key %q", key)
	}

	for _, earlier := range StageOrder[:key.Index()] {
		if !s.Has(earlier) {
			return nil, fmt.Errorf("%w: %s requires %s", ErrStageOutOfOrder, key, earlier)
		}
	}

	version := 1
	if existing := s.artifacts[key]; existing != nil {
		if key != StageSymptoms || !s.symptomsReset {
			return nil, fmt.Errorf("%w: %s already written", ErrStageImmutable, key)
		}
		version = existing.Version + 1
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", key, err)
	}

	artifact := &Artifact{
		StageKey:  key,
		Payload:   raw,
		Producer:  producer,
		Version:   version,
		CreatedAt: time.Now(),
	}
	s.artifacts[key] = artifact
	if key == StageSymptoms {
		s.symptomsReset = false
	}
	return artifact, nil
}

// ResetSymptoms arms the back-edge overwrite. It may only be used while
// triage does not exist yet, and it records the fields being re-requested;
// a field already requested once is rejected so the interview never loops
// on the same question.
func (s *Session) ResetSymptoms(missingFields []string) error {
	if s.Has(StageTriage) {
		return fmt.Errorf("back-edge rejected: triage already committed")
	}
	if !s.Has(StageSymptoms) {
		return fmt.Errorf("back-edge rejected: no symptoms artifact to reset")
	}

	var fresh []string
	for _, f := range missingFields {
		if !s.requestedFields[f] {
			fresh = append(fresh, f)
		}
	}
	if len(fresh) == 0 {
		return fmt.Errorf("back-edge rejected: fields %v were already requested", missingFields)
	}
	for _, f := range fresh {
		s.requestedFields[f] = true
	}
	s.symptomsReset = true
	return nil
}

// ResetArmed reports whether the next symptoms Set is a sanctioned overwrite.
func (s *Session) ResetArmed() bool {
	return s.symptomsReset
}

// FieldRequested reports whether a back-edge already asked for the field.
func (s *Session) FieldRequested(field string) bool {
	return s.requestedFields[field]
}

// Complete reports whether every stage has been committed.
func (s *Session) Complete() bool {
	for _, key := range StageOrder {
		if !s.Has(key) {
			return false
		}
	}
	return true
}

// Artifacts returns committed artifacts in stage order.
func (s *Session) Artifacts() []*Artifact {
	var out []*Artifact
	for _, key := range StageOrder {
		if a := s.artifacts[key]; a != nil {
			out = append(out, a)
		}
	}
	return out
}

// Restore rebuilds in-memory state from persisted artifacts. Used when a
// session is loaded from the database.
func (s *Session) Restore(artifacts []*Artifact, requestedFields []string) {
	if s.artifacts == nil {
		s.artifacts = make(map[StageKey]*Artifact)
	}
	if s.requestedFields == nil {
		s.requestedFields = make(map[string]bool)
	}
	for _, a := range artifacts {
		s.artifacts[a.StageKey] = a
	}
	for _, f := range requestedFields {
		s.requestedFields[f] = true
	}
}

// RequestedFields lists fields asked for via back-edges, for persistence.
func (s *Session) RequestedFields() []string {
	var out []string
	for f := range s.requestedFields {
		out = append(out, f)
	}
	return out
}
