package executor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"smart-triage-be/pkg/store"
	"smart-triage-be/pkg/triage/icd"
)

const documentationProducer = "documentation"

// Documentation assembles the SOAP note. It is a pure recombination of
// the three earlier artifacts: no model call, no external service, so it
// can never introduce facts the session did not already contain.
type Documentation struct {
	logger *log.Logger
}

var _ Executor = (*Documentation)(nil)

func NewDocumentation(logger *log.Logger) *Documentation {
	return &Documentation{logger: logger}
}

func (d *Documentation) StageKey() store.StageKey {
	return store.StageDocumentation
}

func (d *Documentation) Execute(ctx context.Context, ec *ExecContext) (*Result, error) {
	symptoms := &store.SymptomsData{}
	triage := &store.TriageResult{}
	action := &store.ActionResult{}
	for _, pair := range []struct {
		key store.StageKey
		out interface{}
	}{
		{store.StageSymptoms, symptoms},
		{store.StageTriage, triage},
		{store.StageAction, action},
	} {
		a := ec.Session.Get(pair.key)
		if a == nil {
			return nil, fmt.Errorf("documentation requires a %s artifact", pair.key)
		}
		if err := a.DecodePayload(pair.out); err != nil {
			return nil, err
		}
	}

	note := buildSOAP(symptoms, triage, action)

	committed, err := ec.Session.Set(store.StageDocumentation, note, documentationProducer)
	if err != nil {
		return nil, err
	}
	d.logger.Printf("[DOCUMENTATION] Session %s SOAP note committed (%d codes)",
		ec.Session.ID, len(note.RecommendedCodes))
	return &Result{
		Kind:     Committed,
		Artifact: committed,
		Reply:    "Catatan medis (SOAP) untuk sesi ini telah dibuat.",
	}, nil
}

func buildSOAP(symptoms *store.SymptomsData, triage *store.TriageResult, action *store.ActionResult) *store.SOAPNote {
	return &store.SOAPNote{
		Subjective: map[string]interface{}{
			"chief_complaint":     strings.Join(symptoms.PrimarySymptoms, ", "),
			"associated_symptoms": symptoms.AssociatedSymptoms,
			"duration":            symptoms.Duration,
			"severity":            symptoms.Severity,
			"medical_history":     symptoms.History,
			"medications":         symptoms.Medications,
			"allergies":           symptoms.Allergies,
		},
		Objective: map[string]interface{}{
			"triage_level":     string(triage.Level),
			"matched_criteria": triage.MatchedCriteria,
		},
		Assessment: map[string]interface{}{
			"justification":  triage.Justification,
			"low_confidence": triage.LowConfidence,
		},
		Plan: map[string]interface{}{
			"recommendation": triage.Recommendation,
			"action_taken":   action.ActionType,
			"action_details": action.Details,
			"degraded":       action.Degraded,
		},
		RecommendedCodes: icd.Recommend(symptoms.PrimarySymptoms),
	}
}
