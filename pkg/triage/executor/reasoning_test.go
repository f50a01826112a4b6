package executor

import (
	"context"
	"testing"

	"smart-triage-be/pkg/knowledge"
	"smart-triage-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func completeSymptoms() *store.SymptomsData {
	return &store.SymptomsData{
		PrimarySymptoms: []string{"demam tinggi"},
		Duration:        "2 hari",
		Severity:        "39.5C",
	}
}

func TestReasoningRequestsMissingFields(t *testing.T) {
	e := NewReasoning(&fakeLLM{}, &fakeRetriever{}, discard())
	s := sessionWithSymptoms(t, &store.SymptomsData{PrimarySymptoms: []string{"demam"}})

	result, err := e.Execute(context.Background(), execContext(s, ""))
	assert.NoError(t, err)
	assert.Equal(t, NeedsClarification, result.Kind)
	assert.Equal(t, []string{"duration", "severity"}, result.MissingFields)
	assert.False(t, s.Has(store.StageTriage))
}

func TestReasoningClassifiesAnywayAfterReask(t *testing.T) {
	// every missing field was already requested once; asking again would
	// loop on the patient, so the stage classifies with what it has.
	e := NewReasoning(
		&fakeLLM{reply: `{"candidate_levels":["Urgent"],"justification":"demam tinggi","matched_criteria":[],"recommendation":"periksa dalam 24 jam"}`},
		&fakeRetriever{},
		discard(),
	)
	s := sessionWithSymptoms(t, &store.SymptomsData{PrimarySymptoms: []string{"demam"}})
	assert.NoError(t, s.ResetSymptoms([]string{"duration", "severity"}))
	_, err := s.Set(store.StageSymptoms, &store.SymptomsData{PrimarySymptoms: []string{"demam"}}, interviewProducer)
	assert.NoError(t, err)

	result, err := e.Execute(context.Background(), execContext(s, ""))
	assert.NoError(t, err)
	assert.Equal(t, Committed, result.Kind)

	var triage store.TriageResult
	assert.NoError(t, result.Artifact.DecodePayload(&triage))
	assert.Equal(t, store.LevelUrgent, triage.Level)
}

func TestReasoningTieBreaksToMostSevere(t *testing.T) {
	e := NewReasoning(
		&fakeLLM{reply: `{"candidate_levels":["Non-Urgent","Urgent"],"justification":"gejala ambigu","matched_criteria":[],"recommendation":"periksa segera"}`},
		&fakeRetriever{},
		discard(),
	)
	s := sessionWithSymptoms(t, completeSymptoms())

	result, err := e.Execute(context.Background(), execContext(s, ""))
	assert.NoError(t, err)

	var triage store.TriageResult
	assert.NoError(t, result.Artifact.DecodePayload(&triage))
	assert.Equal(t, store.LevelUrgent, triage.Level)
	assert.False(t, triage.LowConfidence)
}

func TestReasoningRaisedByMatchedCriteria(t *testing.T) {
	// a criterion whose own text reads "gawat darurat" cannot yield a
	// classification below Emergency
	e := NewReasoning(
		&fakeLLM{reply: `{"candidate_levels":["Urgent"],"justification":"nyeri dada","matched_criteria":["Nyeri dada dengan sesak termasuk kondisi gawat darurat"],"recommendation":"segera ke IGD"}`},
		&fakeRetriever{},
		discard(),
	)
	s := sessionWithSymptoms(t, completeSymptoms())

	result, err := e.Execute(context.Background(), execContext(s, ""))
	assert.NoError(t, err)

	var triage store.TriageResult
	assert.NoError(t, result.Artifact.DecodePayload(&triage))
	assert.Equal(t, store.LevelEmergency, triage.Level)
}

func TestReasoningFallsBackOnModelFailure(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
	}{
		{"call error", &fakeLLM{err: assert.AnError}},
		{"unparseable output", &fakeLLM{reply: "tidak bisa menilai"}},
		{"no valid candidates", &fakeLLM{reply: `{"candidate_levels":["Sedang"],"justification":"","matched_criteria":[],"recommendation":""}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewReasoning(tt.llm, &fakeRetriever{}, discard())
			s := sessionWithSymptoms(t, completeSymptoms())

			result, err := e.Execute(context.Background(), execContext(s, ""))
			assert.NoError(t, err, "classification never fails the session")
			assert.Equal(t, Committed, result.Kind)

			var triage store.TriageResult
			assert.NoError(t, result.Artifact.DecodePayload(&triage))
			assert.Equal(t, store.LevelUrgent, triage.Level)
			assert.True(t, triage.LowConfidence, "fallback must be flagged for human review")
		})
	}
}

func TestReasoningToleratesRetrievalFailure(t *testing.T) {
	e := NewReasoning(
		&fakeLLM{reply: `{"candidate_levels":["Non-Urgent"],"justification":"gejala ringan","matched_criteria":[],"recommendation":"rawat mandiri"}`},
		&fakeRetriever{err: knowledge.ErrNoEmbedding},
		discard(),
	)
	s := sessionWithSymptoms(t, completeSymptoms())

	result, err := e.Execute(context.Background(), execContext(s, ""))
	assert.NoError(t, err)
	assert.Equal(t, Committed, result.Kind)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, store.LevelEmergency, parseLevel("Emergency"))
	assert.Equal(t, store.LevelEmergency, parseLevel(" gawat darurat "))
	assert.Equal(t, store.LevelUrgent, parseLevel("URGENT"))
	assert.Equal(t, store.LevelNonUrgent, parseLevel("non urgent"))
	assert.Equal(t, store.TriageLevel(""), parseLevel("sedang"))
}

func TestRaiseByCriteriaIsMonotone(t *testing.T) {
	// raising never lowers
	level := raiseByCriteria(store.LevelEmergency, []string{"kondisi yang perlu penanganan segera"})
	assert.Equal(t, store.LevelEmergency, level)

	level = raiseByCriteria(store.LevelNonUrgent, []string{"perlu penanganan segera"})
	assert.Equal(t, store.LevelUrgent, level)

	level = raiseByCriteria(store.LevelNonUrgent, []string{"keluhan ringan"})
	assert.Equal(t, store.LevelNonUrgent, level)
}
