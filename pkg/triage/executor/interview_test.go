package executor

import (
	"context"
	"testing"

	"smart-triage-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func TestInterviewAsksForPrimarySymptomFirst(t *testing.T) {
	e := NewInterview(&fakeLLM{reply: `{"primary_symptoms":[],"associated_symptoms":[],"duration":"","severity":"","history":[],"medications":[],"allergies":[]}`}, discard())
	s := store.NewSession("s1", "p1")

	result, err := e.Execute(context.Background(), execContext(s, "halo"))
	assert.NoError(t, err)
	assert.Equal(t, InsufficientData, result.Kind)
	assert.Equal(t, []string{"primary_symptoms"}, result.MissingFields)
	assert.NotEmpty(t, result.Reply)
	assert.False(t, s.Has(store.StageSymptoms), "no artifact may be written while stalled")
}

func TestInterviewQuestionSequence(t *testing.T) {
	// one fact arrives per turn; the interview walks the fixed question
	// order and only commits once everything is covered.
	llmReplies := []string{
		`{"primary_symptoms":["demam tinggi"],"duration":"","severity":"","associated_symptoms":[],"history":[],"medications":[],"allergies":[]}`,
		`{"primary_symptoms":[],"duration":"2 hari","severity":"","associated_symptoms":[],"history":[],"medications":[],"allergies":[]}`,
		`{"primary_symptoms":[],"duration":"","severity":"39.5C","associated_symptoms":[],"history":[],"medications":[],"allergies":[]}`,
		`{"primary_symptoms":[],"duration":"","severity":"","associated_symptoms":[],"history":[],"medications":["paracetamol"],"allergies":[]}`,
		`{"primary_symptoms":[],"duration":"","severity":"","associated_symptoms":[],"history":[],"medications":[],"allergies":[]}`,
	}
	wantFields := []string{"duration", "severity", "medications", "history"}

	mock := &fakeLLM{}
	e := NewInterview(mock, discard())
	s := store.NewSession("s1", "p1")
	ec := execContext(s, "saya demam")

	// the accumulated payload survives across turns through re-extraction
	// of the full transcript; the fake simulates that by replaying every
	// fact gathered so far.
	accumulated := &store.SymptomsData{}
	for i, reply := range llmReplies {
		var incoming store.SymptomsData
		assert.NoError(t, decodeJSON(reply, &incoming))
		accumulated.Merge(&incoming)
		mock.reply = encodeJSON(t, accumulated)

		result, err := e.Execute(context.Background(), ec)
		assert.NoError(t, err)

		if i < len(wantFields) {
			assert.Equal(t, InsufficientData, result.Kind, "turn %d", i)
			assert.Equal(t, []string{wantFields[i]}, result.MissingFields, "turn %d", i)
		} else {
			assert.Equal(t, Committed, result.Kind)
			assert.Equal(t, 1, result.Artifact.Version)
		}
	}

	var final store.SymptomsData
	assert.NoError(t, s.Get(store.StageSymptoms).DecodePayload(&final))
	assert.Equal(t, []string{"demam tinggi"}, final.PrimarySymptoms)
	assert.Equal(t, "2 hari", final.Duration)
	assert.Equal(t, []string{"paracetamol"}, final.Medications)
}

func TestInterviewMedicationsCoveredOnceAsked(t *testing.T) {
	// "none" is a valid answer: the asked flags gate completion, not the
	// payload content.
	mock := &fakeLLM{reply: `{"primary_symptoms":["batuk"],"duration":"3 hari","severity":"ringan","associated_symptoms":[],"history":[],"medications":[],"allergies":[]}`}
	e := NewInterview(mock, discard())
	s := store.NewSession("s1", "p1")
	ec := execContext(s, "batuk 3 hari, ringan")
	ec.Questions.AskedMedications = true
	ec.Questions.AskedHistory = true

	result, err := e.Execute(context.Background(), ec)
	assert.NoError(t, err)
	assert.Equal(t, Committed, result.Kind)
}

func TestInterviewParsesFencedJSON(t *testing.T) {
	mock := &fakeLLM{reply: "```json\n{\"primary_symptoms\":[\"demam\"],\"duration\":\"1 hari\",\"severity\":\"38C\",\"associated_symptoms\":[],\"history\":[],\"medications\":[],\"allergies\":[]}\n```"}
	e := NewInterview(mock, discard())
	s := store.NewSession("s1", "p1")
	ec := execContext(s, "demam sejak kemarin")
	ec.Questions.AskedMedications = true
	ec.Questions.AskedHistory = true

	result, err := e.Execute(context.Background(), ec)
	assert.NoError(t, err)
	assert.Equal(t, Committed, result.Kind)
}

func TestInterviewUnparseableOutputKeepsPriorFacts(t *testing.T) {
	mock := &fakeLLM{reply: "maaf, saya tidak mengerti"}
	e := NewInterview(mock, discard())
	s := store.NewSession("s1", "p1")

	result, err := e.Execute(context.Background(), execContext(s, "halo"))
	assert.NoError(t, err)
	assert.Equal(t, InsufficientData, result.Kind)
}

func TestInterviewBackEdgeOverwritesWithPriorFacts(t *testing.T) {
	s := sessionWithSymptoms(t, &store.SymptomsData{PrimarySymptoms: []string{"nyeri dada"}, Severity: "berat"})
	assert.NoError(t, s.ResetSymptoms([]string{"duration"}))

	// the new turn only supplies the missing duration
	mock := &fakeLLM{reply: `{"primary_symptoms":[],"duration":"30 menit","severity":"","associated_symptoms":[],"history":[],"medications":[],"allergies":[]}`}
	e := NewInterview(mock, discard())
	ec := execContext(s, "sudah 30 menit")
	ec.Questions.AskedMedications = true
	ec.Questions.AskedHistory = true

	result, err := e.Execute(context.Background(), ec)
	assert.NoError(t, err)
	assert.Equal(t, Committed, result.Kind)
	assert.Equal(t, 2, result.Artifact.Version)

	var final store.SymptomsData
	assert.NoError(t, result.Artifact.DecodePayload(&final))
	assert.Equal(t, []string{"nyeri dada"}, final.PrimarySymptoms, "prior facts must survive the overwrite")
	assert.Equal(t, "30 menit", final.Duration)
	assert.Equal(t, "berat", final.Severity)
}

func TestInterviewLLMErrorPropagates(t *testing.T) {
	e := NewInterview(&fakeLLM{err: assert.AnError}, discard())
	s := store.NewSession("s1", "p1")

	_, err := e.Execute(context.Background(), execContext(s, "halo"))
	assert.Error(t, err)
}
