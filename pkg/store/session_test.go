package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func completeSymptoms() *SymptomsData {
	return &SymptomsData{
		PrimarySymptoms: []string{"demam tinggi"},
		Duration:        "2 hari",
		Severity:        "39.5C",
	}
}

func TestSetEnforcesStageOrder(t *testing.T) {
	s := NewSession("s1", "p1")

	_, err := s.Set(StageTriage, &TriageResult{Level: LevelUrgent}, "reasoning")
	assert.ErrorIs(t, err, ErrStageOutOfOrder)

	_, err = s.Set(StageDocumentation, &SOAPNote{}, "documentation")
	assert.ErrorIs(t, err, ErrStageOutOfOrder)

	a, err := s.Set(StageSymptoms, completeSymptoms(), "interview")
	assert.NoError(t, err)
	assert.Equal(t, 1, a.Version)

	_, err = s.Set(StageAction, &ActionResult{}, "execution")
	assert.ErrorIs(t, err, ErrStageOutOfOrder)

	_, err = s.Set(StageTriage, &TriageResult{Level: LevelUrgent}, "reasoning")
	assert.NoError(t, err)
}

func TestSetRejectsOverwrite(t *testing.T) {
	s := NewSession("s1", "p1")

	_, err := s.Set(StageSymptoms, completeSymptoms(), "interview")
	assert.NoError(t, err)

	_, err = s.Set(StageSymptoms, completeSymptoms(), "interview")
	assert.ErrorIs(t, err, ErrStageImmutable)
}

func TestSetRejectsUnknownStage(t *testing.T) {
	s := NewSession("s1", "p1")
	_, err := s.Set(StageKey("bogus"), nil, "x")
	assert.Error(t, err)
}

func TestResetSymptomsBackEdge(t *testing.T) {
	s := NewSession("s1", "p1")

	// no symptoms yet: nothing to reset
	assert.Error(t, s.ResetSymptoms([]string{"duration"}))

	_, err := s.Set(StageSymptoms, &SymptomsData{PrimarySymptoms: []string{"batuk"}}, "interview")
	assert.NoError(t, err)

	assert.NoError(t, s.ResetSymptoms([]string{"duration", "severity"}))
	assert.True(t, s.ResetArmed())
	assert.True(t, s.FieldRequested("duration"))
	assert.True(t, s.FieldRequested("severity"))

	a, err := s.Set(StageSymptoms, completeSymptoms(), "interview")
	assert.NoError(t, err)
	assert.Equal(t, 2, a.Version)
	assert.False(t, s.ResetArmed(), "commit must consume the arming")

	// the overwrite window is closed again
	_, err = s.Set(StageSymptoms, completeSymptoms(), "interview")
	assert.ErrorIs(t, err, ErrStageImmutable)
}

func TestResetSymptomsNeverReasksField(t *testing.T) {
	s := NewSession("s1", "p1")
	_, err := s.Set(StageSymptoms, &SymptomsData{PrimarySymptoms: []string{"batuk"}}, "interview")
	assert.NoError(t, err)

	assert.NoError(t, s.ResetSymptoms([]string{"duration"}))
	_, err = s.Set(StageSymptoms, &SymptomsData{PrimarySymptoms: []string{"batuk"}}, "interview")
	assert.NoError(t, err)

	// the same field cannot be requested twice
	assert.Error(t, s.ResetSymptoms([]string{"duration"}))
	assert.False(t, s.ResetArmed())

	// a mix with one fresh field still arms
	assert.NoError(t, s.ResetSymptoms([]string{"duration", "severity"}))
	assert.True(t, s.ResetArmed())
}

func TestResetSymptomsRejectedAfterTriage(t *testing.T) {
	s := NewSession("s1", "p1")
	_, err := s.Set(StageSymptoms, completeSymptoms(), "interview")
	assert.NoError(t, err)
	_, err = s.Set(StageTriage, &TriageResult{Level: LevelUrgent}, "reasoning")
	assert.NoError(t, err)

	assert.Error(t, s.ResetSymptoms([]string{"severity"}))
}

func TestCompleteAndArtifactsOrder(t *testing.T) {
	s := NewSession("s1", "p1")
	assert.False(t, s.Complete())

	s.Set(StageSymptoms, completeSymptoms(), "interview")
	s.Set(StageTriage, &TriageResult{Level: LevelNonUrgent}, "reasoning")
	s.Set(StageAction, &ActionResult{ActionType: "self_care"}, "execution")
	assert.False(t, s.Complete())

	s.Set(StageDocumentation, &SOAPNote{}, "documentation")
	assert.True(t, s.Complete())

	keys := []StageKey{}
	for _, a := range s.Artifacts() {
		keys = append(keys, a.StageKey)
	}
	assert.Equal(t, StageOrder, keys)
}

func TestRestoreRoundTrip(t *testing.T) {
	s := NewSession("s1", "p1")
	s.Set(StageSymptoms, &SymptomsData{PrimarySymptoms: []string{"batuk"}}, "interview")
	assert.NoError(t, s.ResetSymptoms([]string{"duration"}))
	s.Set(StageSymptoms, completeSymptoms(), "interview")

	restored := NewSession("s1", "p1")
	restored.Restore(s.Artifacts(), s.RequestedFields())

	assert.True(t, restored.Has(StageSymptoms))
	assert.Equal(t, 2, restored.Get(StageSymptoms).Version)
	assert.True(t, restored.FieldRequested("duration"))

	// restored sessions honor the same invariants
	_, err := restored.Set(StageSymptoms, completeSymptoms(), "interview")
	assert.ErrorIs(t, err, ErrStageImmutable)
	assert.Error(t, restored.ResetSymptoms([]string{"duration"}))
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewSession("s1", "p1")
	s.Location = "Surabaya"
	s.Set(StageSymptoms, &SymptomsData{PrimarySymptoms: []string{"batuk"}}, "interview")
	assert.NoError(t, s.ResetSymptoms([]string{"duration"}))

	c := s.Clone()
	assert.Equal(t, "Surabaya", c.Location)
	assert.True(t, c.Has(StageSymptoms))
	assert.True(t, c.ResetArmed())
	assert.True(t, c.FieldRequested("duration"))

	// writes on the clone never reach the original
	c.Set(StageSymptoms, completeSymptoms(), "interview")
	assert.NoError(t, c.ResetSymptoms([]string{"severity"}))
	c.Set(StageSymptoms, completeSymptoms(), "interview")
	c.Set(StageTriage, &TriageResult{Level: LevelUrgent}, "reasoning")

	assert.Equal(t, 1, s.Get(StageSymptoms).Version)
	assert.False(t, s.Has(StageTriage))
	assert.True(t, s.ResetArmed(), "the original keeps its armed back-edge")
	assert.False(t, s.FieldRequested("severity"))
}

func TestDecodePayload(t *testing.T) {
	s := NewSession("s1", "p1")
	a, err := s.Set(StageSymptoms, completeSymptoms(), "interview")
	assert.NoError(t, err)

	var out SymptomsData
	assert.NoError(t, a.DecodePayload(&out))
	assert.Equal(t, []string{"demam tinggi"}, out.PrimarySymptoms)
	assert.Equal(t, "2 hari", out.Duration)
}
