package state

import (
	"io"
	"log"
	"testing"

	"smart-triage-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func testMachine() *Machine {
	return NewMachine(log.New(io.Discard, "", 0))
}

func symptoms() *store.SymptomsData {
	return &store.SymptomsData{
		PrimarySymptoms: []string{"sesak napas"},
		Duration:        "1 jam",
		Severity:        "berat",
	}
}

func TestDecideWalksPipelineOrder(t *testing.T) {
	m := testMachine()
	s := store.NewSession("s1", "p1")

	d := m.Decide(s)
	assert.Equal(t, Invoke, d.Kind)
	assert.Equal(t, store.StageSymptoms, d.Stage)

	s.Set(store.StageSymptoms, symptoms(), "interview")
	assert.Equal(t, store.StageTriage, m.Decide(s).Stage)

	s.Set(store.StageTriage, &store.TriageResult{Level: store.LevelEmergency}, "reasoning")
	assert.Equal(t, store.StageAction, m.Decide(s).Stage)

	s.Set(store.StageAction, &store.ActionResult{}, "execution")
	assert.Equal(t, store.StageDocumentation, m.Decide(s).Stage)

	s.Set(store.StageDocumentation, &store.SOAPNote{}, "documentation")
	assert.Equal(t, NoOp, m.Decide(s).Kind)
}

func TestDecideIsIdempotent(t *testing.T) {
	m := testMachine()
	s := store.NewSession("s1", "p1")
	s.Set(store.StageSymptoms, symptoms(), "interview")

	first := m.Decide(s)
	second := m.Decide(s)
	assert.Equal(t, first, second)
}

func TestDecideRoutesArmedBackEdgeToSymptoms(t *testing.T) {
	m := testMachine()
	s := store.NewSession("s1", "p1")
	s.Set(store.StageSymptoms, &store.SymptomsData{PrimarySymptoms: []string{"batuk"}}, "interview")

	// without the arming, the symptoms artifact exists so triage is next
	assert.Equal(t, store.StageTriage, m.Decide(s).Stage)

	assert.NoError(t, s.ResetSymptoms([]string{"duration"}))
	d := m.Decide(s)
	assert.Equal(t, Invoke, d.Kind)
	assert.Equal(t, store.StageSymptoms, d.Stage)
}

func TestCycleGuardFiresOncePerVersion(t *testing.T) {
	g := NewCycleGuard()

	assert.True(t, g.Admit(store.StageSymptoms, 1))
	assert.False(t, g.Admit(store.StageSymptoms, 1))

	// a back-edge bumps the version, so the interview may fire again
	assert.True(t, g.Admit(store.StageSymptoms, 2))
	assert.False(t, g.Admit(store.StageSymptoms, 2))

	assert.True(t, g.Admit(store.StageTriage, 1))
}

func TestNextVersion(t *testing.T) {
	s := store.NewSession("s1", "p1")
	assert.Equal(t, 1, NextVersion(s, store.StageSymptoms))

	s.Set(store.StageSymptoms, symptoms(), "interview")
	assert.Equal(t, 2, NextVersion(s, store.StageSymptoms))
	assert.Equal(t, 1, NextVersion(s, store.StageTriage))
}
