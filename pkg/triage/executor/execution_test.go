package executor

import (
	"context"
	"testing"

	"smart-triage-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func sessionWithTriage(t *testing.T, level store.TriageLevel) *store.Session {
	t.Helper()
	s := sessionWithSymptoms(t, completeSymptoms())
	_, err := s.Set(store.StageTriage, &store.TriageResult{Level: level, Recommendation: "r"}, reasoningProducer)
	assert.NoError(t, err)
	return s
}

func TestExecutionSelectsActionByLevel(t *testing.T) {
	tests := []struct {
		level      store.TriageLevel
		actionType string
	}{
		{store.LevelEmergency, ActionDispatch},
		{store.LevelUrgent, ActionBooking},
		{store.LevelNonUrgent, ActionSelfCare},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			e := NewExecution(&fakeActions{}, discard())
			s := sessionWithTriage(t, tt.level)

			result, err := e.Execute(context.Background(), execContext(s, ""))
			assert.NoError(t, err)
			assert.Equal(t, Committed, result.Kind)
			assert.NotEmpty(t, result.Reply)

			var action store.ActionResult
			assert.NoError(t, result.Artifact.DecodePayload(&action))
			assert.Equal(t, tt.actionType, action.ActionType)
			assert.False(t, action.Degraded)
			assert.NotEmpty(t, action.Details)
		})
	}
}

func TestExecutionDegradesWhenServiceFails(t *testing.T) {
	tests := []struct {
		name     string
		level    store.TriageLevel
		services *fakeActions
		want     string
	}{
		{"dispatch down", store.LevelEmergency, &fakeActions{dispatchErr: assert.AnError}, ActionDispatch},
		{"booking down", store.LevelUrgent, &fakeActions{bookErr: assert.AnError}, ActionBooking},
		{"guide down", store.LevelNonUrgent, &fakeActions{selfCareErr: assert.AnError}, ActionSelfCare},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecution(tt.services, discard())
			s := sessionWithTriage(t, tt.level)

			result, err := e.Execute(context.Background(), execContext(s, ""))
			assert.NoError(t, err, "a failing service must not block the session")
			assert.Equal(t, Committed, result.Kind)

			var action store.ActionResult
			assert.NoError(t, result.Artifact.DecodePayload(&action))
			assert.Equal(t, tt.want, action.ActionType)
			assert.True(t, action.Degraded)
			assert.NotEmpty(t, action.Message, "degraded actions still carry written instructions")
		})
	}
}

func TestExecutionRequiresTriageArtifact(t *testing.T) {
	e := NewExecution(&fakeActions{}, discard())
	s := sessionWithSymptoms(t, completeSymptoms())

	_, err := e.Execute(context.Background(), execContext(s, ""))
	assert.Error(t, err)
}
