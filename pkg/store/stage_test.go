package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageKeyIndex(t *testing.T) {
	assert.Equal(t, 0, StageSymptoms.Index())
	assert.Equal(t, 1, StageTriage.Index())
	assert.Equal(t, 2, StageAction.Index())
	assert.Equal(t, 3, StageDocumentation.Index())
	assert.Equal(t, -1, StageKey("bogus").Index())
}

func TestParseStageKey(t *testing.T) {
	k, err := ParseStageKey("triage")
	assert.NoError(t, err)
	assert.Equal(t, StageTriage, k)

	_, err = ParseStageKey("Triage")
	assert.Error(t, err)
}
