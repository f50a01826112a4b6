package icd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommendMatchesPatientWording(t *testing.T) {
	codes := Recommend([]string{"demam tinggi sejak kemarin", "batuk kering"})

	got := map[string]bool{}
	for _, c := range codes {
		got[c.Code] = true
	}
	assert.True(t, got["R50.9"])
	assert.True(t, got["R05"])
}

func TestRecommendDeduplicates(t *testing.T) {
	codes := Recommend([]string{"demam", "panas tinggi"})
	assert.Len(t, codes, 1)
	assert.Equal(t, "R50.9", codes[0].Code)
}

func TestRecommendNoMatch(t *testing.T) {
	assert.Empty(t, Recommend([]string{"kulit gatal"}))
	assert.Empty(t, Recommend(nil))
}
