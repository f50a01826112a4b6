package memory

import (
	"time"

	"smart-triage-be/pkg/triage/executor"

	"github.com/patrickmn/go-cache"
)

// QuestionStateRepository holds the interview's questions-asked sub-state.
// It is conversational scaffolding, not clinical record, so it lives in an
// expiring cache rather than the database.
type QuestionStateRepository struct {
	cache *cache.Cache
}

func NewQuestionStateRepository() *QuestionStateRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &QuestionStateRepository{
		cache: c,
	}
}

func (r *QuestionStateRepository) Get(sessionID string) *executor.QuestionState {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*executor.QuestionState)
	}
	state := &executor.QuestionState{}
	r.cache.Set(sessionID, state, cache.DefaultExpiration)
	return state
}

func (r *QuestionStateRepository) Save(sessionID string, state *executor.QuestionState) {
	r.cache.Set(sessionID, state, cache.DefaultExpiration)
}

func (r *QuestionStateRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
