package executor

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"

	"smart-triage-be/pkg/knowledge"
	"smart-triage-be/pkg/llm"
	"smart-triage-be/pkg/store"
	"smart-triage-be/pkg/triage/actions"

	"github.com/stretchr/testify/assert"
)

// fakeLLM answers every call with a canned string.
type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.calls++
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeRetriever struct {
	result *knowledge.QueryResult
	err    error
}

func (f *fakeRetriever) Query(ctx context.Context, text string, collections []string, topK int) (*knowledge.QueryResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &knowledge.QueryResult{}, nil
}

type fakeActions struct {
	dispatchErr error
	bookErr     error
	selfCareErr error
}

func (f *fakeActions) DispatchEmergency(ctx context.Context, location string, symptoms []string) (*actions.DispatchResult, error) {
	if f.dispatchErr != nil {
		return nil, f.dispatchErr
	}
	return &actions.DispatchResult{
		Dispatched:       true,
		AmbulanceID:      "AMB-0001",
		EstimatedArrival: "14:30",
		Facility:         "RSUD Dr. Soetomo",
	}, nil
}

func (f *fakeActions) ScheduleVisit(ctx context.Context, patientID string, symptoms []string, location string) (*actions.BookingResult, error) {
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	return &actions.BookingResult{
		BookingID:       "JKN-000123",
		Facility:        "Puskesmas Sukolilo",
		AppointmentTime: "2026-03-01 10:00",
		QueueNumber:     "A-12",
	}, nil
}

func (f *fakeActions) SelfCareGuide(ctx context.Context, symptoms []string) (*actions.SelfCareResult, error) {
	if f.selfCareErr != nil {
		return nil, f.selfCareErr
	}
	return &actions.SelfCareResult{
		Recommendations: []string{"Istirahat yang cukup"},
		WhenToSeekHelp:  "Hubungi dokter bila memburuk.",
	}, nil
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func decodeJSON(raw string, out interface{}) error {
	return json.Unmarshal([]byte(raw), out)
}

func encodeJSON(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	assert.NoError(t, err)
	return string(raw)
}

func execContext(session *store.Session, turn string) *ExecContext {
	return &ExecContext{
		Session:   session,
		Turn:      turn,
		Questions: &QuestionState{},
	}
}

func sessionWithSymptoms(t *testing.T, data *store.SymptomsData) *store.Session {
	t.Helper()
	s := store.NewSession("s1", "p1")
	_, err := s.Set(store.StageSymptoms, data, interviewProducer)
	assert.NoError(t, err)
	return s
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(NewDocumentation(discard()))

	e, err := r.Lookup(store.StageDocumentation)
	assert.NoError(t, err)
	assert.Equal(t, store.StageDocumentation, e.StageKey())

	_, err = r.Lookup(store.StageTriage)
	assert.Error(t, err)
}
