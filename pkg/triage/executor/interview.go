package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"smart-triage-be/pkg/llm"
	"smart-triage-be/pkg/store"
)

const interviewProducer = "interview"

const extractPrompt = `You are a medical information extraction assistant.
Analyze the conversation transcript below and extract the patient's
symptoms into JSON. Keep the patient's own wording for symptom names.

Transcript:
%s

Output strictly this JSON shape, with empty arrays/strings for anything
not mentioned, and no text outside the JSON:
{"primary_symptoms":[],"associated_symptoms":[],"duration":"","severity":"","history":[],"medications":[],"allergies":[]}`

// Interview accumulates conversational facts into the symptoms payload.
// It finalizes only when the primary symptom, duration and severity are all
// non-empty and medications and history have each been asked about at
// least once; until then it stalls with the next clarifying question.
type Interview struct {
	llm    llm.LLMProvider
	logger *log.Logger
}

var _ Executor = (*Interview)(nil)

func NewInterview(provider llm.LLMProvider, logger *log.Logger) *Interview {
	return &Interview{llm: provider, logger: logger}
}

func (e *Interview) StageKey() store.StageKey {
	return store.StageSymptoms
}

func (e *Interview) Execute(ctx context.Context, ec *ExecContext) (*Result, error) {
	accumulated := e.priorSymptoms(ec.Session)

	extracted, err := e.extract(ctx, ec)
	if err != nil {
		return nil, fmt.Errorf("symptom extraction: %w", err)
	}
	accumulated.Merge(extracted)

	if question, field := e.nextQuestion(accumulated, ec); question != "" {
		e.logger.Printf("[INTERVIEW] Session %s stalls, asking about %s", ec.Session.ID, field)
		return &Result{
			Kind:          InsufficientData,
			Reply:         question,
			MissingFields: []string{field},
		}, nil
	}

	artifact, err := ec.Session.Set(store.StageSymptoms, accumulated, interviewProducer)
	if err != nil {
		return nil, err
	}
	e.logger.Printf("[INTERVIEW] Session %s symptoms committed (v%d, %d primary)",
		ec.Session.ID, artifact.Version, len(accumulated.PrimarySymptoms))
	return &Result{
		Kind:     Committed,
		Artifact: artifact,
		Reply:    "Terima kasih, data gejala Anda sudah lengkap. Saya lanjutkan ke analisis triase.",
	}, nil
}

// priorSymptoms loads the accumulated data when a back-edge armed an
// overwrite; otherwise the interview starts from scratch.
func (e *Interview) priorSymptoms(session *store.Session) *store.SymptomsData {
	data := &store.SymptomsData{}
	if session.ResetArmed() {
		if a := session.Get(store.StageSymptoms); a != nil {
			if err := a.DecodePayload(data); err != nil {
				e.logger.Printf("[INTERVIEW] Prior symptoms unreadable, restarting: %v", err)
				return &store.SymptomsData{}
			}
		}
	}
	return data
}

func (e *Interview) extract(ctx context.Context, ec *ExecContext) (*store.SymptomsData, error) {
	transcript := renderTranscript(ec.Transcript, ec.Turn)
	if strings.TrimSpace(transcript) == "" {
		return &store.SymptomsData{}, nil
	}

	raw, err := e.llm.Generate(ctx, fmt.Sprintf(extractPrompt, transcript),
		llm.WithTemperature(0.1))
	if err != nil {
		return nil, err
	}

	data := &store.SymptomsData{}
	if err := json.Unmarshal([]byte(raw), data); err != nil {
		// the model sometimes wraps the JSON in markdown fences
		if m := jsonObjectPattern.FindString(raw); m != "" {
			if err2 := json.Unmarshal([]byte(m), data); err2 == nil {
				return data, nil
			}
		}
		e.logger.Printf("[INTERVIEW] Extraction output unparseable, keeping prior facts: %v", err)
		return &store.SymptomsData{}, nil
	}
	return data, nil
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// nextQuestion picks the question for the first outstanding requirement.
// The questions-asked sub-state is separate from the artifact: medications
// and history count as covered once asked, even when the answer is "none".
func (e *Interview) nextQuestion(data *store.SymptomsData, ec *ExecContext) (question, field string) {
	switch {
	case len(data.PrimarySymptoms) == 0:
		return "Apa keluhan utama yang Anda rasakan saat ini?", "primary_symptoms"
	case data.Duration == "":
		return "Sudah berapa lama keluhan ini berlangsung?", "duration"
	case data.Severity == "":
		return "Seberapa parah keluhan Anda? Misalnya skala 1-10 atau suhu demam.", "severity"
	case !ec.Questions.AskedMedications:
		ec.Questions.AskedMedications = true
		return "Apakah Anda sedang mengonsumsi obat-obatan tertentu?", "medications"
	case !ec.Questions.AskedHistory:
		ec.Questions.AskedHistory = true
		return "Apakah Anda punya riwayat penyakit sebelumnya?", "history"
	}
	return "", ""
}

func renderTranscript(history []llm.Message, turn string) string {
	var b strings.Builder
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	if turn != "" {
		fmt.Fprintf(&b, "user: %s\n", turn)
	}
	return b.String()
}
