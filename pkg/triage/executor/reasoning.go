package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"smart-triage-be/pkg/knowledge"
	"smart-triage-be/pkg/llm"
	"smart-triage-be/pkg/store"
)

const reasoningProducer = "reasoning"

const classifyPrompt = `You are a medical triage classifier. Using ONLY the
reference material below, classify the patient's urgency.

Patient data:
%s

Reference material:
%s

Rules:
- List every level the evidence could support in "candidate_levels".
  Valid levels: "Emergency", "Urgent", "Non-Urgent".
- "matched_criteria" must quote the criteria sentences you relied on.
- Answer in Indonesian in "justification" and "recommendation".

Output strictly this JSON, no text outside it:
{"candidate_levels":[],"justification":"","matched_criteria":[],"recommendation":""}`

// criterionLevelHints maps criteria phrasing to the urgency the source
// material assigns to it. A matched criterion never classifies below the
// level its own text implies.
var criterionLevelHints = []struct {
	keyword string
	level   store.TriageLevel
}{
	{"gawat darurat", store.LevelEmergency},
	{"mengancam nyawa", store.LevelEmergency},
	{"emergency", store.LevelEmergency},
	{"segera", store.LevelUrgent},
	{"mendesak", store.LevelUrgent},
	{"urgent", store.LevelUrgent},
}

// Reasoning validates the symptoms artifact, retrieves triage criteria and
// classifies urgency. When required fields are missing it surfaces them so
// the session can take the back-edge instead of guessing.
type Reasoning struct {
	llm       llm.LLMProvider
	retriever knowledge.Retriever
	logger    *log.Logger
}

var _ Executor = (*Reasoning)(nil)

func NewReasoning(provider llm.LLMProvider, retriever knowledge.Retriever, logger *log.Logger) *Reasoning {
	return &Reasoning{llm: provider, retriever: retriever, logger: logger}
}

func (e *Reasoning) StageKey() store.StageKey {
	return store.StageTriage
}

func (e *Reasoning) Execute(ctx context.Context, ec *ExecContext) (*Result, error) {
	symptoms := &store.SymptomsData{}
	artifact := ec.Session.Get(store.StageSymptoms)
	if artifact == nil {
		return nil, fmt.Errorf("reasoning requires a symptoms artifact")
	}
	if err := artifact.DecodePayload(symptoms); err != nil {
		return nil, err
	}

	if missing := symptoms.MissingFields(); len(missing) > 0 {
		var fresh []string
		for _, f := range missing {
			if !ec.Session.FieldRequested(f) {
				fresh = append(fresh, f)
			}
		}
		if len(fresh) > 0 {
			e.logger.Printf("[REASONING] Session %s symptoms incomplete, missing %v", ec.Session.ID, fresh)
			return &Result{Kind: NeedsClarification, MissingFields: fresh}, nil
		}
		// every missing field was already re-asked once; classify with
		// what is available instead of looping on the patient
		e.logger.Printf("[REASONING] Session %s still missing %v after re-ask, classifying anyway", ec.Session.ID, missing)
	}

	passages := e.retrieve(ctx, symptoms)
	result := e.classify(ctx, symptoms, passages)

	committed, err := ec.Session.Set(store.StageTriage, result, reasoningProducer)
	if err != nil {
		return nil, err
	}
	e.logger.Printf("[REASONING] Session %s classified %s (low_confidence=%v)",
		ec.Session.ID, result.Level, result.LowConfidence)
	return &Result{
		Kind:     Committed,
		Artifact: committed,
		Reply:    fmt.Sprintf("Hasil triase: %s. %s", result.Level, result.Recommendation),
	}, nil
}

func (e *Reasoning) retrieve(ctx context.Context, symptoms *store.SymptomsData) string {
	query := fmt.Sprintf("Kriteria triase untuk pasien dengan keluhan %s, durasi %s, tingkat keparahan %s",
		strings.Join(symptoms.PrimarySymptoms, ", "), symptoms.Duration, symptoms.Severity)

	result, err := e.retriever.Query(ctx, query, nil, knowledge.DefaultTopK)
	if err != nil {
		e.logger.Printf("[REASONING] Retrieval unavailable, classifying without references: %v", err)
		return "(referensi tidak tersedia)"
	}
	if len(result.Skipped) > 0 {
		e.logger.Printf("[REASONING] Retrieval skipped collections: %v", result.Skipped)
	}
	return result.Formatted()
}

type classification struct {
	CandidateLevels []string `json:"candidate_levels"`
	Justification   string   `json:"justification"`
	MatchedCriteria []string `json:"matched_criteria"`
	Recommendation  string   `json:"recommendation"`
}

// classify never fails: any unparseable or empty model output degrades to
// an Urgent result flagged low-confidence, so the patient is routed to a
// human rather than dropped.
func (e *Reasoning) classify(ctx context.Context, symptoms *store.SymptomsData, references string) *store.TriageResult {
	patientJSON, _ := json.MarshalIndent(symptoms, "", "  ")
	raw, err := e.llm.Generate(ctx, fmt.Sprintf(classifyPrompt, patientJSON, references),
		llm.WithTemperature(0.2))
	if err != nil {
		e.logger.Printf("[REASONING] Classification call failed: %v", err)
		return fallbackTriage("Klasifikasi otomatis gagal, dialihkan ke petugas triase.")
	}

	var parsed classification
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		if m := jsonObjectPattern.FindString(raw); m != "" {
			err = json.Unmarshal([]byte(m), &parsed)
		}
		if err != nil {
			e.logger.Printf("[REASONING] Classification output unparseable: %v", err)
			return fallbackTriage("Hasil klasifikasi tidak dapat dibaca, dialihkan ke petugas triase.")
		}
	}

	level := resolveLevel(parsed.CandidateLevels)
	if !level.Valid() {
		e.logger.Printf("[REASONING] No valid candidate levels in %v", parsed.CandidateLevels)
		return fallbackTriage("Tingkat urgensi tidak dapat ditentukan, dialihkan ke petugas triase.")
	}
	level = raiseByCriteria(level, parsed.MatchedCriteria)

	return &store.TriageResult{
		Level:           level,
		Justification:   parsed.Justification,
		MatchedCriteria: parsed.MatchedCriteria,
		Recommendation:  parsed.Recommendation,
	}
}

// resolveLevel applies the tie-break: when the evidence supports more than
// one level, the most severe candidate wins.
func resolveLevel(candidates []string) store.TriageLevel {
	var resolved store.TriageLevel
	for _, c := range candidates {
		level := parseLevel(c)
		if level.Valid() {
			resolved = store.HigherOf(resolved, level)
		}
	}
	return resolved
}

// raiseByCriteria keeps the classification monotone with the matched
// criteria: a criterion whose text implies a higher level raises the result.
func raiseByCriteria(level store.TriageLevel, criteria []string) store.TriageLevel {
	for _, c := range criteria {
		lower := strings.ToLower(c)
		for _, hint := range criterionLevelHints {
			if strings.Contains(lower, hint.keyword) {
				level = store.HigherOf(level, hint.level)
			}
		}
	}
	return level
}

func parseLevel(s string) store.TriageLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "emergency", "gawat darurat", "darurat":
		return store.LevelEmergency
	case "urgent", "mendesak":
		return store.LevelUrgent
	case "non-urgent", "non urgent", "tidak mendesak":
		return store.LevelNonUrgent
	}
	return ""
}

func fallbackTriage(reason string) *store.TriageResult {
	return &store.TriageResult{
		Level:          store.LevelUrgent,
		Justification:  reason,
		Recommendation: "Mohon segera hubungi fasilitas kesehatan terdekat untuk penilaian langsung.",
		LowConfidence:  true,
	}
}
