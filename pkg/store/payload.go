package store

// TriageLevel is the clinical urgency classification.
type TriageLevel string

const (
	LevelEmergency TriageLevel = "Emergency"
	LevelUrgent    TriageLevel = "Urgent"
	LevelNonUrgent TriageLevel = "Non-Urgent"
)

// Severity returns a comparable rank. Higher means more urgent.
func (l TriageLevel) Severity() int {
	switch l {
	case LevelEmergency:
		return 3
	case LevelUrgent:
		return 2
	case LevelNonUrgent:
		return 1
	}
	return 0
}

func (l TriageLevel) Valid() bool {
	return l.Severity() > 0
}

// HigherOf picks the more severe of two levels. Used for the deterministic
// tie-break: ambiguous evidence always resolves upward.
func HigherOf(a, b TriageLevel) TriageLevel {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// SymptomsData is the payload of the symptoms artifact. Field names are
// fixed for downstream compatibility.
type SymptomsData struct {
	PrimarySymptoms    []string `json:"primary_symptoms"`
	AssociatedSymptoms []string `json:"associated_symptoms"`
	Duration           string   `json:"duration"`
	Severity           string   `json:"severity"`
	History            []string `json:"history"`
	Medications        []string `json:"medications"`
	Allergies          []string `json:"allergies"`
}

// MissingFields reports which of the required fields are still empty.
// Triage may not be produced while any of these are missing.
func (s *SymptomsData) MissingFields() []string {
	var missing []string
	if len(s.PrimarySymptoms) == 0 {
		missing = append(missing, "primary_symptoms")
	}
	if s.Duration == "" {
		missing = append(missing, "duration")
	}
	if s.Severity == "" {
		missing = append(missing, "severity")
	}
	return missing
}

func (s *SymptomsData) Complete() bool {
	return len(s.MissingFields()) == 0
}

// Merge folds newly extracted facts into the accumulated data without
// discarding anything already supplied. A field, once filled, stays filled.
func (s *SymptomsData) Merge(in *SymptomsData) {
	s.PrimarySymptoms = mergeLists(s.PrimarySymptoms, in.PrimarySymptoms)
	s.AssociatedSymptoms = mergeLists(s.AssociatedSymptoms, in.AssociatedSymptoms)
	s.History = mergeLists(s.History, in.History)
	s.Medications = mergeLists(s.Medications, in.Medications)
	s.Allergies = mergeLists(s.Allergies, in.Allergies)
	if in.Duration != "" {
		s.Duration = in.Duration
	}
	if in.Severity != "" {
		s.Severity = in.Severity
	}
}

func mergeLists(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range incoming {
		if v != "" && !seen[v] {
			existing = append(existing, v)
			seen[v] = true
		}
	}
	return existing
}

// TriageResult is the payload of the triage artifact.
type TriageResult struct {
	Level           TriageLevel `json:"level"`
	Justification   string      `json:"justification"`
	MatchedCriteria []string    `json:"matched_criteria"`
	Recommendation  string      `json:"recommendation"`
	LowConfidence   bool        `json:"low_confidence,omitempty"`
}

// ActionResult is the payload of the action artifact.
type ActionResult struct {
	ActionType string                 `json:"action_type"`
	Details    map[string]interface{} `json:"details"`
	Message    string                 `json:"message"`
	Degraded   bool                   `json:"degraded,omitempty"`
}

// RecommendedCode is a coded-diagnosis suggestion.
type RecommendedCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Confidence  string `json:"confidence"`
}

// SOAPNote is the payload of the documentation artifact.
type SOAPNote struct {
	Subjective       map[string]interface{} `json:"subjective"`
	Objective        map[string]interface{} `json:"objective"`
	Assessment       map[string]interface{} `json:"assessment"`
	Plan             map[string]interface{} `json:"plan"`
	RecommendedCodes []RecommendedCode      `json:"recommended_codes"`
}
