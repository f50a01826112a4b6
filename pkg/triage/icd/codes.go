package icd

import (
	"strings"

	"smart-triage-be/pkg/store"
)

// mapping rows are matched against primary symptoms by substring, so the
// patient's own wording ("demam tinggi", "sesak napas berat") still hits.
type mapping struct {
	keywords    []string
	code        string
	description string
	confidence  string
}

var table = []mapping{
	{[]string{"demam", "fever", "panas tinggi"}, "R50.9", "Fever, unspecified", "medium"},
	{[]string{"sesak", "napas", "nafas", "dyspnea"}, "R06.0", "Dyspnea", "medium"},
	{[]string{"nyeri dada", "dada sakit", "chest pain"}, "R07.4", "Chest pain, unspecified", "medium"},
	{[]string{"sakit kepala", "pusing", "headache"}, "R51", "Headache", "medium"},
	{[]string{"mual", "muntah", "nausea", "vomit"}, "R11", "Nausea and vomiting", "medium"},
	{[]string{"diare", "mencret", "diarrhea"}, "A09", "Infectious gastroenteritis and colitis", "low"},
	{[]string{"batuk", "cough"}, "R05", "Cough", "low"},
	{[]string{"nyeri perut", "sakit perut", "abdominal pain"}, "R10.4", "Other and unspecified abdominal pain", "medium"},
}

// Recommend maps primary symptoms to ICD-10 codes via the keyword table.
// These are suggestions for the note, not diagnoses.
func Recommend(primarySymptoms []string) []store.RecommendedCode {
	var codes []store.RecommendedCode
	seen := make(map[string]bool)

	for _, symptom := range primarySymptoms {
		lowered := strings.ToLower(symptom)
		for _, m := range table {
			if seen[m.code] {
				continue
			}
			for _, kw := range m.keywords {
				if strings.Contains(lowered, kw) {
					codes = append(codes, store.RecommendedCode{
						Code:        m.code,
						Description: m.description,
						Confidence:  m.confidence,
					})
					seen[m.code] = true
					break
				}
			}
		}
	}
	return codes
}
