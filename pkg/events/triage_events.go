package events

import "time"

// Event type codes for the triage lifecycle.
const (
	TypeSessionStarted   = "TRIAGE_SESSION_STARTED"
	TypeStageCompleted   = "TRIAGE_STAGE_COMPLETED"
	TypeSessionCompleted = "TRIAGE_SESSION_COMPLETED"
	TypeBackEdgeTaken    = "TRIAGE_BACK_EDGE"
)

func NewSessionStarted(sessionID, patientID string) Event {
	return BaseEvent{
		Type: TypeSessionStarted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"patient_id": patientID,
		},
		OccurredAt: time.Now(),
	}
}

func NewStageCompleted(sessionID, stageKey string, version int) Event {
	return BaseEvent{
		Type: TypeStageCompleted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"stage_key":  stageKey,
			"version":    version,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionCompleted(sessionID, triageLevel string) Event {
	return BaseEvent{
		Type: TypeSessionCompleted,
		Data: map[string]interface{}{
			"session_id":   sessionID,
			"triage_level": triageLevel,
		},
		OccurredAt: time.Now(),
	}
}

func NewBackEdgeTaken(sessionID string, missingFields []string) Event {
	return BaseEvent{
		Type: TypeBackEdgeTaken,
		Data: map[string]interface{}{
			"session_id":     sessionID,
			"missing_fields": missingFields,
		},
		OccurredAt: time.Now(),
	}
}
