package actions

import "context"

// DispatchResult is the emergency service reply. Optional fields may be
// missing; callers must tolerate that.
type DispatchResult struct {
	Dispatched        bool   `json:"dispatched"`
	AmbulanceID       string `json:"ambulance_id,omitempty"`
	EstimatedArrival  string `json:"eta,omitempty"`
	Facility          string `json:"facility,omitempty"`
	FacilityAddress   string `json:"facility_address,omitempty"`
	FacilityNotified  bool   `json:"facility_notified,omitempty"`
	TrackingReference string `json:"tracking_reference,omitempty"`
}

// BookingResult is the visit-scheduling reply.
type BookingResult struct {
	BookingID       string `json:"booking_id"`
	Facility        string `json:"facility,omitempty"`
	FacilityAddress string `json:"facility_address,omitempty"`
	AppointmentTime string `json:"appointment_time,omitempty"`
	Doctor          string `json:"doctor,omitempty"`
	QueueNumber     string `json:"queue_number,omitempty"`
	Format          string `json:"format,omitempty"`
}

// SelfCareResult is the self-care guidance reply.
type SelfCareResult struct {
	Title           string   `json:"title,omitempty"`
	Recommendations []string `json:"recommendations"`
	WarningSigns    []string `json:"warning_signs"`
	WhenToSeekHelp  string   `json:"when_to_seek_help,omitempty"`
}

// Services groups the external action collaborators the execution stage
// calls. Exactly one of them is used per session, selected by triage level.
type Services interface {
	DispatchEmergency(ctx context.Context, location string, symptoms []string) (*DispatchResult, error)
	ScheduleVisit(ctx context.Context, patientID string, symptoms []string, location string) (*BookingResult, error)
	SelfCareGuide(ctx context.Context, symptoms []string) (*SelfCareResult, error)
}
