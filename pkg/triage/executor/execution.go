package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"smart-triage-be/pkg/store"
	"smart-triage-be/pkg/triage/actions"
)

const executionProducer = "execution"

const (
	ActionDispatch = "emergency_dispatch"
	ActionBooking  = "visit_booking"
	ActionSelfCare = "self_care"
)

// Execution turns a committed triage level into exactly one concrete
// action. A failing action service degrades to written instructions, it
// never blocks the session.
type Execution struct {
	services actions.Services
	logger   *log.Logger
}

var _ Executor = (*Execution)(nil)

func NewExecution(services actions.Services, logger *log.Logger) *Execution {
	return &Execution{services: services, logger: logger}
}

func (e *Execution) StageKey() store.StageKey {
	return store.StageAction
}

func (e *Execution) Execute(ctx context.Context, ec *ExecContext) (*Result, error) {
	triage := &store.TriageResult{}
	if a := ec.Session.Get(store.StageTriage); a == nil {
		return nil, fmt.Errorf("execution requires a triage artifact")
	} else if err := a.DecodePayload(triage); err != nil {
		return nil, err
	}
	symptoms := &store.SymptomsData{}
	if a := ec.Session.Get(store.StageSymptoms); a != nil {
		if err := a.DecodePayload(symptoms); err != nil {
			return nil, err
		}
	}

	result := e.act(ctx, ec.Session, triage.Level, symptoms.PrimarySymptoms)

	committed, err := ec.Session.Set(store.StageAction, result, executionProducer)
	if err != nil {
		return nil, err
	}
	e.logger.Printf("[EXECUTION] Session %s action %s (degraded=%v)",
		ec.Session.ID, result.ActionType, result.Degraded)
	return &Result{Kind: Committed, Artifact: committed, Reply: result.Message}, nil
}

func (e *Execution) act(ctx context.Context, session *store.Session, level store.TriageLevel, symptoms []string) *store.ActionResult {
	switch level {
	case store.LevelEmergency:
		return e.dispatch(ctx, session, symptoms)
	case store.LevelUrgent:
		return e.book(ctx, session, symptoms)
	default:
		return e.selfCare(ctx, symptoms)
	}
}

func (e *Execution) dispatch(ctx context.Context, session *store.Session, symptoms []string) *store.ActionResult {
	r, err := e.services.DispatchEmergency(ctx, session.Location, symptoms)
	if err != nil {
		e.logger.Printf("[EXECUTION] Emergency dispatch failed: %v", err)
		return degradedAction(ActionDispatch,
			"Sistem ambulans sedang tidak dapat dihubungi. SEGERA hubungi 119 atau minta seseorang mengantar Anda ke IGD terdekat.")
	}
	msg := "Ambulans sedang dalam perjalanan."
	if r.EstimatedArrival != "" {
		msg = fmt.Sprintf("Ambulans %s sedang dalam perjalanan, perkiraan tiba %s. Tujuan: %s.",
			r.AmbulanceID, r.EstimatedArrival, r.Facility)
	}
	return &store.ActionResult{ActionType: ActionDispatch, Details: toDetails(r), Message: msg}
}

func (e *Execution) book(ctx context.Context, session *store.Session, symptoms []string) *store.ActionResult {
	r, err := e.services.ScheduleVisit(ctx, session.PatientID, symptoms, session.Location)
	if err != nil {
		e.logger.Printf("[EXECUTION] Visit booking failed: %v", err)
		return degradedAction(ActionBooking,
			"Sistem booking sedang gangguan. Mohon datang langsung ke puskesmas atau klinik terdekat dalam 24 jam.")
	}
	msg := fmt.Sprintf("Kunjungan Anda terjadwal di %s pada %s (booking %s, antrean %s).",
		r.Facility, r.AppointmentTime, r.BookingID, r.QueueNumber)
	return &store.ActionResult{ActionType: ActionBooking, Details: toDetails(r), Message: msg}
}

func (e *Execution) selfCare(ctx context.Context, symptoms []string) *store.ActionResult {
	r, err := e.services.SelfCareGuide(ctx, symptoms)
	if err != nil {
		e.logger.Printf("[EXECUTION] Self-care guide failed: %v", err)
		return degradedAction(ActionSelfCare,
			"Panduan perawatan mandiri tidak tersedia saat ini. Istirahat cukup, minum banyak air, dan hubungi fasilitas kesehatan bila keluhan memburuk.")
	}
	msg := "Keluhan Anda dapat dirawat mandiri di rumah. Panduan lengkap sudah disiapkan."
	if r.WhenToSeekHelp != "" {
		msg += " " + r.WhenToSeekHelp
	}
	return &store.ActionResult{ActionType: ActionSelfCare, Details: toDetails(r), Message: msg}
}

// toDetails flattens a typed service reply into the artifact's generic
// details map. Optional fields the service omitted are simply absent.
func toDetails(v interface{}) map[string]interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	details := map[string]interface{}{}
	if err := json.Unmarshal(raw, &details); err != nil {
		return map[string]interface{}{}
	}
	return details
}

func degradedAction(actionType, message string) *store.ActionResult {
	return &store.ActionResult{
		ActionType: actionType,
		Details:    map[string]interface{}{},
		Message:    message,
		Degraded:   true,
	}
}
