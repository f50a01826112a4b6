package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"smart-triage-be/internal/dto"
	"smart-triage-be/internal/entity"
	"smart-triage-be/internal/pkg/logger"
	"smart-triage-be/internal/repository/memory"
	"smart-triage-be/internal/repository/specification"
	"smart-triage-be/internal/repository/unitofwork"
	"smart-triage-be/pkg/events"
	"smart-triage-be/pkg/llm"
	"smart-triage-be/pkg/store"
	"smart-triage-be/pkg/triage/executor"
	"smart-triage-be/pkg/triage/state"

	"github.com/google/uuid"
)

// maxCyclesPerTurn bounds the control loop. A turn commits at most one
// artifact per stage plus one symptoms re-commit after a back-edge.
const maxCyclesPerTurn = 8

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type StageNotifier interface {
	NotifyStageCompleted(sessionID, stageKey string, version int)
	NotifySessionCompleted(sessionID, triageLevel string)
}

type ITriageService interface {
	CreateSession(ctx context.Context, req *dto.CreateTriageSessionRequest) (*dto.CreateTriageSessionResponse, error)
	SendTurn(ctx context.Context, sessionID uuid.UUID, req *dto.SendTurnRequest) (*dto.SendTurnResponse, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*dto.GetSessionResponse, error)
}

type triageService struct {
	uowFactory     unitofwork.RepositoryFactory
	machine        *state.Machine
	registry       *executor.Registry
	questionStates *memory.QuestionStateRepository
	sessionCache   *memory.SessionRepository
	publisher      EventPublisher
	notifier       StageNotifier
	log            logger.ILogger

	// one mutex per live session keeps turns strictly sequential
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewTriageService(
	uowFactory unitofwork.RepositoryFactory,
	machine *state.Machine,
	registry *executor.Registry,
	questionStates *memory.QuestionStateRepository,
	sessionCache *memory.SessionRepository,
	publisher EventPublisher,
	notifier StageNotifier,
	log logger.ILogger,
) ITriageService {
	return &triageService{
		uowFactory:     uowFactory,
		machine:        machine,
		registry:       registry,
		questionStates: questionStates,
		sessionCache:   sessionCache,
		publisher:      publisher,
		notifier:       notifier,
		log:            log,
		locks:          make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *triageService) sessionLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[id] = l
	return l
}

func (s *triageService) CreateSession(ctx context.Context, req *dto.CreateTriageSessionRequest) (*dto.CreateTriageSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.TriageSession{
		Id:        uuid.New(),
		PatientId: req.PatientId,
		Location:  req.Location,
		Status:    "active",
		CreatedAt: time.Now(),
	}
	if err := uow.TriageSessionRepository().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info("TriageService", "Session created", map[string]interface{}{
		"session_id": session.Id.String(),
		"patient_id": session.PatientId,
	})
	s.publishEvent(ctx, events.NewSessionStarted(session.Id.String(), session.PatientId))

	return &dto.CreateTriageSessionResponse{
		Id:        session.Id,
		PatientId: session.PatientId,
		Status:    session.Status,
		CreatedAt: session.CreatedAt,
	}, nil
}

func (s *triageService) SendTurn(ctx context.Context, sessionID uuid.UUID, req *dto.SendTurnRequest) (*dto.SendTurnResponse, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	record, session, err := s.loadSession(ctx, uow, sessionID)
	if err != nil {
		return nil, err
	}

	if err := uow.SessionTurnRepository().Create(ctx, &entity.SessionTurn{
		Id:        uuid.New(),
		SessionId: sessionID,
		Role:      "user",
		Content:   req.Message,
		CreatedAt: time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("persist turn: %w", err)
	}

	transcript, err := s.loadTranscript(ctx, uow, sessionID)
	if err != nil {
		return nil, err
	}

	ec := &executor.ExecContext{
		Session:    session,
		Turn:       req.Message,
		Transcript: transcript,
		Questions:  s.questionStates.Get(sessionID.String()),
	}

	resp, err := s.runCycle(ctx, uow, record, session, ec)
	if err != nil {
		// an earlier stage in this turn may already be persisted, so the
		// cached copy can be behind the database; drop it and rebuild
		// from the persisted artifacts on the next turn
		s.sessionCache.Delete(sessionID.String())
		return nil, err
	}

	if resp.Reply != "" {
		if err := uow.SessionTurnRepository().Create(ctx, &entity.SessionTurn{
			Id:        uuid.New(),
			SessionId: sessionID,
			Role:      "assistant",
			Content:   resp.Reply,
			CreatedAt: time.Now(),
		}); err != nil {
			s.log.Warn("TriageService", "Failed to persist assistant turn", map[string]interface{}{"error": err.Error()})
		}
	}

	s.questionStates.Save(sessionID.String(), ec.Questions)
	s.sessionCache.Save(session)
	return resp, nil
}

// runCycle drives the stage machine until the turn settles: either a stage
// stalled waiting on the patient, the session completed, or nothing new
// could fire.
func (s *triageService) runCycle(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	record *entity.TriageSession,
	session *store.Session,
	ec *executor.ExecContext,
) (*dto.SendTurnResponse, error) {
	guard := state.NewCycleGuard()
	resp := &dto.SendTurnResponse{SessionId: uuid.MustParse(session.ID)}

	for cycle := 0; cycle < maxCyclesPerTurn; cycle++ {
		decision := s.machine.Decide(session)
		if decision.Kind == state.NoOp {
			resp.Completed = true
			resp.CurrentStage = string(store.StageDocumentation)
			if resp.Reply == "" {
				resp.Reply = "Sesi triase Anda sudah selesai."
			}
			s.completeSession(ctx, uow, record, session)
			return resp, nil
		}

		resp.CurrentStage = string(decision.Stage)
		if !guard.Admit(decision.Stage, state.NextVersion(session, decision.Stage)) {
			s.log.Warn("TriageService", "Stage refused to fire twice in one turn", map[string]interface{}{
				"session_id": session.ID,
				"stage":      string(decision.Stage),
			})
			return resp, nil
		}

		exec, err := s.registry.Lookup(decision.Stage)
		if err != nil {
			return nil, err
		}
		result, err := exec.Execute(ctx, ec)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", decision.Stage, err)
		}

		switch result.Kind {
		case executor.Committed:
			if err := s.persistArtifact(ctx, uow, record.Id, result.Artifact); err != nil {
				return nil, err
			}
			resp.CommittedStages = append(resp.CommittedStages, dto.StageArtifactDTO{
				StageKey:  string(result.Artifact.StageKey),
				Payload:   result.Artifact.Payload,
				Producer:  result.Artifact.Producer,
				Version:   result.Artifact.Version,
				CreatedAt: result.Artifact.CreatedAt,
			})
			if result.Reply != "" {
				resp.Reply = result.Reply
			}
			s.publishEvent(ctx, events.NewStageCompleted(session.ID, string(result.Artifact.StageKey), result.Artifact.Version))
			if s.notifier != nil {
				s.notifier.NotifyStageCompleted(session.ID, string(result.Artifact.StageKey), result.Artifact.Version)
			}

		case executor.InsufficientData:
			resp.Reply = result.Reply
			resp.MissingFields = result.MissingFields
			return resp, nil

		case executor.NeedsClarification:
			if err := session.ResetSymptoms(result.MissingFields); err != nil {
				s.log.Warn("TriageService", "Back-edge rejected", map[string]interface{}{
					"session_id": session.ID,
					"error":      err.Error(),
				})
				resp.MissingFields = result.MissingFields
				return resp, nil
			}
			if err := s.persistRequestedFields(ctx, uow, record, session); err != nil {
				return nil, err
			}
			s.publishEvent(ctx, events.NewBackEdgeTaken(session.ID, result.MissingFields))
		}
	}

	s.log.Error("TriageService", "Control loop exceeded cycle budget", map[string]interface{}{
		"session_id": session.ID,
	})
	return resp, nil
}

func (s *triageService) GetSession(ctx context.Context, sessionID uuid.UUID) (*dto.GetSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.TriageSessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	artifacts, err := uow.StageArtifactRepository().FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	turns, err := uow.SessionTurnRepository().FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp := &dto.GetSessionResponse{
		Id:        record.Id,
		PatientId: record.PatientId,
		Status:    record.Status,
		CreatedAt: record.CreatedAt,
	}
	for _, a := range artifacts {
		resp.Artifacts = append(resp.Artifacts, dto.StageArtifactDTO{
			StageKey:  a.StageKey,
			Payload:   a.Payload,
			Producer:  a.Producer,
			Version:   a.Version,
			CreatedAt: a.CreatedAt,
		})
	}
	for _, t := range turns {
		resp.Turns = append(resp.Turns, dto.TurnDTO{
			Role:      t.Role,
			Content:   t.Content,
			CreatedAt: t.CreatedAt,
		})
	}
	return resp, nil
}

// loadSession materializes the in-memory stage session, from the hot cache
// when possible, otherwise rebuilt from persisted artifacts.
func (s *triageService) loadSession(ctx context.Context, uow unitofwork.UnitOfWork, sessionID uuid.UUID) (*entity.TriageSession, *store.Session, error) {
	record, err := uow.TriageSessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, fmt.Errorf("session %s not found", sessionID)
	}

	if cached, found := s.sessionCache.Get(sessionID.String()); found {
		// hand out a copy; the cached session must stay at its last
		// persisted state until the whole turn succeeds
		return record, cached.Clone(), nil
	}

	session := store.NewSession(record.Id.String(), record.PatientId)
	session.Location = record.Location
	session.CreatedAt = record.CreatedAt

	rows, err := uow.StageArtifactRepository().FindBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	artifacts := make([]*store.Artifact, len(rows))
	for i, row := range rows {
		artifacts[i] = &store.Artifact{
			StageKey:  store.StageKey(row.StageKey),
			Payload:   row.Payload,
			Producer:  row.Producer,
			Version:   row.Version,
			CreatedAt: row.CreatedAt,
		}
	}
	session.Restore(artifacts, record.RequestedFields)
	return record, session, nil
}

func (s *triageService) loadTranscript(ctx context.Context, uow unitofwork.UnitOfWork, sessionID uuid.UUID) ([]llm.Message, error) {
	turns, err := uow.SessionTurnRepository().FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	messages := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := "user"
		if t.Role == "assistant" {
			role = "assistant"
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Content})
	}
	return messages, nil
}

func (s *triageService) persistArtifact(ctx context.Context, uow unitofwork.UnitOfWork, sessionID uuid.UUID, artifact *store.Artifact) error {
	return uow.StageArtifactRepository().Upsert(ctx, &entity.StageArtifact{
		Id:        uuid.New(),
		SessionId: sessionID,
		StageKey:  string(artifact.StageKey),
		Payload:   artifact.Payload,
		Producer:  artifact.Producer,
		Version:   artifact.Version,
		CreatedAt: artifact.CreatedAt,
	})
}

func (s *triageService) persistRequestedFields(ctx context.Context, uow unitofwork.UnitOfWork, record *entity.TriageSession, session *store.Session) error {
	record.RequestedFields = session.RequestedFields()
	return uow.TriageSessionRepository().Update(ctx, record)
}

func (s *triageService) completeSession(ctx context.Context, uow unitofwork.UnitOfWork, record *entity.TriageSession, session *store.Session) {
	if record.Status == "completed" {
		return
	}
	record.Status = "completed"
	if err := uow.TriageSessionRepository().Update(ctx, record); err != nil {
		s.log.Error("TriageService", "Failed to mark session completed", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return
	}

	level := ""
	if a := session.Get(store.StageTriage); a != nil {
		var triage store.TriageResult
		if err := a.DecodePayload(&triage); err == nil {
			level = string(triage.Level)
		}
	}
	s.publishEvent(ctx, events.NewSessionCompleted(session.ID, level))
	if s.notifier != nil {
		s.notifier.NotifySessionCompleted(session.ID, level)
	}
	s.questionStates.Delete(session.ID)
}

func (s *triageService) publishEvent(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("TriageService", "Event publish failed", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}
