package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/cache"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/catalog"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/engine"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/model"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/repository"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoNextScreen    = errors.New("no next screen")
	ErrNoPrevScreen    = errors.New("cannot return to the previous screen")
)

// StartSessionRequest is the request body for starting a session
type StartSessionRequest struct {
	Variant string `json:"variant"`
	Mode    string `json:"mode,omitempty"` // "study" (default) or "app"
}

// StartSessionResponse carries the new session, its token and the first screen
type StartSessionResponse struct {
	SessionID     string      `json:"sessionId"`
	ParticipantID int64       `json:"participantId"`
	Token         string      `json:"token"`
	View          *ScreenView `json:"view"`
}

// ScreenView is what the navigation layer renders: the current screen plus
// the flags controlling which navigation buttons are shown.
type ScreenView struct {
	Screen         *model.Screen       `json:"screen"`
	Position       int                 `json:"position"`
	Total          int                 `json:"total"`
	HasNext        bool                `json:"hasNext"`
	HasPrev        bool                `json:"hasPrev"`
	NextReversible bool                `json:"nextReversible"`
	Done           bool                `json:"done"`
	Status         model.SessionStatus `json:"status"`
}

// AdvanceRequest carries the answers entered on the screen being left
type AdvanceRequest struct {
	Answers []engine.AnswerInput `json:"answers,omitempty"`
}

// liveSession pairs a session document with its in-memory engine. All
// navigation for one session is serialized through the mutex.
type liveSession struct {
	mu      sync.Mutex
	session *model.Session
	eng     *engine.Engine
}

// SessionService owns the registry of live sessions and orchestrates
// building, navigating and persisting them
type SessionService struct {
	participants repository.ParticipantRepo
	sessions     repository.SessionRepo
	responses    repository.ResponseRepo
	events       repository.EventRepo
	progress     cache.ProgressCache
	authSvc      *AuthService
	kb           []model.KnowledgeEntry
	perPage      int
	broadcaster  Broadcaster

	mu   sync.RWMutex
	live map[string]*liveSession
}

// NewSessionService creates a new session service
func NewSessionService(
	participants repository.ParticipantRepo,
	sessions repository.SessionRepo,
	responses repository.ResponseRepo,
	events repository.EventRepo,
	progress cache.ProgressCache,
	authSvc *AuthService,
	kb []model.KnowledgeEntry,
	perPage int,
) *SessionService {
	return &SessionService{
		participants: participants,
		sessions:     sessions,
		responses:    responses,
		events:       events,
		progress:     progress,
		authSvc:      authSvc,
		kb:           kb,
		perPage:      perPage,
		live:         make(map[string]*liveSession),
	}
}

// SetBroadcaster wires the WebSocket broadcaster (called after hub creation)
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// StartSession builds the screen sequence for the requested variant, spins up
// an engine and returns the first screen. Participant-id allocation and the
// session insert run in the background; a broken database degrades the
// session (id 0, no durable record) but never blocks it.
func (s *SessionService) StartSession(req *StartSessionRequest) (*StartSessionResponse, error) {
	var cfg model.FeatureConfig
	var err error
	if req.Mode == "app" {
		cfg, err = model.AppConfig(req.Variant)
	} else {
		cfg, err = model.VariantConfig(req.Variant)
	}
	if err != nil {
		return nil, err
	}

	pid := allocateParticipantID(s.participants)

	builder := &catalog.Builder{Config: cfg, KB: s.kb, Key: pid, PerPage: s.perPage}
	screens, store, err := builder.Build()
	if err != nil {
		return nil, err
	}

	sessionID := "s_" + uuid.New().String()[:8]
	gw := &sessionGateway{
		sessionID: sessionID,
		responses: s.responses,
		events:    s.events,
		sessions:  s.sessions,
	}
	eng := engine.New(screens, store, gw)
	first := eng.Advance()

	session := &model.Session{
		ID:            sessionID,
		ParticipantID: pid.wait(idWaitTimeout),
		Variant:       req.Variant,
		Config:        cfg,
		Status:        model.SessionActive,
		CreatedAt:     time.Now(),
	}
	ls := &liveSession{session: session, eng: eng}

	s.mu.Lock()
	s.live[sessionID] = ls
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.sessions.Create(ctx, session); err != nil {
			log.Printf("Session %s: failed to persist session: %v", sessionID, err)
		}
	}()
	s.cacheProgress(ls)
	s.broadcast(sessionID, "session_started", session)

	token, err := s.authSvc.GenerateParticipantToken(sessionID)
	if err != nil {
		return nil, err
	}

	return &StartSessionResponse{
		SessionID:     sessionID,
		ParticipantID: session.ParticipantID,
		Token:         token,
		View:          s.view(ls, first),
	}, nil
}

// Current returns the screen the session is presently on
func (s *SessionService) Current(sessionID string) (*ScreenView, error) {
	ls, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return s.view(ls, ls.eng.Current()), nil
}

// Advance applies the submitted answers to the current screen, then moves
// the session forward one logical step
func (s *SessionService) Advance(sessionID string, req *AdvanceRequest) (*ScreenView, error) {
	ls, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if !ls.eng.HasNext() {
		return nil, ErrNoNextScreen
	}

	if req != nil && len(req.Answers) > 0 {
		if err := ls.eng.Update(req.Answers); err != nil {
			return nil, err
		}
		s.broadcast(sessionID, "answers_updated", map[string]interface{}{
			"sessionId": sessionID,
			"count":     len(req.Answers),
		})
	}
	screen := ls.eng.Advance()

	if ls.eng.ScreenedOut() && ls.session.Status == model.SessionActive {
		ls.session.Status = model.SessionScreenedOut
		s.persistStatus(sessionID, model.SessionScreenedOut)
		s.broadcast(sessionID, "screening_failed", map[string]interface{}{
			"sessionId": sessionID,
		})
	}
	if ls.eng.Done() && ls.session.Status == model.SessionActive {
		ls.session.Status = model.SessionCompleted
		ls.session.CompletionCode = screen.CompletionCode
		s.persistStatus(sessionID, model.SessionCompleted)
		s.broadcast(sessionID, "session_completed", map[string]interface{}{
			"sessionId":      sessionID,
			"completionCode": screen.CompletionCode,
		})
	}

	s.cacheProgress(ls)
	view := s.view(ls, screen)
	s.broadcast(sessionID, "screen_changed", view)
	return view, nil
}

// Retreat moves the session back exactly one screen
func (s *SessionService) Retreat(sessionID string) (*ScreenView, error) {
	ls, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if !ls.eng.HasPrev() {
		return nil, ErrNoPrevScreen
	}
	screen := ls.eng.Retreat()

	s.cacheProgress(ls)
	view := s.view(ls, screen)
	s.broadcast(sessionID, "screen_changed", view)
	return view, nil
}

// Progress returns the cached progress row for one session
func (s *SessionService) Progress(ctx context.Context, sessionID string) (*model.Progress, error) {
	progress, err := s.progress.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, ErrSessionNotFound
	}
	return progress, nil
}

// ListProgress returns progress rows for every session the cache knows about
func (s *SessionService) ListProgress(ctx context.Context) ([]*model.Progress, error) {
	return s.progress.List(ctx)
}

// GetSession returns the persisted session document
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	s.mu.RLock()
	ls, ok := s.live[sessionID]
	s.mu.RUnlock()
	if ok {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		copied := *ls.session
		return &copied, nil
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) get(sessionID string) (*liveSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ls, ok := s.live[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

// view builds a ScreenView. Caller holds the liveSession mutex.
func (s *SessionService) view(ls *liveSession, screen *model.Screen) *ScreenView {
	return &ScreenView{
		Screen:         screen,
		Position:       ls.eng.Position(),
		Total:          ls.eng.Len(),
		HasNext:        ls.eng.HasNext(),
		HasPrev:        ls.eng.HasPrev(),
		NextReversible: ls.eng.IsNextReversible(),
		Done:           ls.eng.Done(),
		Status:         ls.session.Status,
	}
}

// cacheProgress mirrors the session's position into Redis for the study
// dashboard. Caller holds the liveSession mutex.
func (s *SessionService) cacheProgress(ls *liveSession) {
	progress := &model.Progress{
		SessionID:     ls.session.ID,
		ParticipantID: ls.session.ParticipantID,
		Variant:       ls.session.Variant,
		Position:      ls.eng.Position(),
		Total:         ls.eng.Len(),
		Kind:          ls.eng.Current().Kind,
		Status:        ls.session.Status,
		UpdatedAt:     time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.progress.Set(ctx, progress); err != nil {
		log.Printf("Session %s: failed to cache progress: %v", ls.session.ID, err)
	}
}

func (s *SessionService) persistStatus(sessionID string, status model.SessionStatus) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.sessions.SetStatus(ctx, sessionID, status); err != nil {
			log.Printf("Session %s: failed to persist status %s: %v", sessionID, status, err)
		}
	}()
}

func (s *SessionService) broadcast(sessionID, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToMonitors(sessionID, msgType, payload)
	}
}
