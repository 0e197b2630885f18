package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/engine"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/model"
)

// MockParticipantRepo is a mock type for the ParticipantRepo interface
type MockParticipantRepo struct {
	mock.Mock
}

func (m *MockParticipantRepo) NextID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionRepo is a mock type for the SessionRepo interface
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionRepo) SetStatus(ctx context.Context, id string, status model.SessionStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockSessionRepo) SetCompletionCode(ctx context.Context, id, code string) error {
	args := m.Called(ctx, id, code)
	return args.Error(0)
}

// MockResponseRepo is a mock type for the ResponseRepo interface
type MockResponseRepo struct {
	mock.Mock
}

func (m *MockResponseRepo) InsertBatch(ctx context.Context, snapshots []model.ResponseSnapshot) error {
	args := m.Called(ctx, snapshots)
	return args.Error(0)
}

func (m *MockResponseRepo) GetBySessionID(ctx context.Context, sessionID string) ([]model.ResponseSnapshot, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ResponseSnapshot), args.Error(1)
}

// MockEventRepo is a mock type for the EventRepo interface
type MockEventRepo struct {
	mock.Mock
}

func (m *MockEventRepo) Insert(ctx context.Context, event model.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepo) GetBySessionID(ctx context.Context, sessionID string) ([]model.Event, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Event), args.Error(1)
}

// MockProgressCache is a mock type for the ProgressCache interface
type MockProgressCache struct {
	mock.Mock
}

func (m *MockProgressCache) Set(ctx context.Context, progress *model.Progress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func (m *MockProgressCache) Get(ctx context.Context, sessionID string) (*model.Progress, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Progress), args.Error(1)
}

func (m *MockProgressCache) List(ctx context.Context) ([]*model.Progress, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Progress), args.Error(1)
}

func (m *MockProgressCache) Remove(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// recordingBroadcaster captures broadcast message types per session.
type recordingBroadcaster struct {
	mu    sync.Mutex
	types []string
}

func (b *recordingBroadcaster) BroadcastToMonitors(sessionID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.types = append(b.types, msgType)
}

func (b *recordingBroadcaster) seen(msgType string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.types {
		if t == msgType {
			return true
		}
	}
	return false
}

func testKnowledge() []model.KnowledgeEntry {
	return []model.KnowledgeEntry{
		{Category: model.SectionPrompting, Statement: "Having an important goal blocked.", Emotion: "anger"},
		{Category: model.SectionPrompting, Statement: "The death of someone you love.", Emotion: "sadness"},
		{Category: model.SectionPrompting, Statement: "Being alone in the dark.", Emotion: "fear"},
	}
}

type serviceFixture struct {
	svc          *SessionService
	participants *MockParticipantRepo
	sessions     *MockSessionRepo
	responses    *MockResponseRepo
	events       *MockEventRepo
	progress     *MockProgressCache
	broadcaster  *recordingBroadcaster
}

// newFixture wires a session service over permissive mocks. Persistence runs
// on background goroutines, so expectations stay loose by default.
func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		participants: new(MockParticipantRepo),
		sessions:     new(MockSessionRepo),
		responses:    new(MockResponseRepo),
		events:       new(MockEventRepo),
		progress:     new(MockProgressCache),
		broadcaster:  &recordingBroadcaster{},
	}

	f.participants.On("NextID", mock.Anything).Return(int64(42), nil).Maybe()
	f.sessions.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.sessions.On("SetStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.sessions.On("SetCompletionCode", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.responses.On("InsertBatch", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.events.On("Insert", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.progress.On("Set", mock.Anything, mock.Anything).Return(nil).Maybe()

	authSvc := NewAuthService("researcher", "secret", "test-jwt-secret")
	f.svc = NewSessionService(
		f.participants, f.sessions, f.responses, f.events,
		f.progress, authSvc, testKnowledge(), 12,
	)
	f.svc.SetBroadcaster(f.broadcaster)
	return f
}

func TestSessionService_StartSession(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.StartSession(&StartSessionRequest{Variant: "prompting"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.SessionID, "s_"))
	assert.Equal(t, int64(42), resp.ParticipantID)
	assert.NotEmpty(t, resp.Token)

	require.NotNil(t, resp.View)
	assert.Equal(t, model.ScreenIntro, resp.View.Screen.Kind)
	assert.Equal(t, 0, resp.View.Position)
	assert.False(t, resp.View.HasPrev)
	assert.True(t, resp.View.HasNext)
	assert.Equal(t, model.SessionActive, resp.View.Status)

	assert.True(t, f.broadcaster.seen("session_started"))
}

func TestSessionService_StartSession_UnknownVariant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.StartSession(&StartSessionRequest{Variant: "nope"})
	assert.Error(t, err)
}

func TestSessionService_AdvanceAndRetreat(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.StartSession(&StartSessionRequest{Variant: "prompting"})
	require.NoError(t, err)

	view, err := f.svc.Advance(resp.SessionID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Position)
	assert.True(t, view.HasPrev)
	assert.True(t, f.broadcaster.seen("screen_changed"))

	view, err = f.svc.Retreat(resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Position)
}

func TestSessionService_RetreatAtStartRejected(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.StartSession(&StartSessionRequest{Variant: "prompting"})
	require.NoError(t, err)

	_, err = f.svc.Retreat(resp.SessionID)
	assert.ErrorIs(t, err, ErrNoPrevScreen)
}

func TestSessionService_UnknownSession(t *testing.T) {
	f := newFixture(t)
	f.sessions.On("GetByID", mock.Anything, "s_missing").Return(nil, nil)

	_, err := f.svc.Current("s_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.Advance("s_missing", nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.GetSession(context.Background(), "s_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_AdvanceAppliesAnswers(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.StartSession(&StartSessionRequest{Variant: "app", Mode: "app"})
	require.Error(t, err, "unknown variant in app mode")

	resp, err = f.svc.StartSession(&StartSessionRequest{Variant: "prompting", Mode: "app"})
	require.NoError(t, err)

	// App mode opens on the activity intro; the checklist page is next.
	view, err := f.svc.Advance(resp.SessionID, nil)
	require.NoError(t, err)
	require.Equal(t, model.ScreenStatements, view.Screen.Kind)

	view, err = f.svc.Advance(resp.SessionID, &AdvanceRequest{Answers: []engine.AnswerInput{
		{Question: "Having an important goal blocked.", Group: model.GroupBody, Response: true},
	}})
	require.NoError(t, err)
	require.Equal(t, model.ScreenSummary, view.Screen.Kind)
	require.Len(t, view.Screen.Matches, 1)
	assert.Equal(t, "anger", view.Screen.Matches[0].Emotion)
	assert.True(t, f.broadcaster.seen("answers_updated"))
}

func TestSessionService_AdvanceRejectsUnknownAnswer(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.StartSession(&StartSessionRequest{Variant: "prompting"})
	require.NoError(t, err)

	before, err := f.svc.Current(resp.SessionID)
	require.NoError(t, err)

	_, err = f.svc.Advance(resp.SessionID, &AdvanceRequest{Answers: []engine.AnswerInput{
		{Question: "never registered", Group: model.GroupBody, Response: true},
	}})
	assert.ErrorIs(t, err, model.ErrRecordNotFound)

	after, err := f.svc.Current(resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, before.Position, after.Position, "rejected update must not move the session")
}

func TestSessionService_CompletesAtEnd(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.StartSession(&StartSessionRequest{Variant: "prompting", Mode: "app"})
	require.NoError(t, err)

	var view *ScreenView
	for i := 0; i < 100; i++ {
		view, err = f.svc.Advance(resp.SessionID, nil)
		require.NoError(t, err)
		if view.Done {
			break
		}
	}

	require.True(t, view.Done)
	assert.Equal(t, model.ScreenEnd, view.Screen.Kind)
	assert.Equal(t, model.SessionCompleted, view.Status)
	assert.True(t, f.broadcaster.seen("session_completed"))

	_, err = f.svc.Advance(resp.SessionID, nil)
	assert.ErrorIs(t, err, ErrNoNextScreen)

	session, err := f.svc.GetSession(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, session.Status)
	assert.NotEmpty(t, session.CompletionCode)
}

func TestSessionService_AdvanceAtEndLeavesAnswersUntouched(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.StartSession(&StartSessionRequest{Variant: "prompting", Mode: "app"})
	require.NoError(t, err)

	var view *ScreenView
	for i := 0; i < 100; i++ {
		view, err = f.svc.Advance(resp.SessionID, nil)
		require.NoError(t, err)
		if view.Done {
			break
		}
	}
	require.True(t, view.Done)

	// Answers posted from the final screen are rejected before anything
	// is applied or announced.
	_, err = f.svc.Advance(resp.SessionID, &AdvanceRequest{Answers: []engine.AnswerInput{
		{Question: "Having an important goal blocked.", Group: model.GroupBody, Response: true},
	}})
	assert.ErrorIs(t, err, ErrNoNextScreen)
	assert.False(t, f.broadcaster.seen("answers_updated"))

	after, err := f.svc.Current(resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, view.Position, after.Position)
}

func TestSessionService_NavigationSurvivesBrokenPersistence(t *testing.T) {
	boom := errors.New("database down")

	f := &serviceFixture{
		participants: new(MockParticipantRepo),
		sessions:     new(MockSessionRepo),
		responses:    new(MockResponseRepo),
		events:       new(MockEventRepo),
		progress:     new(MockProgressCache),
		broadcaster:  &recordingBroadcaster{},
	}
	f.participants.On("NextID", mock.Anything).Return(int64(0), boom).Maybe()
	f.sessions.On("Create", mock.Anything, mock.Anything).Return(boom).Maybe()
	f.sessions.On("SetStatus", mock.Anything, mock.Anything, mock.Anything).Return(boom).Maybe()
	f.sessions.On("SetCompletionCode", mock.Anything, mock.Anything, mock.Anything).Return(boom).Maybe()
	f.responses.On("InsertBatch", mock.Anything, mock.Anything).Return(boom).Maybe()
	f.events.On("Insert", mock.Anything, mock.Anything).Return(boom).Maybe()
	f.progress.On("Set", mock.Anything, mock.Anything).Return(boom).Maybe()

	authSvc := NewAuthService("researcher", "secret", "test-jwt-secret")
	f.svc = NewSessionService(
		f.participants, f.sessions, f.responses, f.events,
		f.progress, authSvc, testKnowledge(), 12,
	)
	f.svc.SetBroadcaster(f.broadcaster)

	resp, err := f.svc.StartSession(&StartSessionRequest{Variant: "prompting", Mode: "app"})
	require.NoError(t, err, "session must start even with every store broken")
	assert.Equal(t, int64(0), resp.ParticipantID, "fallback participant id")

	view, err := f.svc.Advance(resp.SessionID, nil)
	require.NoError(t, err)

	view, err = f.svc.Advance(resp.SessionID, &AdvanceRequest{Answers: []engine.AnswerInput{
		{Question: "Being alone in the dark.", Group: model.GroupBody, Response: true},
	}})
	require.NoError(t, err)
	assert.NotNil(t, view)

	_, err = f.svc.Retreat(resp.SessionID)
	require.NoError(t, err)
}

func TestSessionService_ListProgress(t *testing.T) {
	f := newFixture(t)

	rows := []*model.Progress{{SessionID: "s_1", Position: 3, Total: 20}}
	f.progress.On("List", mock.Anything).Return(rows, nil)

	got, err := f.svc.ListProgress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestAuthService_LoginAndTokens(t *testing.T) {
	authSvc := NewAuthService("researcher", "secret", "test-jwt-secret")

	_, err := authSvc.Login("researcher", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := authSvc.Login("researcher", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, strings.HasPrefix(resp.ResearcherID, "r_"))

	claims, err := authSvc.ValidateResearcherToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.ResearcherID, claims.ResearcherID)

	_, err = authSvc.ValidateResearcherToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err := authSvc.GenerateParticipantToken("s_abc123")
	require.NoError(t, err)
	pClaims, err := authSvc.ValidateParticipantToken(token)
	require.NoError(t, err)
	assert.Equal(t, "s_abc123", pClaims.SessionID)

	// Tokens are not interchangeable across roles: a participant token has
	// no researcher id.
	rClaims, err := authSvc.ValidateResearcherToken(token)
	if err == nil {
		assert.Empty(t, rClaims.ResearcherID)
	}
}
