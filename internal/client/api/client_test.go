package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikiasgoitom/PromptShelf/internal/client/api"
	"github.com/mikiasgoitom/PromptShelf/internal/client/reaction"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
	handler "github.com/mikiasgoitom/PromptShelf/internal/handler/http"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/dto"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/config"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/events"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/jwt"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/logger"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/repository/memory"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/uuidgen"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/validator"
	"github.com/mikiasgoitom/PromptShelf/internal/usecase"
)

var (
	_ reaction.Toggler = (*api.Client)(nil)
	_ reaction.Source  = (*api.Client)(nil)
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.RegisterCustomValidators()
	os.Exit(m.Run())
}

type stack struct {
	srv   *httptest.Server
	store *memory.Store
	jwt   usecase.JWTService
}

func newStack(t *testing.T) *stack {
	t.Helper()
	cfg := &config.Config{
		AppEnv:             "test",
		JWTSecret:          "0123456789abcdef0123456789abcdef",
		JWTIssuer:          "promptshelf-test",
		RateLimitPerSecond: 1000,
		LivePingInterval:   time.Second,
		ReactedListLimit:   50,
		CORSAllowedOrigins: []string{"*"},
	}
	store := memory.NewStore(uuidgen.NewGenerator())
	appLogger := logger.NewZapLogger(nil)
	reactions := usecase.NewReactionUsecase(store, store, store, appLogger, cfg.ReactedListLimit)
	reactions.SetEventBus(events.NewHub())
	prompts := usecase.NewPromptUsecase(store, store, appLogger)
	users := usecase.NewUserUsecase(store, appLogger, validator.NewValidator())
	jwtService := jwt.NewJWTService(jwt.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, time.Hour))

	engine := gin.New()
	handler.NewRouter(reactions, prompts, users, jwtService, appLogger, nil, cfg).SetupRoutes(engine)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	author, err := store.UpsertUser(context.Background(), &entity.User{ExternalID: "ext-ada", Username: "ada"})
	require.NoError(t, err)
	store.PutPrompt(entity.Prompt{ID: "p1", AuthorID: author.ID, Title: "Summarize", IsPublic: true, LikeCount: 5, Revision: 1})
	return &stack{srv: srv, store: store, jwt: jwtService}
}

func (s *stack) client(t *testing.T, identity string, opts ...api.Option) *api.Client {
	t.Helper()
	token := ""
	if identity != "" {
		var err error
		token, err = s.jwt.GenerateAccessToken(identity, identity)
		require.NoError(t, err)
	}
	c, err := api.New(s.srv.URL, api.StaticToken(token), opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := api.New("ftp://example.com", nil)
	assert.Error(t, err)
}

func TestToggleAndState(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	c := s.client(t, "ext-bob")

	_, err := c.Sync(ctx, dto.SyncUserRequest{Username: "bob"})
	require.NoError(t, err)

	state, err := c.Toggle(ctx, "p1", entity.ReactionLike)
	require.NoError(t, err)
	assert.True(t, state.Active)
	assert.Equal(t, int64(6), state.Count)
	assert.Equal(t, int64(2), state.Revision)

	state, err = c.State(ctx, "p1", entity.ReactionLike)
	require.NoError(t, err)
	assert.True(t, state.Active)

	reactions, err := c.Reactions(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, reactions.Liked)
	assert.False(t, reactions.Bookmarked)
	assert.Equal(t, int64(6), reactions.LikeCount)
}

func TestToggle_Failures(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.client(t, "").Toggle(ctx, "p1", entity.ReactionLike)
	assert.True(t, failure.Is(err, failure.KindUnauthenticated), "got %v", err)

	// signed in but never synced
	_, err = s.client(t, "ext-stranger").Toggle(ctx, "p1", entity.ReactionLike)
	assert.True(t, failure.Is(err, failure.KindUnauthenticated), "got %v", err)

	_, err = s.client(t, "ext-ada").Toggle(ctx, "missing", entity.ReactionBookmark)
	assert.True(t, failure.Is(err, failure.KindNotFound), "got %v", err)
}

func TestToggle_NetworkErrorIsTransient(t *testing.T) {
	s := newStack(t)
	c := s.client(t, "ext-ada")
	s.srv.Close()

	_, err := c.Toggle(context.Background(), "p1", entity.ReactionLike)
	assert.True(t, failure.Is(err, failure.KindTransient), "got %v", err)
}

func TestToggle_PlainServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()
	c, err := api.New(srv.URL, api.StaticToken("t"))
	require.NoError(t, err)

	_, err = c.Toggle(context.Background(), "p1", entity.ReactionLike)
	var te *failure.TransientError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Error(), "upstream exploded")
}

func TestSync_RejectedProfile(t *testing.T) {
	s := newStack(t)
	avatar := "not a url"

	_, err := s.client(t, "ext-bob").Sync(context.Background(), dto.SyncUserRequest{Username: "bob", AvatarURL: &avatar})

	var re *api.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.Status)
	assert.Equal(t, dto.CodeBadRequest, re.Code)
}

func TestSubscribe(t *testing.T) {
	s := newStack(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bob := s.client(t, "ext-bob")
	_, err := bob.Sync(ctx, dto.SyncUserRequest{Username: "bob"})
	require.NoError(t, err)
	carol := s.client(t, "ext-carol")
	_, err = carol.Sync(ctx, dto.SyncUserRequest{Username: "carol"})
	require.NoError(t, err)

	states, err := bob.Subscribe(ctx, "p1", entity.ReactionLike)
	require.NoError(t, err)
	first := next(t, states)
	assert.Equal(t, int64(5), first.Count)
	assert.False(t, first.Active)

	_, err = carol.Toggle(ctx, "p1", entity.ReactionLike)
	require.NoError(t, err)
	second := next(t, states)
	assert.Equal(t, int64(6), second.Count)
	assert.False(t, second.Active)

	_, err = bob.Toggle(ctx, "p1", entity.ReactionLike)
	require.NoError(t, err)
	third := next(t, states)
	assert.Equal(t, int64(7), third.Count)
	assert.True(t, third.Active)

	cancel()
	for range states {
	}
}

func TestSubscribe_MissingPrompt(t *testing.T) {
	s := newStack(t)

	_, err := s.client(t, "").Subscribe(context.Background(), "missing", entity.ReactionLike)
	assert.True(t, failure.Is(err, failure.KindNotFound), "got %v", err)
}

func TestSubscribe_ResumesAfterDrop(t *testing.T) {
	var (
		mu     sync.Mutex
		sinces []string
	)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		sinces = append(sinces, r.URL.Query().Get("since"))
		attempt := len(sinces)
		mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if attempt == 1 {
			_ = conn.WriteJSON(dto.MembershipStateResponse{PromptID: "p1", Kind: "like", Count: 5, Revision: 1})
			return
		}
		// a replay of revision 1 must be skipped by the client
		_ = conn.WriteJSON(dto.MembershipStateResponse{PromptID: "p1", Kind: "like", Count: 5, Revision: 1})
		_ = conn.WriteJSON(dto.MembershipStateResponse{PromptID: "p1", Kind: "like", Count: 9, Revision: 2})
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c, err := api.New(srv.URL, nil, api.WithBackoff(10*time.Millisecond, 50*time.Millisecond))
	require.NoError(t, err)

	states, err := c.Subscribe(ctx, "p1", entity.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next(t, states).Revision)
	got := next(t, states)
	assert.Equal(t, int64(2), got.Revision)
	assert.Equal(t, int64(9), got.Count)

	mu.Lock()
	assert.Equal(t, []string{"", "1"}, sinces[:2])
	mu.Unlock()

	cancel()
	for range states {
	}
}

func TestControllerOverAPI(t *testing.T) {
	s := newStack(t)
	bob := s.client(t, "ext-bob")
	_, err := bob.Sync(context.Background(), dto.SyncUserRequest{Username: "bob"})
	require.NoError(t, err)

	ctrl, err := reaction.New(reaction.Config{PromptID: "p1", InitialCount: 5}, bob, signedIn("ext-bob"))
	require.NoError(t, err)
	defer ctrl.Close()

	ctrl.Click(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, ctrl.Wait(ctx))

	v := ctrl.View()
	assert.Equal(t, int64(6), v.Count)
	assert.True(t, v.Active)
}

type signedIn string

func (s signedIn) CallerIdentity() (string, bool) { return string(s), true }
func (signedIn) ReportError(failure.Failure, reaction.ErrorContext) {}
func (signedIn) RequireSignIn() {}

func next(t *testing.T, states <-chan entity.MembershipState) entity.MembershipState {
	t.Helper()
	select {
	case s, ok := <-states:
		require.True(t, ok, "subscription closed")
		return s
	case <-time.After(3 * time.Second):
		t.Fatal("no state received")
	}
	return entity.MembershipState{}
}
