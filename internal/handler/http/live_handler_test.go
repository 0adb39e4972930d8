package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestLiveStream(t *testing.T) {
	s := newTestServer(t, nil)
	s.reactions.Live = make(chan entity.MembershipState)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	url := liveURL(srv, "/api/v1/prompts/p1/reactions/like/live?since=12&access_token="+s.token(t, "ext-ada"))
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	s.reactions.Live <- entity.MembershipState{PromptID: "p1", Kind: entity.ReactionLike, Count: 6, Revision: 12}
	s.reactions.Live <- entity.MembershipState{PromptID: "p1", Kind: entity.ReactionLike, Active: true, Count: 7, Revision: 13}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got dto.MembershipStateResponse
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, int64(13), got.Revision)
	assert.True(t, got.Active)
	assert.Contains(t, s.reactions.CallLog(), "Watch:ext-ada:p1:like")

	close(s.reactions.Live)
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestLiveStream_Anonymous(t *testing.T) {
	s := newTestServer(t, nil)
	s.reactions.Live = make(chan entity.MembershipState, 1)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(liveURL(srv, "/api/v1/prompts/p1/reactions/bookmark/live"), nil)
	require.NoError(t, err)
	defer conn.Close()

	s.reactions.Live <- entity.MembershipState{PromptID: "p1", Kind: entity.ReactionBookmark, Count: 2, Revision: 1}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got dto.MembershipStateResponse
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "bookmark", got.Kind)
	assert.Contains(t, s.reactions.CallLog(), "Watch::p1:bookmark")
}

func TestLiveStream_WatchFails(t *testing.T) {
	s := newTestServer(t, nil)
	s.reactions.ShouldFailWatch = true
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(liveURL(srv, "/api/v1/prompts/missing/reactions/like/live"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLiveStream_BadSince(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/v1/prompts/p1/reactions/like/live?since=-3", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLiveStream_OriginRejected(t *testing.T) {
	cfg := testConfig()
	cfg.CORSAllowedOrigins = []string{"https://promptshelf.example"}
	s := newTestServer(t, cfg)
	s.reactions.Live = make(chan entity.MembershipState)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(liveURL(srv, "/api/v1/prompts/p1/reactions/like/live"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
