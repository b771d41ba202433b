package api

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mocks "github.com/cbodonnell/snek/mocks/github.com/cbodonnell/snek/pkg/repositories"
	"github.com/cbodonnell/snek/pkg/game"
	"github.com/cbodonnell/snek/pkg/game/types"
	"github.com/cbodonnell/snek/pkg/network"
	"github.com/cbodonnell/snek/pkg/render"
	"github.com/cbodonnell/snek/pkg/repositories"
	"github.com/cbodonnell/snek/pkg/repositories/models"
	"github.com/cbodonnell/snek/pkg/state"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func newTestStateManager(t *testing.T) *state.InMemoryStateManager {
	t.Helper()
	g := game.NewGame(game.NewGameOptions{
		Side:        4,
		StartLength: 2,
		Rand:        rand.New(rand.NewSource(1)),
	})
	g.Snake = types.NewSnake(types.Point{X: 2, Y: 2}, 2, types.DirectionRight, 4)
	g.Food = &types.Point{X: 0, Y: 0}
	return state.NewInMemoryStateManager(g)
}

func newTestServer(t *testing.T, opts NewAPIServerOptions) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewRouter(opts))
	t.Cleanup(server.Close)
	return server
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestGetSnake(t *testing.T) {
	stateManager := newTestStateManager(t)
	server := newTestServer(t, NewAPIServerOptions{StateManager: stateManager})

	resp, err := http.Get(server.URL + "/snake")
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))

	snapshot, err := stateManager.Game(context.Background())
	require.NoError(t, err)
	assert.Equal(t, render.Render(snapshot), body)
	assert.True(t, strings.HasPrefix(body, "Score: 0 \r\n"))
}

func TestGetSnake_Gzip(t *testing.T) {
	// a larger board so the response is over the gzip size threshold
	g := game.NewGame(game.NewGameOptions{Side: 40, StartLength: 3, Rand: rand.New(rand.NewSource(1))})
	server := newTestServer(t, NewAPIServerOptions{StateManager: state.NewInMemoryStateManager(g)})

	req, err := http.NewRequest(http.MethodGet, server.URL+"/snake", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	reader, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, render.Render(g.Copy()), string(body))
}

func TestSubmitDirection(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "post query parameter",
			method:     http.MethodPost,
			path:       "/snake?direction=up",
			wantStatus: http.StatusOK,
			wantBody:   "You sent direction: up \n State directions: [up]",
		},
		{
			name:       "get path segment",
			method:     http.MethodGet,
			path:       "/snake/left",
			wantStatus: http.StatusOK,
			wantBody:   "You sent direction: left \n State directions: [left]",
		},
		{
			name:       "unknown name",
			method:     http.MethodPost,
			path:       "/snake?direction=north",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "names are case sensitive",
			method:     http.MethodGet,
			path:       "/snake/Up",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing direction",
			method:     http.MethodPost,
			path:       "/snake",
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stateManager := newTestStateManager(t)
			server := newTestServer(t, NewAPIServerOptions{StateManager: stateManager})

			req, err := http.NewRequest(tt.method, server.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			body := readBody(t, resp)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, body)
			}

			pending, err := stateManager.PendingDirections(context.Background())
			require.NoError(t, err)
			if tt.wantStatus != http.StatusOK {
				assert.Empty(t, pending)
			}
		})
	}
}

func TestSubmitDirection_Accumulates(t *testing.T) {
	stateManager := newTestStateManager(t)
	server := newTestServer(t, NewAPIServerOptions{StateManager: stateManager})

	for _, name := range []string{"up", "down"} {
		resp, err := http.Post(server.URL+"/snake?direction="+name, "text/plain", nil)
		require.NoError(t, err)
		readBody(t, resp)
	}
	resp, err := http.Get(server.URL + "/snake/right")
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, "You sent direction: right \n State directions: [up, down, right]", body)

	// the server keeps serving after a rejected direction
	resp, err = http.Get(server.URL + "/snake/sideways")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(server.URL + "/snake")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(t, NewAPIServerOptions{StateManager: newTestStateManager(t)})

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/snake", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	readBody(t, resp)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestListRuns(t *testing.T) {
	endedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	runs := []*models.Run{
		{ID: uuid.New(), Score: 9, Length: 12, Ticks: 80, EndedAt: endedAt},
		{ID: uuid.New(), Score: 2, Length: 5, Ticks: 30, EndedAt: endedAt},
	}

	tests := []struct {
		name       string
		query      string
		setup      func(repository *mocks.Repository)
		wantStatus int
	}{
		{
			name:  "default limit",
			query: "",
			setup: func(repository *mocks.Repository) {
				repository.EXPECT().ListRuns(mock.Anything, 10).Return(runs, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:  "explicit limit",
			query: "?limit=2",
			setup: func(repository *mocks.Repository) {
				repository.EXPECT().ListRuns(mock.Anything, 2).Return(runs, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "limit too large",
			query:      "?limit=101",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "limit not a number",
			query:      "?limit=ten",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:  "repository error",
			query: "",
			setup: func(repository *mocks.Repository) {
				repository.EXPECT().ListRuns(mock.Anything, 10).Return(nil, errors.New("boom")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repository := mocks.NewRepository(t)
			if tt.setup != nil {
				tt.setup(repository)
			}
			server := newTestServer(t, NewAPIServerOptions{
				StateManager: newTestStateManager(t),
				Repository:   repository,
			})

			resp, err := http.Get(server.URL + "/runs" + tt.query)
			require.NoError(t, err)
			body := readBody(t, resp)

			require.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
				var got []*models.Run
				require.NoError(t, json.Unmarshal([]byte(body), &got))
				assert.Equal(t, runs, got)
			}
		})
	}
}

func TestGetRun(t *testing.T) {
	run := &models.Run{ID: uuid.New(), Score: 4, Length: 7, Ticks: 21, EndedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	missing := uuid.New()

	repository := mocks.NewRepository(t)
	repository.EXPECT().GetRun(mock.Anything, run.ID).Return(run, nil).Once()
	repository.EXPECT().GetRun(mock.Anything, missing).Return(nil, &repositories.ErrNotFound{}).Once()

	server := newTestServer(t, NewAPIServerOptions{
		StateManager: newTestStateManager(t),
		Repository:   repository,
	})

	resp, err := http.Get(server.URL + "/runs/" + run.ID.String())
	require.NoError(t, err)
	body := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.Run
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, *run, got)

	resp, err = http.Get(server.URL + "/runs/" + missing.String())
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(server.URL + "/runs/not-a-uuid")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunsRoutesRequireRepository(t *testing.T) {
	server := newTestServer(t, NewAPIServerOptions{StateManager: newTestStateManager(t)})

	resp, err := http.Get(server.URL + "/runs")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, NewAPIServerOptions{StateManager: newTestStateManager(t)})

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	body := readBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "ok", got["status"])
	assert.NotEmpty(t, got["version"])
}

func TestStream(t *testing.T) {
	hub := network.NewHub(network.NewHubOptions{})
	hub.Broadcast([]byte("frame one"))
	server := newTestServer(t, NewAPIServerOptions{
		StateManager: newTestStateManager(t),
		Hub:          hub,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	_, frame, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "frame one", string(frame))

	hub.Broadcast([]byte("frame two"))
	_, frame, err = conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "frame two", string(frame))
}
