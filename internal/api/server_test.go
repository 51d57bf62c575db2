package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/rosterapp/roster/internal/schedule"
	"github.com/rosterapp/roster/internal/search"
	"github.com/rosterapp/roster/internal/service"
	"github.com/rosterapp/roster/internal/sse"
	"github.com/rosterapp/roster/internal/store"
)

const testCurrentUser = "user-me"

// testServer wraps the API server with the pieces tests poke at directly.
type testServer struct {
	*Server
	api        humatest.TestAPI
	store      *store.Memory
	scheduler  *schedule.Manual
	sseManager *sse.Manager
}

// setupTestServer builds a server over an in-memory store with every
// service loaded from the seed data.
func setupTestServer(t *testing.T, opts ...func(*Options)) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	mem := store.NewMemory(logger)
	sseManager := sse.NewManager(logger)

	index, err := search.NewMemberIndex(search.Options{})
	require.NoError(t, err)

	deps := service.Deps{Store: mem, Emitter: sseManager, Logger: logger}
	sched := schedule.NewManual()

	services := &Services{
		Tag:    service.NewTagService(deps),
		Member: service.NewMemberService(deps, index),
		Chat: service.NewChatService(deps, service.ChatOptions{
			CurrentUserID: testCurrentUser,
			Scheduler:     sched,
			Pick:          func(int) int { return 0 },
		}),
		Search: index,
	}

	ctx := context.Background()
	require.NoError(t, services.Tag.Load(ctx))
	require.NoError(t, services.Member.Load(ctx))
	require.NoError(t, services.Chat.Load(ctx))

	o := Options{Version: "test"}
	for _, fn := range opts {
		fn(&o)
	}
	srv := NewServer(mem, services, sseManager, o, logger)

	t.Cleanup(func() {
		srv.Close()
		_ = services.Chat.Close()
		_ = index.Close()
		_ = mem.Close()
	})

	return &testServer{
		Server:     srv,
		api:        humatest.Wrap(t, srv.api),
		store:      mem,
		scheduler:  sched,
		sseManager: sseManager,
	}
}

// envelope is the decoded shape of a success response.
type envelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// errorBody is the decoded shape of a coded error response.
type errorBody struct {
	Version int               `json:"v"`
	Success bool              `json:"success"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	require.True(t, env.Success, resp.Body.String())
	require.Equal(t, EnvelopeVersion, env.Version)
	return env.Data
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body), resp.Body.String())
	require.False(t, body.Success)
	require.Equal(t, EnvelopeVersion, body.Version)
	return body
}

// advanceReplies fires every pending auto-reply.
func (ts *testServer) advanceReplies() {
	ts.scheduler.Advance(time.Minute)
}
