package main

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialStream(t *testing.T, srv *server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStreamHandler(t *testing.T) {
	srv := newTestServer(t)
	conn := dialStream(t, srv)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"maxIterations": 200, "seed": 7}))

	edges := 0
	paths := 0
	var result *runSummary
	for result == nil {
		var msg streamMessage
		require.NoError(t, conn.ReadJSON(&msg))
		switch msg.Type {
		case "edge":
			require.NotNil(t, msg.Parent)
			require.NotNil(t, msg.Child)
			assert.LessOrEqual(t, msg.Parent.Distance(*msg.Child), 7.0+1e-9)
			edges++
		case "path":
			paths++
		case "result":
			result = msg.Run
		default:
			t.Fatalf("unexpected message type %q", msg.Type)
		}
	}

	require.NotNil(t, result)
	assert.Equal(t, result.NumNodes-1, edges)
	assert.Equal(t, int64(7), result.Seed)
	if len(result.Path) > 0 {
		assert.Equal(t, 1, paths)
	}

	stored, ok := srv.runs.Get(result.ID)
	require.True(t, ok)
	assert.Len(t, stored.Result.Nodes, result.NumNodes)
}

func TestStreamHandler_InvalidConfig(t *testing.T) {
	srv := newTestServer(t)
	conn := dialStream(t, srv)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"stepSize": 0}))

	var msg streamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Error, "invalid config")
	assert.Zero(t, srv.runs.Len())
}
