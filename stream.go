package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rrt-planner/planner"
)

const streamWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// CORS is open for all origins, the socket follows suit
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamMessage is one server-to-client frame on /stream
type streamMessage struct {
	Type   string          `json:"type"`
	Parent *planner.Point  `json:"parent,omitempty"`
	Child  *planner.Point  `json:"child,omitempty"`
	Path   []planner.Point `json:"path,omitempty"`
	Run    *runSummary     `json:"run,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// socketObserver forwards planner events to a websocket. A failed write
// cancels the run, which the planner notices at its next iteration.
type socketObserver struct {
	conn   *websocket.Conn
	cancel context.CancelFunc
	err    error
}

func (o *socketObserver) send(msg streamMessage) {
	if o.err != nil {
		return
	}
	_ = o.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	if err := o.conn.WriteJSON(msg); err != nil {
		o.err = err
		o.cancel()
	}
}

func (o *socketObserver) EdgeAdded(edge planner.Edge) {
	o.send(streamMessage{Type: "edge", Parent: &edge.Parent, Child: &edge.Child})
}

func (o *socketObserver) PathFound(path []planner.Point) {
	o.send(streamMessage{Type: "path", Path: path})
}

// GET /stream - plan over a websocket, streaming every accepted edge
func (s *server) streamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	cfg := s.baseConfig()
	if err := conn.ReadJSON(&cfg); err != nil {
		s.logger.Warn("invalid stream request", zap.Error(err))
		_ = conn.WriteJSON(streamMessage{Type: "error", Error: "invalid request body"})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	observer := &socketObserver{conn: conn, cancel: cancel}
	p, err := planner.New(cfg, planner.WithObserver(observer), planner.WithLogger(s.logger))
	if err != nil {
		_ = conn.WriteJSON(streamMessage{Type: "error", Error: err.Error()})
		return
	}

	s.logger.Info("stream run started", zap.Int64("seed", cfg.Seed))
	res, err := p.Run(ctx)
	if err != nil && observer.err != nil {
		s.logger.Warn("stream client went away", zap.Error(observer.err))
		return
	}

	rec := s.runs.Put(p.Config(), res)
	summary := summarize(rec, false)
	if err != nil {
		summary.Message = err.Error()
	}
	observer.send(streamMessage{Type: "result", Run: &summary})

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
