package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kapu/wellness-companion-go/internal/command"
	"github.com/kapu/wellness-companion-go/internal/constants"
	"github.com/kapu/wellness-companion-go/internal/domain"
	"github.com/kapu/wellness-companion-go/internal/session"
	"github.com/kapu/wellness-companion-go/internal/util"
	"github.com/kapu/wellness-companion-go/internal/wizard"
)

const (
	socketEventResult = "result"
	socketEventClosed = "closed"
	socketEventError  = "error"
)

type socketRequest struct {
	Action string `json:"action"`
}

type socketEvent struct {
	Type     string                 `json:"type"`
	Response *domain.ResponseResult `json:"response,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// handleResponseSocket binds the AI response screen to one websocket. The
// result is pushed when ready; {"action":"regenerate"} asks for another
// one. Closing the socket while a call is in flight leaves the screen,
// which cancels the call.
func (s *Server) handleResponseSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var screen *wizard.AIResponseScreen
	err = sess.Do(func() error {
		var mountErr error
		screen, _, mountErr = command.MountResponseScreen(sess, s.responder)
		return mountErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := s.logger.With(zap.String("session_id", sess.ID))
	logger.Debug("Response socket opened")

	// Hijacked connections outlive r.Context(), so the reader owns ctx.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	requests := make(chan socketRequest, 1)
	go readSocket(conn, requests, cancel, logger)

	for {
		res, ok := screen.Await(ctx)
		if !ok {
			if ctx.Err() != nil {
				s.leaveResponseScreen(sess, screen, logger)
				return
			}
			_ = writeSocket(conn, socketEvent{Type: socketEventClosed})
			return
		}
		if err := writeSocket(conn, socketEvent{Type: socketEventResult, Response: &res}); err != nil {
			logger.Warn("WebSocket write failed", zap.Error(err))
			return
		}

		select {
		case <-ctx.Done():
			return
		case req := <-requests:
			if req.Action != "regenerate" {
				_ = writeSocket(conn, socketEvent{Type: socketEventError, Error: "unknown action"})
				continue
			}
			if err := sess.Do(screen.Regenerate); err != nil {
				_ = writeSocket(conn, socketEvent{Type: socketEventError, Error: err.Error()})
				if !screen.Mounted() {
					return
				}
			}
		}
	}
}

// leaveResponseScreen continues past the screen when the socket went away
// before the call finished.
func (s *Server) leaveResponseScreen(sess *session.Session, screen *wizard.AIResponseScreen, logger *zap.Logger) {
	err := sess.Do(func() error {
		if !screen.Mounted() || !screen.Loading() {
			return nil
		}
		return screen.Continue()
	})
	if err != nil {
		logger.Warn("Failed to leave response screen", zap.Error(err))
		return
	}
	logger.Debug("Response socket closed")
}

func readSocket(conn *websocket.Conn, requests chan<- socketRequest, cancel context.CancelFunc, logger *zap.Logger) {
	defer cancel()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("WebSocket read ended", zap.Error(err))
			}
			return
		}

		var req socketRequest
		if err := json.Unmarshal(data, &req); err != nil {
			logger.Warn("Failed to parse socket message",
				zap.Error(err),
				zap.String("data", util.TruncateString(string(data), constants.WebSocketConfig.LogPreviewRunes)),
			)
			continue
		}

		select {
		case requests <- req:
		default:
			logger.Debug("Dropping socket request while a response is pending",
				zap.String("action", req.Action),
			)
		}
	}
}

func writeSocket(conn *websocket.Conn, event socketEvent) error {
	if err := conn.SetWriteDeadline(time.Now().Add(constants.WebSocketConfig.WriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(event)
}
