package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/response"
	"github.com/stemsi/candidate-assessment/internal/service"
	ws "github.com/stemsi/candidate-assessment/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a session as chat frames over a WebSocket.
type WSHandler struct {
	assessmentService *service.AssessmentService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(assessmentService *service.AssessmentService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		assessmentService: assessmentService,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:session_id/stream
// Accepts next, proceed, submit, complete and ping actions and answers with
// item, answer, completed, error and pong events.
func (h *WSHandler) SessionStream(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	// Reject unknown sessions before upgrading.
	if _, err := h.assessmentService.GetSummary(c.Request.Context(), sessionID); err != nil {
		failService(c, err, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	// Hijacked connections never cancel the request context, so store calls
	// are bound to the read loop instead.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	wsLog := h.log.With().Str("session_id", sessionID.String()).Logger()
	wsLog.Info().Msg("Candidate connected")

	// Emit the current item so the client can render without asking.
	h.handleItem(ctx, conn, wsLog, sessionID, false)

	for {
		var msg ws.Request
		if err := ws.Read(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionNext:
			h.handleItem(ctx, conn, wsLog, sessionID, false)
		case ws.ActionProceed:
			h.handleItem(ctx, conn, wsLog, sessionID, true)
		case ws.ActionSubmit:
			h.handleSubmit(ctx, conn, wsLog, sessionID, &msg)
		case ws.ActionComplete:
			h.handleComplete(ctx, conn, wsLog, sessionID)
		case ws.ActionPing:
			ws.Write(conn, ws.EventPong, nil)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

func (h *WSHandler) handleItem(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, sessionID uuid.UUID, proceed bool) {
	var (
		item *model.NextItem
		err  error
	)
	if proceed {
		item, err = h.assessmentService.Proceed(ctx, sessionID)
	} else {
		item, err = h.assessmentService.GetNextItem(ctx, sessionID)
	}
	if err != nil {
		wsLog.Error().Err(err).Bool("proceed", proceed).Msg("Failed to resolve item")
		ws.WriteError(conn, "failed to load next item")
		return
	}
	ws.Write(conn, ws.EventItem, item)
}

func (h *WSHandler) handleSubmit(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, sessionID uuid.UUID, msg *ws.Request) {
	questionID, err := uuid.Parse(msg.QuestionID)
	if err != nil {
		ws.WriteError(conn, "invalid question_id format")
		return
	}

	result, err := h.assessmentService.SubmitAnswer(ctx, sessionID, questionID, msg.Answer())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrQuestionNotFound):
			ws.WriteError(conn, err.Error())
		default:
			wsLog.Error().Err(err).Str("question_id", questionID.String()).Msg("Submit failed")
			ws.WriteError(conn, "Failed to submit answer")
		}
		return
	}
	ws.Write(conn, ws.EventAnswer, result)
}

func (h *WSHandler) handleComplete(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, sessionID uuid.UUID) {
	done, err := h.assessmentService.CompleteAssessment(ctx, sessionID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Complete failed")
		ws.WriteError(conn, "failed to complete assessment")
		return
	}
	if !done {
		ws.WriteError(conn, "Session not found")
		return
	}
	ws.Write(conn, ws.EventCompleted, ws.CompletedData{SessionID: sessionID.String(), Completed: true})
}
