package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/observability"
	"dividend-projection-lab/internal/simulation"
)

const (
	streamReadTimeout  = 30 * time.Second
	streamWriteTimeout = 10 * time.Second
	streamMaxMessage   = 64 << 10
)

// Stream message types
const (
	MessagePeriod  = "period"
	MessageSummary = "summary"
	MessageError   = "error"
)

// StreamMessage is one frame sent over /ws/simulate.
type StreamMessage struct {
	Type    string               `json:"type"`
	Period  *domain.PeriodRecord `json:"period,omitempty"`
	Summary *domain.Summary      `json:"summary,omitempty"`
	Error   string               `json:"error,omitempty"`
	Meta    map[string]any       `json:"meta,omitempty"`
}

// StreamHandler streams period records of one projection over a websocket.
type StreamHandler struct {
	Runner  *simulation.Runner
	Metrics *observability.Metrics
	Logger  *zap.Logger

	upgrader websocket.Upgrader
}

// Register mounts the handler routes.
func (h *StreamHandler) Register(r *gin.Engine) {
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	r.GET("/ws/simulate", h.simulate)
}

// simulate reads one SimulationConfig, then writes a period frame per
// simulated period followed by a summary or error frame.
func (h *StreamHandler) simulate(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.Logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.Metrics.ActiveStreamSessions.Inc()
	defer h.Metrics.ActiveStreamSessions.Dec()

	conn.SetReadLimit(streamMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(streamReadTimeout))

	_, payload, err := conn.ReadMessage()
	if err != nil {
		h.Logger.Debug("websocket read failed", zap.Error(err))
		return
	}

	var cfg domain.SimulationConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		h.write(conn, StreamMessage{Type: MessageError, Error: "invalid config: " + err.Error()})
		h.close(conn, websocket.CloseUnsupportedData)
		return
	}

	// The engine cannot be interrupted; once a write fails the rest are dropped.
	var writeErr error
	observe := func(rec domain.PeriodRecord) {
		if writeErr != nil {
			return
		}
		writeErr = h.write(conn, StreamMessage{Type: MessagePeriod, Period: &rec})
	}

	report, err := h.Runner.Simulate(simulation.SourceStream, cfg, observe)
	if writeErr != nil {
		h.Logger.Debug("websocket client went away", zap.Error(writeErr))
		return
	}
	if err != nil {
		_, meta := classify(err)
		h.write(conn, StreamMessage{Type: MessageError, Error: err.Error(), Meta: meta})
		h.close(conn, websocket.CloseNormalClosure)
		return
	}

	summary := report.Summary
	h.write(conn, StreamMessage{Type: MessageSummary, Summary: &summary})
	h.close(conn, websocket.CloseNormalClosure)
}

func (h *StreamHandler) write(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(msg)
}

func (h *StreamHandler) close(conn *websocket.Conn, code int) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, ""),
		time.Now().Add(time.Second))
}
