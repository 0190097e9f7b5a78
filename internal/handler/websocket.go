package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/coderunr/judgeproxy/internal/job"
	"github.com/coderunr/judgeproxy/internal/types"
)

// Close codes used by the status stream
const (
	closeAlreadyInitialized = 4000
	closeInitTimeout        = 4001
	closeUnknownMessage     = 4002
)

const (
	initTimeout  = time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same policy as the CORS middleware
	},
}

// WebSocketConnection streams the progress of one execution to a client
type WebSocketConnection struct {
	conn       *websocket.Conn
	jobManager *job.Manager
	eventBus   chan types.WebSocketMessage
	logger     *logrus.Entry

	mutex        sync.Mutex
	job          *job.Job
	closed       bool
	closeCode    int
	closeMessage string
}

// HandleWebSocket upgrades the connection and runs one execution over it.
// The client sends {"type":"init","payload":{"language","code"}} and receives
// a "status" message per poll, then "result" or "error".
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("WebSocket upgrade failed")
		return
	}

	wsConn := &WebSocketConnection{
		conn:       conn,
		jobManager: h.jobManager,
		eventBus:   make(chan types.WebSocketMessage, 100),
		logger:     h.logger.WithField("component", "websocket"),
	}

	conn.SetReadDeadline(time.Now().Add(readTimeout))

	go wsConn.eventSender()

	timer := time.AfterFunc(initTimeout, func() {
		if !wsConn.initialized() {
			wsConn.sendError("Initialization timeout", http.StatusRequestTimeout)
			wsConn.close(closeInitTimeout, "Initialization Timeout")
		}
	})
	defer timer.Stop()

	wsConn.handleMessages(r.Context())
}

// handleMessages reads client messages until the connection ends
func (wsConn *WebSocketConnection) handleMessages(ctx context.Context) {
	defer wsConn.close(websocket.CloseNormalClosure, "Connection closed")

	for {
		var msg types.WebSocketMessage
		if err := wsConn.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				wsConn.logger.WithError(err).Debug("WebSocket read error")
			}
			return
		}

		wsConn.conn.SetReadDeadline(time.Now().Add(readTimeout))

		switch msg.Type {
		case "init":
			wsConn.handleInit(ctx, msg)
		default:
			wsConn.sendError("Unknown message type: "+msg.Type, http.StatusBadRequest)
			wsConn.close(closeUnknownMessage, "Unknown message type")
		}
	}
}

// handleInit decodes the execution request and starts it
func (wsConn *WebSocketConnection) handleInit(ctx context.Context, msg types.WebSocketMessage) {
	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		wsConn.sendError("Invalid request payload", http.StatusBadRequest)
		return
	}

	var request types.ExecutionRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		wsConn.sendError("Invalid execution request", http.StatusBadRequest)
		return
	}

	wsConn.mutex.Lock()
	if wsConn.job != nil {
		wsConn.mutex.Unlock()
		wsConn.close(closeAlreadyInitialized, "Already Initialized")
		return
	}
	j := wsConn.jobManager.NewJob(&request)
	j.OnStatus = func(attempt int, status types.JudgeStatus) {
		wsConn.sendMessage(types.WebSocketMessage{
			Type:    "status",
			Attempt: attempt,
			Data:    status.Description,
		})
	}
	wsConn.job = j
	wsConn.mutex.Unlock()

	go wsConn.execute(ctx, j)
}

// execute runs the job and reports its outcome
func (wsConn *WebSocketConnection) execute(ctx context.Context, j *job.Job) {
	defer wsConn.close(websocket.CloseNormalClosure, "Execution complete")

	result, err := j.Execute(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		status, response := errorResponse(err)
		wsConn.sendError(response.Error, status)
		return
	}

	wsConn.sendMessage(types.WebSocketMessage{
		Type:    "result",
		Payload: result,
	})
}

// eventSender is the only writer of data frames. When the bus is closed it
// flushes what is left and closes the connection.
func (wsConn *WebSocketConnection) eventSender() {
	defer wsConn.conn.Close()

	for event := range wsConn.eventBus {
		wsConn.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := wsConn.conn.WriteJSON(event); err != nil {
			wsConn.logger.WithError(err).Error("Failed to send WebSocket message")
			return
		}
	}

	wsConn.mutex.Lock()
	code, message := wsConn.closeCode, wsConn.closeMessage
	wsConn.mutex.Unlock()

	wsConn.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, message),
		time.Now().Add(time.Second))
}

// sendMessage queues a message for the client
func (wsConn *WebSocketConnection) sendMessage(msg types.WebSocketMessage) {
	wsConn.mutex.Lock()
	defer wsConn.mutex.Unlock()

	if wsConn.closed {
		return
	}

	select {
	case wsConn.eventBus <- msg:
	default:
		wsConn.logger.Warn("Event bus full, dropping message")
	}
}

// sendError queues an error message
func (wsConn *WebSocketConnection) sendError(message string, code int) {
	wsConn.sendMessage(types.WebSocketMessage{
		Type:  "error",
		Error: message,
		Code:  code,
	})
}

func (wsConn *WebSocketConnection) initialized() bool {
	wsConn.mutex.Lock()
	defer wsConn.mutex.Unlock()
	return wsConn.job != nil
}

// close stops accepting messages; the sender flushes and closes the socket
func (wsConn *WebSocketConnection) close(code int, message string) {
	wsConn.mutex.Lock()
	defer wsConn.mutex.Unlock()

	if wsConn.closed {
		return
	}

	wsConn.closed = true
	wsConn.closeCode = code
	wsConn.closeMessage = message
	close(wsConn.eventBus)
}
