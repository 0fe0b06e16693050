// internal/api/websocket.go
package api

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Corphon/SceneVideoMaker/internal/editor"
	apperrors "github.com/Corphon/SceneVideoMaker/internal/errors"
	"github.com/Corphon/SceneVideoMaker/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

// WebSocket 升级器配置，CheckOrigin 为空时只接受同源页面
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// inboundMessage 客户端消息，目前只有 action
type inboundMessage struct {
	Type   string        `json:"type"`
	Action ActionMessage `json:"action"`
}

// outboundMessage 推送给客户端的消息
type outboundMessage struct {
	Type      string        `json:"type"`
	Data      *editor.State `json:"data,omitempty"`
	Error     string        `json:"error,omitempty"`
	Code      string        `json:"code,omitempty"`
	Timestamp string        `json:"timestamp"`
}

// WebSocketClient 一个会话上的一条连接，只有 writePump 写连接
type WebSocketClient struct {
	conn    *websocket.Conn
	session *services.Session
	send    chan []byte
	closed  int32
	done    chan struct{}
	once    sync.Once
}

func newWebSocketClient(conn *websocket.Conn, session *services.Session) *WebSocketClient {
	return &WebSocketClient{
		conn:    conn,
		session: session,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
}

// Close 安全关闭客户端连接
func (client *WebSocketClient) Close() {
	client.once.Do(func() {
		atomic.StoreInt32(&client.closed, 1)
		close(client.done)
		client.conn.Close()
	})
}

// IsClosed 检查连接是否已关闭
func (client *WebSocketClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

// SendError 发送错误消息到客户端，队列满时丢弃
func (client *WebSocketClient) SendError(err error) {
	_, code := classifyError(err)
	client.enqueue(outboundMessage{
		Type:  "error",
		Error: apperrors.MessageOf(err),
		Code:  code,
	})
}

func (client *WebSocketClient) enqueue(msg outboundMessage) {
	if client.IsClosed() {
		return
	}
	msg.Timestamp = time.Now().Format(time.RFC3339)
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	case <-client.done:
	default:
	}
}

// writePump 推送状态快照和排队消息，并定期 ping
func (client *WebSocketClient) writePump(updates <-chan editor.State, initial editor.State) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Close()
	}()

	if err := client.writeState(initial); err != nil {
		return
	}

	for {
		select {
		case state, ok := <-updates:
			if !ok {
				client.conn.SetWriteDeadline(time.Now().Add(writeWait))
				client.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			// 只推送最新的一帧
			for drained := false; !drained; {
				select {
				case newer, ok := <-updates:
					if !ok {
						drained = true
						continue
					}
					state = newer
				default:
					drained = true
				}
			}
			if err := client.writeState(state); err != nil {
				return
			}

		case data := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-client.done:
			return
		}
	}
}

func (client *WebSocketClient) writeState(state editor.State) error {
	data, err := json.Marshal(outboundMessage{
		Type:      "state",
		Data:      &state,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	client.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return client.conn.WriteMessage(websocket.TextMessage, data)
}

// SessionWebSocket 处理会话 WebSocket 连接
func (h *Handler) SessionWebSocket(c *gin.Context) {
	session, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		h.Response.FromError(c, err, nil)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	session.Acquire()
	h.Metrics.AddGauge("websocket.connections", 1)
	defer func() {
		session.Release()
		h.Metrics.AddGauge("websocket.connections", -1)
	}()

	updates, unsubscribe := session.Store.Subscribe()
	defer unsubscribe()

	client := newWebSocketClient(conn, session)
	defer client.Close()

	log := h.Logger.With(map[string]interface{}{"session": session.ID})
	log.Info("websocket connected", nil)

	go client.writePump(updates, session.Store.Snapshot())
	h.readPump(client)

	log.Info("websocket disconnected", nil)
}

// readPump 读取客户端动作直到连接断开
func (h *Handler) readPump(client *WebSocketClient) {
	conn := client.conn
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		client.session.Touch()
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Warn("websocket read failed", map[string]interface{}{
					"session": client.session.ID,
					"error":   err.Error(),
				})
			}
			return
		}
		client.session.Touch()

		if msg.Type != "action" {
			client.SendError(apperrors.NewValidationError("unsupported message type "+msg.Type, nil))
			continue
		}

		if msg.Action.IsGenerate() {
			h.generateInBackground(client.session, client.SendError)
			continue
		}

		action, err := msg.Action.ToAction()
		if err != nil {
			client.SendError(err)
			continue
		}
		// 成功的结果经由订阅推送
		if _, err := h.Sessions.Dispatch(context.Background(), client.session.ID, action); err != nil {
			client.SendError(err)
		}
	}
}
