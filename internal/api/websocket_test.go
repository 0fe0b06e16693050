package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialSession(t *testing.T, server *httptest.Server, sessionID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/sessions/" + sessionID
	return websocket.DefaultDialer.Dial(url, nil)
}

func readMessage(t *testing.T, conn *websocket.Conn) outboundMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg outboundMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read message: %v", err)
	}
	return msg
}

func TestSessionWebSocketPushesState(t *testing.T) {
	env := setupTestServer(t, "")
	server := httptest.NewServer(env.engine)
	defer server.Close()

	id := createSession(t, env)
	conn, _, err := dialSession(t, server, id)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	initial := readMessage(t, conn)
	if initial.Type != "state" || initial.Data == nil || len(initial.Data.Project.Scenes) != 2 {
		t.Fatalf("unexpected initial message %+v", initial)
	}

	if err := conn.WriteJSON(map[string]interface{}{
		"type":   "action",
		"action": map[string]interface{}{"type": "add_scene"},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Type != "state" || msg.Data == nil || len(msg.Data.Project.Scenes) != 3 {
		t.Fatalf("expected 3 scenes after add, got %+v", msg)
	}
	if msg.Data.Version <= initial.Data.Version {
		t.Fatalf("expected version to advance: %d -> %d", initial.Data.Version, msg.Data.Version)
	}

	if err := conn.WriteJSON(map[string]interface{}{
		"type":   "action",
		"action": map[string]interface{}{"type": "update_scene", "index": 7, "field": "text_hi", "value": "x"},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	errMsg := readMessage(t, conn)
	if errMsg.Type != "error" || errMsg.Code != ErrorSceneIndexInvalid {
		t.Fatalf("expected index error, got %+v", errMsg)
	}
}

func TestSessionWebSocketRejectsUnknownMessages(t *testing.T) {
	env := setupTestServer(t, "")
	server := httptest.NewServer(env.engine)
	defer server.Close()

	id := createSession(t, env)
	conn, _, err := dialSession(t, server, id)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readMessage(t, conn)

	conn.WriteJSON(map[string]interface{}{"type": "chat"})
	msg := readMessage(t, conn)
	if msg.Type != "error" || msg.Code != ErrorSceneInvalid {
		t.Fatalf("expected validation error, got %+v", msg)
	}

	conn.WriteJSON(map[string]interface{}{
		"type":   "action",
		"action": map[string]interface{}{"type": "shuffle"},
	})
	msg = readMessage(t, conn)
	if msg.Type != "error" || !strings.Contains(msg.Error, "shuffle") {
		t.Fatalf("expected unknown action error, got %+v", msg)
	}
}

func TestSessionWebSocketRejectsCrossOrigin(t *testing.T) {
	env := setupTestServer(t, "")
	server := httptest.NewServer(env.engine)
	defer server.Close()

	id := createSession(t, env)
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/sessions/" + id
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://evil.example"}})
	if err == nil {
		t.Fatal("expected cross-origin handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %+v", resp)
	}
}

func TestSessionWebSocketUnknownSession(t *testing.T) {
	env := setupTestServer(t, "")
	server := httptest.NewServer(env.engine)
	defer server.Close()

	_, resp, err := dialSession(t, server, "missing")
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}
