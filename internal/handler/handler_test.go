package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"chatrelay/internal/app/chat"
	"chatrelay/internal/app/user"
	"chatrelay/internal/configs"
)

func newTestServer(t *testing.T) (*httptest.Server, *user.Registry) {
	t.Helper()

	registry := user.NewRegistry()
	hub := chat.NewHub(registry, chat.NewFilter())
	t.Cleanup(hub.Shutdown)

	router := Router(&AppDeps{
		Hub:      hub,
		Registry: registry,
		Config:   &configs.AppConfig{Environment: "development", Port: 4444, AllowedOrigin: "http://localhost:4200"},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, registry
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := strings.Replace(srv.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func writeEvent(t *testing.T, conn *websocket.Conn, kind chat.EventKind, payload any) {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal %s payload: %v", kind, err)
	}

	if err := conn.WriteJSON(chat.Envelope{Event: kind, Payload: body}); err != nil {
		t.Fatalf("write %s event: %v", kind, err)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) chat.Envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var env chat.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read frame: %v", err)
	}

	return env
}

// joinRoom drives the Join handshake and returns the connection id from the ack.
func joinRoom(t *testing.T, conn *websocket.Conn, username, room string) string {
	t.Helper()

	writeEvent(t, conn, chat.EventJoin, chat.JoinPayload{Username: username, Room: room})

	for {
		env := readEnvelope(t, conn)
		if env.Event != chat.EventJoinAck {
			continue
		}

		var ack chat.JoinAck
		if err := json.Unmarshal(env.Payload, &ack); err != nil {
			t.Fatalf("unmarshal JoinAck: %v", err)
		}
		if ack.Error != "" {
			t.Fatalf("join failed: %s", ack.Error)
		}
		return ack.ID
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var body struct {
		Code int               `json:"code"`
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != 0 || body.Data["status"] != "ok" {
		t.Errorf("body = %+v, want code 0 and status ok", body)
	}
}

func TestWebSocketJoinFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dialWS(t, srv)

	writeEvent(t, conn, chat.EventJoin, chat.JoinPayload{Username: "alice", Room: "lobby"})

	// welcome message, roster, ack - in dispatch order
	env := readEnvelope(t, conn)
	if env.Event != chat.EventMessage {
		t.Fatalf("first frame = %s, want %s", env.Event, chat.EventMessage)
	}
	var welcome chat.ChatMessage
	if err := json.Unmarshal(env.Payload, &welcome); err != nil {
		t.Fatalf("unmarshal welcome: %v", err)
	}
	if welcome.Sender != chat.AdminSender || welcome.Text != "Welcome!" {
		t.Errorf("welcome = %+v, want Admin / Welcome!", welcome)
	}

	env = readEnvelope(t, conn)
	if env.Event != chat.EventRoomData {
		t.Fatalf("second frame = %s, want %s", env.Event, chat.EventRoomData)
	}
	var roster chat.RoomData
	if err := json.Unmarshal(env.Payload, &roster); err != nil {
		t.Fatalf("unmarshal roster: %v", err)
	}
	if roster.Room != "lobby" || len(roster.Users) != 1 {
		t.Errorf("roster = %+v, want lobby with one user", roster)
	}

	env = readEnvelope(t, conn)
	if env.Event != chat.EventJoinAck {
		t.Fatalf("third frame = %s, want %s", env.Event, chat.EventJoinAck)
	}
	var ack chat.JoinAck
	if err := json.Unmarshal(env.Payload, &ack); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	if ack.ID == "" || ack.Error != "" {
		t.Errorf("ack = %+v, want id set and no error", ack)
	}
}

func TestWebSocketMessageRelay(t *testing.T) {
	srv, _ := newTestServer(t)

	alice := dialWS(t, srv)
	bob := dialWS(t, srv)

	joinRoom(t, alice, "alice", "lobby")
	bobID := joinRoom(t, bob, "bob", "lobby")

	writeEvent(t, bob, chat.EventMessage, chat.MessagePayload{ID: bobID, Message: "hello from bob"})

	// alice skips bob's join announcement and roster update, then sees the chat text
	for {
		env := readEnvelope(t, alice)
		if env.Event != chat.EventMessage {
			continue
		}

		var msg chat.ChatMessage
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			t.Fatalf("unmarshal message: %v", err)
		}
		if msg.Sender == chat.AdminSender {
			continue
		}

		if msg.Sender != "bob" || msg.Text != "hello from bob" {
			t.Errorf("relayed message = %+v, want bob / hello from bob", msg)
		}
		return
	}
}

func TestRoomUsersEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	conn := dialWS(t, srv)
	joinRoom(t, conn, "alice", "Lobby")

	res, err := http.Get(srv.URL + "/api/rooms/lobby/users")
	if err != nil {
		t.Fatalf("GET roster: %v", err)
	}
	defer res.Body.Close()

	var body struct {
		Code int `json:"code"`
		Data struct {
			Room  string      `json:"room"`
			Users []user.User `json:"users"`
		} `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body.Data.Room != "lobby" {
		t.Errorf("room = %q, want %q", body.Data.Room, "lobby")
	}
	if len(body.Data.Users) != 1 || body.Data.Users[0].Username != "alice" {
		t.Errorf("users = %+v, want [alice]", body.Data.Users)
	}
}

func TestRoomUsersEndpointEmptyRoom(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/api/rooms/nowhere/users")
	if err != nil {
		t.Fatalf("GET roster: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var body struct {
		Data struct {
			Users []user.User `json:"users"`
		} `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Data.Users) != 0 {
		t.Errorf("users = %+v, want empty", body.Data.Users)
	}
}
