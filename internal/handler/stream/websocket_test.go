package stream

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naomedical/translator/backend/internal/model/conversation"
)

type socketFrame struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) socketFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame socketFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func dialPanel(t *testing.T, baseURL, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(baseURL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPanelSocketSendAndTranslate(t *testing.T) {
	srv, registry, rl := setupServer(t)
	conn := dialPanel(t, srv.URL, "/sessions/default/panels/doctor/ws")

	snapshot := readFrame(t, conn)
	require.Equal(t, "snapshot", snapshot.Type)
	assert.Equal(t, "default", snapshot.SessionID)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "send",
		"data": SendMessage{Text: "How are you feeling?", IsAudio: true},
	}))

	appended := readFrame(t, conn)
	require.Equal(t, "message", appended.Type)
	var update messagePayload
	require.NoError(t, json.Unmarshal(appended.Data, &update))
	assert.Equal(t, "How are you feeling?", update.Message.Text)
	assert.True(t, update.Message.Own)
	assert.True(t, update.Message.IsAudio)

	patched := readFrame(t, conn)
	require.Equal(t, "message", patched.Type)
	require.NoError(t, json.Unmarshal(patched.Data, &update))
	assert.Equal(t, conversation.StateTranslated, update.Message.TranslationState)

	rl.Wait()
	store, err := registry.Open(context.Background(), "default")
	require.NoError(t, err)
	msgs := store.Snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, conversation.RoleDoctor, msgs[0].Sender)
	assert.Equal(t, "[patient] How are you feeling?", msgs[0].TranslatedText())
}

func TestPanelSocketRejectsUnknownType(t *testing.T) {
	srv, _, _ := setupServer(t)
	conn := dialPanel(t, srv.URL, "/sessions/default/panels/patient/ws")
	require.Equal(t, "snapshot", readFrame(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "config"}))
	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame.Type)
	assert.Contains(t, string(frame.Data), "unsupported message type")
}

func TestPanelSocketClosedOnShutdown(t *testing.T) {
	srv, registry, rl := setupServer(t)
	conn := dialPanel(t, srv.URL, "/sessions/default/panels/doctor/ws")
	require.Equal(t, "snapshot", readFrame(t, conn).Type)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Config.Shutdown(shutdownCtx))
	rl.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame socketFrame
	err := conn.ReadJSON(&frame)
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "unexpected error: %v", err)

	_ = conn.WriteJSON(map[string]any{
		"type": "send",
		"data": SendMessage{Text: "after shutdown"},
	})

	store, err := registry.Open(context.Background(), "default")
	require.NoError(t, err)
	assert.Zero(t, store.Len())
}
