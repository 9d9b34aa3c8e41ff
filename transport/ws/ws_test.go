package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"goa.design/agui/protocol"
)

func wsURL(t *testing.T, server *httptest.Server) string {
	t.Helper()
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func scriptSource(script []protocol.Event) Source {
	return func(*http.Request) (<-chan protocol.Event, error) {
		ch := make(chan protocol.Event, len(script))
		for _, e := range script {
			ch <- e
		}
		close(ch)
		return ch, nil
	}
}

func TestStreamRoundTrip(t *testing.T) {
	script := []protocol.Event{
		protocol.NewRunStarted("T1", "R1"),
		protocol.NewToolCallStart("C1", "get_weather"),
		protocol.NewToolCallArgs("C1", `{"location":"Paris"}`),
		protocol.NewToolCallEnd("C1"),
		protocol.NewRunFinished("T1", "R1"),
	}
	server := httptest.NewServer(NewHandler(scriptSource(script)))
	defer server.Close()

	events, errs, err := NewClient().Stream(context.Background(), wsURL(t, server))
	require.NoError(t, err)

	var got []protocol.EventType
	for event := range events {
		got = append(got, event.Kind())
	}
	require.NoError(t, <-errs)

	want := make([]protocol.EventType, len(script))
	for i, e := range script {
		want[i] = e.Kind()
	}
	require.Equal(t, want, got)
}

func TestBinaryFrames(t *testing.T) {
	script := []protocol.Event{protocol.NewStepStarted("plan")}
	server := httptest.NewServer(NewHandler(scriptSource(script), WithBinaryFrames()))
	defer server.Close()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(t, server), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	messageType, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, messageType)
	require.Contains(t, string(payload), `"STEP_STARTED"`)
}

func TestClientDropsUndecodableFrames(t *testing.T) {
	upgrader := &websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"STEP_FINISHED","stepName":"plan"}`)))
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	}))
	defer server.Close()

	events, errs, err := NewClient().Stream(context.Background(), wsURL(t, server))
	require.NoError(t, err)

	var got []protocol.EventType
	for event := range events {
		got = append(got, event.Kind())
	}
	require.NoError(t, <-errs)
	require.Equal(t, []protocol.EventType{protocol.EventStepFinished}, got)
}

func TestHandlerSourceFailure(t *testing.T) {
	handler := NewHandler(func(*http.Request) (<-chan protocol.Event, error) {
		return nil, http.ErrAbortHandler
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestClientCancellation(t *testing.T) {
	release := make(chan struct{})
	handler := NewHandler(func(*http.Request) (<-chan protocol.Event, error) {
		ch := make(chan protocol.Event)
		go func() {
			<-release
			close(ch)
		}()
		return ch, nil
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	events, _, err := NewClient().Stream(ctx, wsURL(t, server))
	require.NoError(t, err)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, open := <-events:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
