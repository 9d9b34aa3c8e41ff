package sse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"goa.design/agui/protocol"
)

func TestStreamRoundTrip(t *testing.T) {
	script := []protocol.Event{
		protocol.NewRunStarted("T1", "R1"),
		protocol.NewTextMessageStart("M1", protocol.RoleAssistant),
		protocol.NewTextMessageContent("M1", "Hi "),
		protocol.NewTextMessageContent("M1", "there"),
		protocol.NewTextMessageEnd("M1"),
		protocol.NewRunFinished("T1", "R1"),
	}

	handler := NewHandler(func(*http.Request) (<-chan protocol.Event, error) {
		ch := make(chan protocol.Event, len(script))
		for _, e := range script {
			ch <- e
		}
		close(ch)
		return ch, nil
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	client := NewClient(server.URL)
	events, errs, err := client.Stream(context.Background())
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

func TestStreamContentType(t *testing.T) {
	handler := NewHandler(func(*http.Request) (<-chan protocol.Event, error) {
		ch := make(chan protocol.Event)
		close(ch)
		return ch, nil
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
}

func TestClientDropsUndecodableFrames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: not json at all\n\n")
		fmt.Fprint(w, `data: {"type":"NOT_A_THING"}`+"\n\n")
		fmt.Fprint(w, `data: {"type":"STEP_STARTED","stepName":"plan"}`+"\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	events, errs, err := client.Stream(context.Background())
	require.NoError(t, err)

	var got []protocol.EventType
	for event := range events {
		got = append(got, event.Kind())
	}
	require.NoError(t, <-errs)
	require.Equal(t, []protocol.EventType{protocol.EventStepStarted}, got)
}

func TestClientRejectsWrongContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, "{}")
	}))
	defer server.Close()

	_, _, err := NewClient(server.URL).Stream(context.Background())
	require.Error(t, err)
}

func TestClientRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, _, err := NewClient(server.URL).Stream(context.Background())
	require.Error(t, err)
}

func TestHandlerSourceFailure(t *testing.T) {
	handler := NewHandler(func(*http.Request) (<-chan protocol.Event, error) {
		return nil, fmt.Errorf("no such run")
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
	client := NewClient(server.URL)
	events, _, err := client.Stream(ctx)
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
