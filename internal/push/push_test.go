package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGateway struct {
	sent []Message
}

func (g *recordingGateway) Send(_ context.Context, msg Message) error {
	g.sent = append(g.sent, msg)
	return nil
}

func TestRouter(t *testing.T) {
	expo := &recordingGateway{}
	apns := &recordingGateway{}
	r := &Router{Expo: expo, APNs: apns}

	require.NoError(t, r.Send(context.Background(), Message{To: "ExponentPushToken[abc]"}))
	require.NoError(t, r.Send(context.Background(), Message{To: "a1b2c3d4e5f6"}))

	assert.Len(t, expo.sent, 1)
	assert.Len(t, apns.sent, 1)
	assert.Equal(t, "ExponentPushToken[abc]", expo.sent[0].To)
}

func TestExpoGateway(t *testing.T) {
	t.Run("posts the message and accepts ok tickets", func(t *testing.T) {
		var received Message
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":[{"status":"ok"}]}`))
		}))
		defer srv.Close()

		g := NewExpoGateway(srv.URL, time.Second)
		err := g.Send(context.Background(), Message{
			To:    "ExponentPushToken[abc]",
			Title: "Coffee run",
			Body:  "Casey is up for Coffee run nearby",
			Sound: "default",
		})
		require.NoError(t, err)
		assert.Equal(t, "ExponentPushToken[abc]", received.To)
		assert.Equal(t, "Coffee run", received.Title)
	})

	t.Run("reports error tickets", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"data":[{"status":"error","message":"DeviceNotRegistered"}]}`))
		}))
		defer srv.Close()

		g := NewExpoGateway(srv.URL, time.Second)
		err := g.Send(context.Background(), Message{To: "ExponentPushToken[gone]"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DeviceNotRegistered")
	})

	t.Run("reports non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		g := NewExpoGateway(srv.URL, time.Second)
		assert.Error(t, g.Send(context.Background(), Message{To: "ExponentPushToken[abc]"}))
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		g := NewExpoGateway(srv.URL, time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.Error(t, g.Send(ctx, Message{To: "ExponentPushToken[abc]"}))
	})
}
