package stream

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SkWeli/step-tracker/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func recv(t *testing.T, c *Client, within time.Duration) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(within):
		t.Fatalf("timeout waiting for message")
		return nil
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()
	client := hub.Register()
	defer hub.Unregister(client)

	hub.Broadcast([]byte("hello"))
	if msg := recv(t, client, 100*time.Millisecond); string(msg) != "hello" {
		t.Fatalf("unexpected message")
	}
}

func TestRegisterReplaysLatest(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()
	hub.Broadcast([]byte("one"))
	hub.Broadcast([]byte("two"))

	client := hub.Register()
	defer hub.Unregister(client)
	if msg := recv(t, client, 100*time.Millisecond); string(msg) != "two" {
		t.Fatalf("expected latest snapshot, got %q", msg)
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()
	client := hub.Register()
	hub.Unregister(client)
	hub.Unregister(client)
	if _, ok := <-client.Send; ok {
		t.Fatalf("expected channel closed")
	}
	if hub.Clients() != 0 {
		t.Fatalf("expected no clients")
	}
}

func TestPublishEncodesSnapshot(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()
	client := hub.Register()
	defer hub.Unregister(client)

	hub.Publish(session.Snapshot{RunID: "run-1", Seq: 4, State: session.State{StepCount: 12, Tracking: true}})

	var got struct {
		RunID string `json:"run_id"`
		Seq   uint64 `json:"seq"`
		State struct {
			StepCount       int64  `json:"step_count"`
			ElevationSource string `json:"elevation_source"`
			Tracking        bool   `json:"tracking"`
		} `json:"state"`
	}
	if err := json.Unmarshal(recv(t, client, 100*time.Millisecond), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "run-1" || got.Seq != 4 || got.State.StepCount != 12 || !got.State.Tracking {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.State.ElevationSource != "none" {
		t.Fatalf("unexpected elevation source %q", got.State.ElevationSource)
	}
}

func TestDecodeRelay(t *testing.T) {
	raw, _ := json.Marshal(envelope{Origin: "a", Payload: json.RawMessage(`{"x":1}`)})
	if _, ok := decodeRelay("a", string(raw)); ok {
		t.Fatalf("expected own echo dropped")
	}
	payload, ok := decodeRelay("b", string(raw))
	if !ok || string(payload) != `{"x":1}` {
		t.Fatalf("unexpected relay: %q %v", payload, ok)
	}
	if _, ok := decodeRelay("b", "not json"); ok {
		t.Fatalf("expected malformed message dropped")
	}
}

func TestHubRedisRelay(t *testing.T) {
	s := miniredis.RunT(t)
	clientA := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer clientA.Close()
	clientB := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer clientB.Close()

	hubA := NewHub(clientA)
	defer hubA.Close()
	hubB := NewHub(clientB)
	defer hubB.Close()

	wsA := hubA.Register()
	defer hubA.Unregister(wsA)
	wsB := hubB.Register()
	defer hubB.Unregister(wsB)

	// wait for both subscriptions to attach
	deadline := time.Now().Add(time.Second)
	for s.PubSubNumSub(redisChannel)[redisChannel] < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for redis subscriptions")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hubA.Broadcast([]byte(`{"seq":1}`))

	if msg := recv(t, wsA, 200*time.Millisecond); string(msg) != `{"seq":1}` {
		t.Fatalf("unexpected local message %q", msg)
	}
	if msg := recv(t, wsB, time.Second); string(msg) != `{"seq":1}` {
		t.Fatalf("unexpected relayed message %q", msg)
	}

	// hub A must not receive its own broadcast back from redis
	select {
	case msg := <-wsA.Send:
		t.Fatalf("unexpected echo %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer client.Close()

	hub := NewHub(client)
	defer hub.Close()
	ws := hub.Register()
	defer hub.Unregister(ws)

	hub.Broadcast([]byte("ping"))
	if msg := recv(t, ws, 100*time.Millisecond); string(msg) != "ping" {
		t.Fatalf("local delivery must not depend on redis")
	}
}
