package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/SkWeli/step-tracker/internal/session"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisChannel = "steptracker:state:broadcast"

// Hub pushes session snapshots to websocket clients. With redis configured,
// snapshots are also relayed to hubs in other processes.
type Hub struct {
	origin  string
	redis   *redis.Client
	clients map[*Client]struct{}
	last    []byte
	mu      sync.RWMutex

	outbox chan []byte
	stop   context.CancelFunc
	wg     sync.WaitGroup
}

type Client struct {
	Send chan []byte
}

// envelope tags relayed payloads so a hub can drop its own echoes.
type envelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		origin:  uuid.NewString(),
		redis:   redisClient,
		clients: map[*Client]struct{}{},
		stop:    cancel,
	}

	if redisClient != nil {
		h.outbox = make(chan []byte, 64)
		pubsub := redisClient.Subscribe(ctx, redisChannel)
		h.wg.Add(2)
		go h.publishRedis(ctx)
		go h.subscribeRedis(ctx, pubsub)
	}
	return h
}

// Register adds a client and primes it with the latest snapshot.
func (h *Hub) Register() *Client {
	client := &Client{Send: make(chan []byte, 64)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
	if h.last != nil {
		client.Send <- h.last
	}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
}

// Clients returns the number of registered clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast delivers payload to local clients and queues it for redis.
// It never blocks.
func (h *Hub) Broadcast(payload []byte) {
	h.deliver(payload)

	if h.outbox != nil {
		select {
		case h.outbox <- payload:
		default:
			log.Printf("redis outbox full, dropping snapshot")
		}
	}
}

// Publish is a session.Observer that broadcasts snapshots as JSON.
func (h *Hub) Publish(s session.Snapshot) {
	payload, err := json.Marshal(s)
	if err != nil {
		log.Printf("encode snapshot: %v", err)
		return
	}
	h.Broadcast(payload)
}

func (h *Hub) deliver(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = payload
	for client := range h.clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) publishRedis(ctx context.Context) {
	defer h.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-h.outbox:
			msg, err := json.Marshal(envelope{Origin: h.origin, Payload: payload})
			if err != nil {
				log.Printf("encode envelope: %v", err)
				continue
			}
			if err := h.redis.Publish(ctx, redisChannel, msg).Err(); err != nil {
				log.Printf("redis publish error: %v", err)
			}
		}
	}
}

func (h *Hub) subscribeRedis(ctx context.Context, pubsub *redis.PubSub) {
	defer h.wg.Done()
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			payload, remote := decodeRelay(h.origin, msg.Payload)
			if remote {
				h.deliver(payload)
			}
		}
	}
}

// decodeRelay unwraps a relayed message, reporting false for malformed
// messages and for echoes of this hub's own broadcasts.
func decodeRelay(origin, raw string) ([]byte, bool) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		log.Printf("redis relay decode error: %v", err)
		return nil, false
	}
	if env.Origin == origin || len(env.Payload) == 0 {
		return nil, false
	}
	return env.Payload, true
}

// Close stops the redis relay goroutines.
func (h *Hub) Close() {
	h.stop()
	h.wg.Wait()
}
