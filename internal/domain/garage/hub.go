package garage

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const availabilityChannel = "garage:availability"

// AvailabilityUpdate is the message pushed to live subscribers whenever a
// booking changes a garage's free-slot count.
type AvailabilityUpdate struct {
	GarageID  uuid.UUID `json:"garage_id"`
	FreeSlots int       `json:"free_slots"`
	At        time.Time `json:"at"`
}

type subscriber struct {
	garageID uuid.UUID
	send     chan AvailabilityUpdate
}

// Hub fans availability updates out to websocket subscribers. Updates travel
// through a redis channel so every API instance sees bookings made on the
// others.
type Hub struct {
	rdb *redis.Client

	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[*subscriber]struct{}

	upgrader websocket.Upgrader
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rdb:         rdb,
		subscribers: make(map[uuid.UUID]map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Run consumes the redis channel and broadcasts to local subscribers.
// Blocks until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		<-ctx.Done()
		return
	}

	sub := h.rdb.Subscribe(ctx, availabilityChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var update AvailabilityUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				log.Warn().Err(err).Msg("malformed availability message")
				continue
			}
			h.broadcast(update)
		}
	}
}

// PublishAvailability pushes a fresh free-slot count. With redis configured
// the update goes through the shared channel; otherwise it stays local.
func (h *Hub) PublishAvailability(ctx context.Context, garageID uuid.UUID, freeSlots int) {
	update := AvailabilityUpdate{GarageID: garageID, FreeSlots: freeSlots, At: time.Now().UTC()}

	if h.rdb == nil {
		h.broadcast(update)
		return
	}

	payload, err := json.Marshal(update)
	if err != nil {
		return
	}
	if err := h.rdb.Publish(ctx, availabilityChannel, payload).Err(); err != nil {
		log.Warn().Err(err).Str("garage_id", garageID.String()).Msg("availability publish failed")
		h.broadcast(update)
	}
}

func (h *Hub) broadcast(update AvailabilityUpdate) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers[update.GarageID] {
		select {
		case sub.send <- update:
		default:
			// slow consumer, drop the update rather than block the hub
		}
	}
}

func (h *Hub) subscribe(garageID uuid.UUID) *subscriber {
	sub := &subscriber{garageID: garageID, send: make(chan AvailabilityUpdate, 8)}
	h.mu.Lock()
	if h.subscribers[garageID] == nil {
		h.subscribers[garageID] = make(map[*subscriber]struct{})
	}
	h.subscribers[garageID][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	if set, ok := h.subscribers[sub.garageID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subscribers, sub.garageID)
		}
	}
	h.mu.Unlock()
}

// ServeLive upgrades the request to a websocket and streams availability
// updates for one garage until the client disconnects.
func (h *Hub) ServeLive(w http.ResponseWriter, r *http.Request, garageID uuid.UUID) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := h.subscribe(garageID)
	defer func() {
		h.unsubscribe(sub)
		conn.Close()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case update := <-sub.send:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		}
	}
}
