package spectate

import (
	"context"
	"image/color"
	"sync/atomic"
	"time"

	"github.com/Garsondee/Arena-Skirmish/internal/game"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const (
	broadcastBuffer = 1024
	clientBuffer    = 256
)

type outbound struct {
	to    *client // nil broadcasts
	data  []byte
	frame bool
}

// Hub fans battle output out to every connected client. It implements
// game.Presenter; presenter calls never block the simulation, and messages
// are dropped when the hub falls behind.
type Hub struct {
	register   chan *client
	unregister chan *client
	out        chan outbound
	clients    map[*client]bool
	lastFrame  []byte
	done       chan struct{}

	log     *zap.Logger
	dropped atomic.Int64
}

// NewHub creates an idle hub. Call Run to start delivering.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		out:        make(chan outbound, broadcastBuffer),
		clients:    make(map[*client]bool),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Dropped reports how many messages were discarded because the hub was full.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// Run delivers messages until ctx is cancelled, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.log.Debug("spectator joined", zap.String("client", c.id), zap.Int("clients", len(h.clients)))
			if h.lastFrame != nil {
				h.deliver(c, h.lastFrame)
			}

		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
				h.log.Debug("spectator left", zap.String("client", c.id), zap.Int("clients", len(h.clients)))
			}

		case m := <-h.out:
			if m.frame {
				h.lastFrame = m.data
			}
			if m.to != nil {
				if h.clients[m.to] {
					h.deliver(m.to, m.data)
				}
				continue
			}
			for c := range h.clients {
				h.deliver(c, m.data)
			}
		}
	}
}

// deliver hands data to c, disconnecting it if its buffer is full.
func (h *Hub) deliver(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		delete(h.clients, c)
		close(c.send)
		h.log.Warn("spectator too slow, disconnected", zap.String("client", c.id))
	}
}

func (h *Hub) enqueue(m outbound) {
	select {
	case h.out <- m:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hub) publish(msg Message) {
	data, err := msgpack.Marshal(&msg)
	if err != nil {
		h.log.Error("encode message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	h.enqueue(outbound{data: data, frame: msg.Type == TypeFrame})
}

// reply sends msg to a single client.
func (h *Hub) reply(c *client, msg Message) {
	data, err := msgpack.Marshal(&msg)
	if err != nil {
		h.log.Error("encode reply", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	h.enqueue(outbound{to: c, data: data})
}

// --- game.Presenter ---

func (h *Hub) Frame(f game.Frame) {
	h.publish(Message{Type: TypeFrame, Frame: frameState(f)})
}

func (h *Hub) FloatingText(target game.Ref, text string, c color.RGBA) {
	h.publish(Message{Type: TypeText, Effect: &Effect{
		Target: refName(target),
		Text:   text,
		Color:  hex(c),
		From:   &Point{X: target.Pos.X, Y: target.Pos.Y},
	}})
}

func (h *Hub) Projectile(from, to game.Ref, c color.RGBA, flight time.Duration) {
	src, dst := point(from.Pos), point(to.Pos)
	h.publish(Message{Type: TypeProjectile, Effect: &Effect{
		Target:   refName(to),
		Color:    hex(c),
		From:     &src,
		To:       &dst,
		FlightMs: flight.Milliseconds(),
	}})
}

func (h *Hub) DeathEffect(pos game.Vec2) {
	p := point(pos)
	h.publish(Message{Type: TypeDeath, Effect: &Effect{From: &p}})
}

func (h *Hub) ObjectiveHealth(id game.ObjectiveID, percent float64) {
	h.publish(Message{Type: TypeObjective, Effect: &Effect{Objective: string(id), Percent: percent}})
}

func (h *Hub) Winner(team game.Team) {
	h.publish(Message{Type: TypeWinner, Winner: team.String()})
}
