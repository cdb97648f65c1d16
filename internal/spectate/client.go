package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Garsondee/Arena-Skirmish/internal/game"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	commandTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Commander applies client commands to the battle. *game.Runner satisfies it.
type Commander interface {
	Place(ctx context.Context, typeID string, team game.Team, pos game.Vec2) (game.UnitFrame, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Start(ctx context.Context) error
	Report(ctx context.Context) (game.Report, error)
}

// Command is one JSON message from a client.
//
//	{"type":"place","unit":"archer","x":120,"y":300}
//	{"type":"place","unit":"rogue","team":"red","x":700,"y":200}
//	{"type":"remove","id":"<uuid>"}
//	{"type":"start"}
//	{"type":"report"}
type Command struct {
	Type string  `json:"type"`
	Unit string  `json:"unit"`
	Team string  `json:"team"`
	ID   string  `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

var errUnknownCommand = errors.New("unknown command")

type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Handler upgrades requests to websocket spectators. Commands are applied
// through cmd; zone picks the team for placements that omit one.
func (h *Hub) Handler(cmd Commander, zone func(game.Vec2) game.Team) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn("websocket upgrade", zap.Error(err))
			return
		}
		c := &client{
			id:   uuid.NewString(),
			hub:  h,
			conn: conn,
			send: make(chan []byte, clientBuffer),
		}
		select {
		case h.register <- c:
		case <-h.done:
			conn.Close()
			return
		}
		go c.writePump()
		go c.readPump(cmd, zone)
	}
}

func (c *client) readPump(cmd Commander, zone func(game.Vec2) game.Team) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("spectator read", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
		var in Command
		if err := json.Unmarshal(message, &in); err != nil {
			c.hub.reply(c, Message{Type: TypeError, Error: "malformed command: " + err.Error()})
			continue
		}
		c.hub.reply(c, c.apply(cmd, zone, in))
	}
}

// apply runs one command and builds the reply.
func (c *client) apply(cmd Commander, zone func(game.Vec2) game.Team, in Command) Message {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	fail := func(err error) Message {
		return Message{Type: TypeError, Error: fmt.Sprintf("%s: %v", in.Type, err)}
	}

	switch strings.ToLower(in.Type) {
	case "place":
		pos := game.Vec2{X: in.X, Y: in.Y}
		team := zone(pos)
		if in.Team != "" {
			t, err := game.ParseTeam(in.Team)
			if err != nil {
				return fail(err)
			}
			team = t
		}
		uf, err := cmd.Place(ctx, in.Unit, team, pos)
		if err != nil {
			return fail(err)
		}
		us := unitState(uf)
		return Message{Type: TypeAck, Unit: &us}

	case "remove":
		id, err := uuid.Parse(in.ID)
		if err != nil {
			return fail(err)
		}
		if err := cmd.Remove(ctx, id); err != nil {
			return fail(err)
		}
		return Message{Type: TypeAck}

	case "start":
		if err := cmd.Start(ctx); err != nil {
			return fail(err)
		}
		return Message{Type: TypeAck}

	case "report":
		r, err := cmd.Report(ctx)
		if err != nil {
			return fail(err)
		}
		return Message{Type: TypeReport, Report: r.String()}

	default:
		return fail(fmt.Errorf("%w %q", errUnknownCommand, in.Type))
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
