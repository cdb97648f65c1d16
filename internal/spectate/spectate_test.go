package spectate

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Garsondee/Arena-Skirmish/internal/game"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

var _ game.Presenter = (*Hub)(nil)
var _ Commander = (*game.Runner)(nil)

type liveServer struct {
	cfg    game.Config
	hub    *Hub
	runner *game.Runner
	srv    *httptest.Server
	url    string
}

func startServer(t *testing.T) *liveServer {
	t.Helper()
	cfg := game.DefaultConfig()
	cfg.TickRate = 500
	cfg.Objectives.HP = 25
	cfg.Seed = 3

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	b := game.NewBattle(cfg, nil, game.WithPresenter(hub), game.WithHitRoll(func() float64 { return 0 }))
	r := game.NewRunner(b)
	go func() { _ = r.Run(ctx) }()

	srv := httptest.NewServer(hub.Handler(r, cfg.ZoneFor))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &liveServer{
		cfg:    cfg,
		hub:    hub,
		runner: r,
		srv:    srv,
		url:    "ws" + strings.TrimPrefix(srv.URL, "http"),
	}
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, cmd string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(cmd)); err != nil {
		t.Fatalf("write %s: %v", cmd, err)
	}
}

// readUntil decodes messages until match returns true.
func readUntil(t *testing.T, conn *websocket.Conn, match func(Message) bool) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if kind != websocket.BinaryMessage {
			t.Fatalf("message kind = %d, want binary", kind)
		}
		var m Message
		if err := msgpack.Unmarshal(data, &m); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if match(m) {
			return m
		}
	}
}

func ofType(typ string) func(Message) bool {
	return func(m Message) bool { return m.Type == typ }
}

func TestSpectate_PlayMatchOverWebsocket(t *testing.T) {
	ls := startServer(t)
	conn := dial(t, ls.url)

	send(t, conn, `{"type":"place","unit":"rogue","team":"blue","x":900,"y":300}`)
	ack := readUntil(t, conn, ofType(TypeAck))
	if ack.Unit == nil || ack.Unit.Label != "B1" || ack.Unit.Team != "blue" || ack.Unit.Type != "rogue" {
		t.Fatalf("place ack = %+v", ack.Unit)
	}

	// No team: the click zone decides.
	send(t, conn, `{"type":"place","unit":"warrior","x":100,"y":200}`)
	ack = readUntil(t, conn, ofType(TypeAck))
	if ack.Unit == nil || ack.Unit.Label != "B2" || ack.Unit.Team != "blue" {
		t.Fatalf("zone place ack = %+v", ack.Unit)
	}

	send(t, conn, `{"type":"dance"}`)
	if m := readUntil(t, conn, ofType(TypeError)); !strings.Contains(m.Error, "unknown command") {
		t.Errorf("error = %q", m.Error)
	}

	send(t, conn, `{"type":"report"}`)
	if m := readUntil(t, conn, ofType(TypeReport)); !strings.Contains(m.Report, "not_started") {
		t.Errorf("report = %q", m.Report)
	}

	send(t, conn, `{"type":"start"}`)
	readUntil(t, conn, ofType(TypeAck))

	var shots, objective int
	win := readUntil(t, conn, func(m Message) bool {
		switch m.Type {
		case TypeProjectile:
			shots++
			if m.Effect.Color != "#00ffff" {
				t.Errorf("blue projectile colour = %s", m.Effect.Color)
			}
			if m.Effect.FlightMs != 200 {
				t.Errorf("flight = %dms", m.Effect.FlightMs)
			}
		case TypeObjective:
			objective++
			if m.Effect.Objective != "B" {
				t.Errorf("objective update for %s", m.Effect.Objective)
			}
		}
		return m.Type == TypeWinner
	})
	if win.Winner != "blue" {
		t.Errorf("winner = %q, want blue", win.Winner)
	}
	if shots == 0 || objective == 0 {
		t.Errorf("saw %d projectiles and %d objective updates before the win", shots, objective)
	}

	// The finished match still answers commands.
	send(t, conn, `{"type":"report"}`)
	if m := readUntil(t, conn, ofType(TypeReport)); !strings.Contains(m.Report, "blue_victory") {
		t.Errorf("report after win = %q", m.Report)
	}
	send(t, conn, `{"type":"place","unit":"mage","team":"red","x":800,"y":300}`)
	if m := readUntil(t, conn, ofType(TypeError)); !strings.Contains(m.Error, game.ErrMatchStarted.Error()) {
		t.Errorf("place after win error = %q", m.Error)
	}
}

func TestSpectate_LateJoinerGetsLastFrame(t *testing.T) {
	ls := startServer(t)
	first := dial(t, ls.url)
	send(t, first, `{"type":"place","unit":"mage","team":"red","x":700,"y":250}`)
	readUntil(t, first, ofType(TypeAck))

	late := dial(t, ls.url)
	m := readUntil(t, late, ofType(TypeFrame))
	if m.Frame.State != "idle" || len(m.Frame.Units) != 1 {
		t.Fatalf("late frame = %+v", m.Frame)
	}
	u := m.Frame.Units[0]
	if u.Label != "R1" || u.Type != "mage" || u.HP != 70 || u.Pos != (Point{X: 700, Y: 250}) {
		t.Errorf("unit = %+v", u)
	}
	if len(m.Frame.Objectives) != 2 || m.Frame.Objectives[1].ID != "B" || m.Frame.Objectives[1].Percent != 100 {
		t.Errorf("objectives = %+v", m.Frame.Objectives)
	}
}

func TestSpectate_RemoveByID(t *testing.T) {
	ls := startServer(t)
	conn := dial(t, ls.url)
	send(t, conn, `{"type":"place","unit":"archer","team":"red","x":800,"y":100}`)
	ack := readUntil(t, conn, ofType(TypeAck))

	send(t, conn, `{"type":"remove","id":"`+ack.Unit.ID+`"}`)
	readUntil(t, conn, ofType(TypeAck))
	send(t, conn, `{"type":"remove","id":"`+ack.Unit.ID+`"}`)
	if m := readUntil(t, conn, ofType(TypeError)); !strings.Contains(m.Error, game.ErrUnitNotFound.Error()) {
		t.Errorf("second remove error = %q", m.Error)
	}

	f, err := ls.runner.Snapshot(context.Background())
	if err != nil || len(f.Units) != 0 {
		t.Errorf("snapshot after remove = %+v, %v", f.Units, err)
	}
}

// fakeCommander records calls without a running battle.
type fakeCommander struct {
	placed  []game.Team
	started bool
	err     error
}

func (f *fakeCommander) Place(_ context.Context, typeID string, team game.Team, pos game.Vec2) (game.UnitFrame, error) {
	if f.err != nil {
		return game.UnitFrame{}, f.err
	}
	f.placed = append(f.placed, team)
	return game.UnitFrame{ID: uuid.New(), Label: "X", Team: team, TypeID: typeID, Pos: pos}, nil
}

func (f *fakeCommander) Remove(context.Context, uuid.UUID) error { return f.err }

func (f *fakeCommander) Start(context.Context) error {
	f.started = true
	return f.err
}

func (f *fakeCommander) Report(context.Context) (game.Report, error) { return game.Report{}, f.err }

func TestSpectate_ApplyCommands(t *testing.T) {
	cfg := game.DefaultConfig()
	c := &client{hub: NewHub(nil)}
	fc := &fakeCommander{}

	tests := []struct {
		in      Command
		wantTyp string
		wantErr string
	}{
		{in: Command{Type: "place", Unit: "rogue", X: 100, Y: 10}, wantTyp: TypeAck},
		{in: Command{Type: "PLACE", Unit: "rogue", X: 900, Y: 10}, wantTyp: TypeAck},
		{in: Command{Type: "place", Unit: "rogue", Team: "2", X: 100, Y: 10}, wantTyp: TypeAck},
		{in: Command{Type: "place", Unit: "rogue", Team: "green"}, wantTyp: TypeError, wantErr: "place:"},
		{in: Command{Type: "remove", ID: "not-a-uuid"}, wantTyp: TypeError, wantErr: "remove:"},
		{in: Command{Type: "start"}, wantTyp: TypeAck},
		{in: Command{Type: ""}, wantTyp: TypeError, wantErr: "unknown command"},
	}
	for _, tt := range tests {
		m := c.apply(fc, cfg.ZoneFor, tt.in)
		if m.Type != tt.wantTyp {
			t.Errorf("%+v: type = %s (%s), want %s", tt.in, m.Type, m.Error, tt.wantTyp)
		}
		if tt.wantErr != "" && !strings.Contains(m.Error, tt.wantErr) {
			t.Errorf("%+v: error = %q, want %q", tt.in, m.Error, tt.wantErr)
		}
	}

	want := []game.Team{game.TeamBlue, game.TeamRed, game.TeamRed}
	if len(fc.placed) != len(want) {
		t.Fatalf("placed teams = %v", fc.placed)
	}
	for i := range want {
		if fc.placed[i] != want[i] {
			t.Errorf("placement %d team = %s, want %s", i, fc.placed[i], want[i])
		}
	}
	if !fc.started {
		t.Error("start not forwarded")
	}

	fc.err = game.ErrMatchStarted
	m := c.apply(fc, cfg.ZoneFor, Command{Type: "start"})
	if m.Type != TypeError || !strings.Contains(m.Error, game.ErrMatchStarted.Error()) {
		t.Errorf("start after start = %+v", m)
	}
}
