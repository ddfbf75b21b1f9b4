package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tomz197/birdtreats/internal/config"
	"github.com/tomz197/birdtreats/internal/game"
)

type constRand float64

func (r constRand) Float64() float64 { return float64(r) }

// recorder collects sent messages as decoded JSON objects.
type recorder struct {
	mu   sync.Mutex
	msgs []map[string]any
}

func (r *recorder) SendMessage(msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	r.mu.Lock()
	r.msgs = append(r.msgs, m)
	r.mu.Unlock()
	return nil
}

func (r *recorder) take() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.msgs
	r.msgs = nil
	return out
}

func (r *recorder) events(name EventName) int {
	n := 0
	for _, m := range r.take() {
		if m["type"] == string(MessageTypeEvent) && m["event"] == string(name) {
			n++
		}
	}
	return n
}

// fakeClock advances by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestRunner(tuning config.Tuning, rng float64, step time.Duration) (*Runner, *recorder) {
	rec := &recorder{}
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0), step: step}
	r := NewRunner(rec, RunnerOptions{Tuning: tuning, Rand: constRand(rng), Now: clock.now})
	return r, rec
}

func TestRunnerSendsFrameEachStep(t *testing.T) {
	r, rec := newTestRunner(config.DefaultTuning(), 0.9, 16*time.Millisecond)

	if err := r.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	msgs := rec.take()
	if len(msgs) != 1 || msgs[0]["type"] != "frame" {
		t.Fatalf("messages = %v, want one frame", msgs)
	}
	f := msgs[0]
	if f["state"] != "playing" || f["lives"] != 3.0 || f["level"] != 1.0 {
		t.Fatalf("frame = %v", f)
	}
	treats := f["treats"].([]any)
	if len(treats) != 1 {
		t.Fatalf("treats = %v, want the first spawn", treats)
	}
	if c := treats[0].(map[string]any)["color"]; c != "#ff0000" {
		t.Fatalf("treat colour = %v, want #ff0000", c)
	}
	if hw := f["field"].(map[string]any)["halfWidth"]; hw != 5.0 {
		t.Fatalf("halfWidth = %v, want 5", hw)
	}
}

func TestRunnerAppliesTarget(t *testing.T) {
	r, _ := newTestRunner(config.DefaultTuning(), 0.9, 16*time.Millisecond)

	r.HandleMessage([]byte(`{"type":"target","x":12}`))
	for i := 0; i < 300; i++ {
		r.Step()
	}

	if r.targetX != 5 {
		t.Fatalf("targetX = %v, want clamped to 5", r.targetX)
	}
	if x := r.Session().Snapshot(nil).Bird.Pos.X; x < 4.9 || x > 5 {
		t.Fatalf("bird x = %v, want near 5", x)
	}
}

func TestRunnerPauseAndRestart(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.FallSpeed = 1
	r, rec := newTestRunner(tuning, 0.99, time.Second)

	r.HandleMessage([]byte(`{"type":"pause"}`))
	r.Step()
	if r.Session().State() != game.StatePaused {
		t.Fatalf("state = %v, want paused", r.Session().State())
	}
	r.HandleMessage([]byte(`{"type":"restart"}`))
	r.Step()
	if r.Session().State() != game.StatePaused {
		t.Fatal("restart must only work after game over")
	}
	r.HandleMessage([]byte(`{"type":"pause"}`))
	rec.take()

	missed, over := 0, 0
	for i := 0; i < 200 && r.Session().State() != game.StateGameOver; i++ {
		r.Step()
		for _, m := range rec.take() {
			switch m["event"] {
			case string(EventMissed):
				missed++
			case string(EventGameOver):
				over++
				if m["score"] != 0.0 || m["level"] != 1.0 {
					t.Fatalf("game over event = %v", m)
				}
			}
		}
	}
	if missed != 2 || over != 1 {
		t.Fatalf("missed=%d gameover=%d, want 2 and 1", missed, over)
	}

	r.HandleMessage([]byte(`{"type":"restart"}`))
	r.Step()
	if r.Session().State() != game.StatePlaying || r.Session().Progression().Lives != 3 {
		t.Fatal("restart after game over did not start a fresh game")
	}
}

func TestRunnerCollectedEventFollowsFrame(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.FallSpeed = 1
	tuning.BobAmplitude = 0
	r, rec := newTestRunner(tuning, 0.5, 16*time.Millisecond)

	for i := 0; i < 10; i++ {
		r.Step()
		msgs := rec.take()
		for j, m := range msgs {
			if m["event"] == string(EventCollected) {
				if j == 0 || msgs[0]["type"] != "frame" {
					t.Fatal("event sent before the frame of its tick")
				}
				if m["x"] != 0.0 {
					t.Fatalf("collected at x=%v, want 0", m["x"])
				}
				return
			}
		}
	}
	t.Fatal("no collected event")
}

func TestRunnerRejectsBadMessages(t *testing.T) {
	r, rec := newTestRunner(config.DefaultTuning(), 0.5, time.Millisecond)

	tests := []struct {
		in   string
		code string
	}{
		{`not json`, "BAD_MESSAGE"},
		{`{"type":"target"}`, "MISSING_X"},
		{`{"type":"fly"}`, "UNKNOWN_MESSAGE_TYPE"},
	}
	for _, tt := range tests {
		r.HandleMessage([]byte(tt.in))
		msgs := rec.take()
		if len(msgs) != 1 || msgs[0]["code"] != tt.code {
			t.Errorf("HandleMessage(%s) sent %v, want error %s", tt.in, msgs, tt.code)
		}
	}
	if len(r.commands) != 0 {
		t.Fatalf("%d bad messages were queued", len(r.commands))
	}
}

func TestServerPage(t *testing.T) {
	srv := NewServer(context.Background(), config.DefaultTuning(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("GET / = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestServerStreamsFramesOverWebSocket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := NewServer(ctx, config.DefaultTuning(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	if err := ws.WriteJSON(ClientMessage{Type: MessageTypePause}); err != nil {
		t.Fatalf("write: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 30; i++ {
		var f FrameMessage
		if err := ws.ReadJSON(&f); err != nil {
			t.Fatalf("read: %v", err)
		}
		if f.Type == MessageTypeFrame && f.State == "paused" {
			return
		}
	}
	t.Fatal("never saw a paused frame")
}
