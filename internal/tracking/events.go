package tracking

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
)

// EventKind discriminates the event union. It matches the "type" tag on
// the wire.
type EventKind string

const (
	KindMouseMove    EventKind = "mouse_move"
	KindClick        EventKind = "click"
	KindClickRelease EventKind = "click_release"
	KindKeyPress     EventKind = "key_press"
	KindScroll       EventKind = "scroll"
	KindWindowFocus  EventKind = "window_focus"
)

// Modifier is a bitset of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModMeta
)

func (m Modifier) Has(flag Modifier) bool { return m&flag != 0 }

// Rect is an axis-aligned rectangle in source-screen pixels.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func (r Rect) CenterX() float64 { return float64(r.X) + float64(r.W)/2 }
func (r Rect) CenterY() float64 { return float64(r.Y) + float64(r.H)/2 }

// NearlyEqual reports whether the rectangles agree corner-for-corner
// within tol pixels. Minor UI chrome movement should not count as a
// window change.
func (r Rect) NearlyEqual(o Rect, tol int) bool {
	abs := func(v int) int {
		if v < 0 {
			return -v
		}
		return v
	}
	return abs(r.X-o.X) <= tol && abs(r.Y-o.Y) <= tol &&
		abs((r.X+r.W)-(o.X+o.W)) <= tol && abs((r.Y+r.H)-(o.Y+o.H)) <= tol
}

// Event is one input event from the recording. Fields beyond T are only
// meaningful for the kinds that carry them.
type Event struct {
	Kind      EventKind
	T         int64 // milliseconds from recording start
	X, Y      float64
	Button    string
	Key       string
	Modifiers Modifier
	DX, DY    float64
	Title     string
	Window    *Rect
}

// wireEvent is the JSONL representation.
type wireEvent struct {
	Type      string   `json:"type"`
	T         int64    `json:"t"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Button    string   `json:"button,omitempty"`
	Key       string   `json:"key,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
	DX        float64  `json:"dx,omitempty"`
	DY        float64  `json:"dy,omitempty"`
	Title     string   `json:"title,omitempty"`
	Rect      *Rect    `json:"rect,omitempty"`
}

func parseModifiers(names []string) Modifier {
	var m Modifier
	for _, n := range names {
		switch strings.ToLower(n) {
		case "ctrl", "control":
			m |= ModCtrl
		case "shift":
			m |= ModShift
		case "alt", "option":
			m |= ModAlt
		case "meta", "cmd", "super", "win":
			m |= ModMeta
		}
	}
	return m
}

func (w wireEvent) toEvent() (Event, error) {
	ev := Event{T: w.T}
	needPos := func() error {
		if w.X == nil || w.Y == nil {
			return fmt.Errorf("event %q at t=%d is missing coordinates", w.Type, w.T)
		}
		ev.X, ev.Y = *w.X, *w.Y
		return nil
	}
	switch w.Type {
	case string(KindMouseMove):
		ev.Kind = KindMouseMove
		return ev, needPos()
	case string(KindClick):
		ev.Kind = KindClick
		ev.Button = w.Button
		return ev, needPos()
	case string(KindClickRelease):
		ev.Kind = KindClickRelease
		ev.Button = w.Button
		return ev, needPos()
	case string(KindKeyPress):
		ev.Kind = KindKeyPress
		if w.Key == "" {
			return ev, fmt.Errorf("key_press at t=%d is missing key", w.T)
		}
		ev.Key = w.Key
		ev.Modifiers = parseModifiers(w.Modifiers)
		return ev, nil
	case string(KindScroll):
		ev.Kind = KindScroll
		ev.DX, ev.DY = w.DX, w.DY
		return ev, needPos()
	case string(KindWindowFocus):
		ev.Kind = KindWindowFocus
		ev.Title = w.Title
		ev.Window = w.Rect
		return ev, nil
	default:
		return ev, fmt.Errorf("unknown event type %q", w.Type)
	}
}

// DecodeEvents reads a JSONL event stream. Malformed lines are logged and
// skipped; the recording is still usable without them.
func DecodeEvents(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var w wireEvent
		if err := json.Unmarshal([]byte(raw), &w); err != nil {
			log.Warn().Int("line", line).Err(err).Msg("skipping malformed event line")
			continue
		}
		ev, err := w.toEvent()
		if err != nil {
			log.Warn().Int("line", line).Err(err).Msg("skipping invalid event")
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event stream: %w", err)
	}
	return events, nil
}

// Distance returns the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
