package recording

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vedantwpatil/FocusFrame/internal/tracking"
)

// Error kinds surfaced to the job caller.
var (
	// ErrInputInvalid marks unusable required artifacts: meta, dimensions,
	// frame count.
	ErrInputInvalid = errors.New("recording input invalid")
	// ErrAssetMissing marks a referenced frame that is absent on disk.
	ErrAssetMissing = errors.New("recording asset missing")
)

// Artifact file names inside a recording directory.
const (
	metaFile         = "meta.json"
	eventsFile       = "events.jsonl"
	windowEventsFile = "window_events.jsonl"
	frameCountFile   = "frame_count.txt"
	dimensionsFile   = "dimensions.txt"
	framesDir        = "frames"
)

// Meta is the recording manifest written by the capture side.
type Meta struct {
	Version      int    `json:"version"`
	ID           string `json:"id"`
	ScreenWidth  int    `json:"screen_width"`
	ScreenHeight int    `json:"screen_height"`
	FPS          int    `json:"fps"`
	DurationMs   int64  `json:"duration_ms"`
	HasAudio     bool   `json:"has_audio"`
	RecordingDir string `json:"recording_dir"`
}

// Recording is one loaded recording: manifest, events, and access to the
// frame images. Events are immutable after load.
type Recording struct {
	Dir        string
	Meta       Meta
	Events     []tracking.Event
	FrameCount int
	Width      int
	Height     int
}

// Load reads every artifact of a recording directory. Window focus
// events, when present, are merged into the main event stream in
// timestamp order.
func Load(dir string) (*Recording, error) {
	rec := &Recording{Dir: dir}

	metaData, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInputInvalid, metaFile, err)
	}
	if err := json.Unmarshal(metaData, &rec.Meta); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInputInvalid, metaFile, err)
	}
	if rec.Meta.DurationMs <= 0 {
		return nil, fmt.Errorf("%w: meta duration_ms %d", ErrInputInvalid, rec.Meta.DurationMs)
	}

	rec.Width, rec.Height, err = readDimensions(filepath.Join(dir, dimensionsFile))
	if err != nil {
		return nil, err
	}

	rec.FrameCount, err = readFrameCount(filepath.Join(dir, frameCountFile))
	if err != nil {
		return nil, err
	}

	events, err := readEvents(filepath.Join(dir, eventsFile))
	if err != nil {
		return nil, err
	}

	// window_events.jsonl is optional.
	windowPath := filepath.Join(dir, windowEventsFile)
	if _, statErr := os.Stat(windowPath); statErr == nil {
		windowEvents, err := readEvents(windowPath)
		if err != nil {
			return nil, err
		}
		events = mergeByTime(events, windowEvents)
	}
	rec.Events = events

	log.Debug().
		Str("recording", rec.Meta.ID).
		Int("frames", rec.FrameCount).
		Int("events", len(rec.Events)).
		Msg("loaded recording artifacts")
	return rec, nil
}

func readDimensions(path string) (int, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: reading %s: %v", ErrInputInvalid, dimensionsFile, err)
	}
	parts := strings.Split(strings.TrimSpace(string(data)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: dimensions %q", ErrInputInvalid, strings.TrimSpace(string(data)))
	}
	w, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: dimensions %q", ErrInputInvalid, strings.TrimSpace(string(data)))
	}
	return w, h, nil
}

func readFrameCount(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: reading %s: %v", ErrInputInvalid, frameCountFile, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: frame count %q", ErrInputInvalid, strings.TrimSpace(string(data)))
	}
	return n, nil
}

func readEvents(path string) ([]tracking.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// A recording with no events is still renderable.
			return nil, nil
		}
		return nil, fmt.Errorf("%w: opening %s: %v", ErrInputInvalid, filepath.Base(path), err)
	}
	defer f.Close()
	events, err := tracking.DecodeEvents(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInputInvalid, filepath.Base(path), err)
	}
	return events, nil
}

// mergeByTime interleaves two already-sorted event lists, preserving the
// relative order of simultaneous events.
func mergeByTime(a, b []tracking.Event) []tracking.Event {
	out := make([]tracking.Event, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if b[j].T < a[i].T {
			out = append(out, b[j])
			j++
			continue
		}
		out = append(out, a[i])
		i++
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// FramePath returns the on-disk path of output frame index i (0-based;
// files are 1-based).
func (r *Recording) FramePath(i int) string {
	return filepath.Join(r.Dir, framesDir, fmt.Sprintf("frame_%08d.png", i+1))
}

// Frame decodes frame i. A missing frame is fatal to the job.
func (r *Recording) Frame(i int) (image.Image, error) {
	path := r.FramePath(i)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrAssetMissing, path)
		}
		return nil, fmt.Errorf("failed to open frame %d: %w", i, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrAssetMissing, path, err)
	}
	return img, nil
}

// FrameTimestamp derives the effective timestamp of output frame i from
// the real recording duration. The nominal fps in the manifest is only
// advisory; actual capture rates drift.
func (r *Recording) FrameTimestamp(i int) int64 {
	return int64(i) * r.Meta.DurationMs / int64(r.FrameCount)
}

// FrameTimestamps returns every frame timestamp in order.
func (r *Recording) FrameTimestamps() []int64 {
	out := make([]int64, r.FrameCount)
	for i := range out {
		out[i] = r.FrameTimestamp(i)
	}
	return out
}

// EffectiveFPS is the real average capture rate derived from frame count
// and duration.
func (r *Recording) EffectiveFPS() float64 {
	return float64(r.FrameCount) / (float64(r.Meta.DurationMs) / 1000)
}
