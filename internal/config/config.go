package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// AnimationSpeed selects how aggressively the camera moves. Each preset
// scales every spring half-life by its factor.
type AnimationSpeed string

const (
	SpeedSlow   AnimationSpeed = "slow"
	SpeedMellow AnimationSpeed = "mellow"
	SpeedQuick  AnimationSpeed = "quick"
	SpeedRapid  AnimationSpeed = "rapid"
)

// Factor returns the half-life multiplier for the preset. Unknown values
// fall back to Mellow.
func (s AnimationSpeed) Factor() float64 {
	switch s {
	case SpeedSlow:
		return 1.5
	case SpeedMellow:
		return 1.0
	case SpeedQuick:
		return 0.7
	case SpeedRapid:
		return 0.5
	default:
		return 1.0
	}
}

// RecordingMode describes what was captured. Overview zoom-outs to 1.0x
// only make sense when the whole display was recorded.
type RecordingMode string

const (
	ModeDisplay RecordingMode = "display"
	ModeWindow  RecordingMode = "window"
	ModeArea    RecordingMode = "area"
)

// BackgroundKind selects what the framed content is composited onto.
type BackgroundKind string

const (
	BackgroundGradient    BackgroundKind = "gradient"
	BackgroundSolid       BackgroundKind = "solid"
	BackgroundTransparent BackgroundKind = "transparent"
)

// EncoderMode selects the frame format negotiated with the encoder
// subprocess. Auto picks MP4 for video output paths and BMP otherwise.
type EncoderMode string

const (
	EncoderAuto     EncoderMode = "auto"
	EncoderRawVideo EncoderMode = "rawvideo"
	EncoderBMP      EncoderMode = "bmp"
	EncoderMP4      EncoderMode = "mp4"
)

type Config struct {
	Zoom struct {
		Enabled        bool           `toml:"enabled" envconfig:"FOCUSFRAME_ZOOM_ENABLED"`
		MaxZoom        float64        `toml:"max_zoom" envconfig:"FOCUSFRAME_MAX_ZOOM"`
		Speed          AnimationSpeed `toml:"speed" envconfig:"FOCUSFRAME_ZOOM_SPEED"`
		ZoomOutIdleMs  int64          `toml:"zoom_out_idle_ms" envconfig:"FOCUSFRAME_ZOOM_OUT_IDLE_MS"`
		OverviewIdleMs int64          `toml:"overview_idle_ms" envconfig:"FOCUSFRAME_OVERVIEW_IDLE_MS"`
	} `toml:"zoom"`
	Effects struct {
		ClickRings      bool  `toml:"click_rings" envconfig:"FOCUSFRAME_CLICK_RINGS"`
		RingDurationMs  int64 `toml:"ring_duration_ms" envconfig:"FOCUSFRAME_RING_DURATION_MS"`
		KeyBadges       bool  `toml:"key_badges" envconfig:"FOCUSFRAME_KEY_BADGES"`
		BadgeDurationMs int64 `toml:"badge_duration_ms" envconfig:"FOCUSFRAME_BADGE_DURATION_MS"`
		CursorSmoothing bool  `toml:"cursor_smoothing" envconfig:"FOCUSFRAME_CURSOR_SMOOTHING"`
	} `toml:"effects"`
	Framing struct {
		BorderRadius  int            `toml:"border_radius" envconfig:"FOCUSFRAME_BORDER_RADIUS"`
		Shadow        bool           `toml:"shadow" envconfig:"FOCUSFRAME_SHADOW"`
		Background    BackgroundKind `toml:"background" envconfig:"FOCUSFRAME_BACKGROUND"`
		ColorTop      string         `toml:"color_top" envconfig:"FOCUSFRAME_COLOR_TOP"`
		ColorBottom   string         `toml:"color_bottom" envconfig:"FOCUSFRAME_COLOR_BOTTOM"`
		GradientAngle float64        `toml:"gradient_angle" envconfig:"FOCUSFRAME_GRADIENT_ANGLE"`
		Padding       int            `toml:"padding" envconfig:"FOCUSFRAME_PADDING"`
	} `toml:"framing"`
	Output struct {
		Width   int         `toml:"width" envconfig:"FOCUSFRAME_OUTPUT_WIDTH"`
		Height  int         `toml:"height" envconfig:"FOCUSFRAME_OUTPUT_HEIGHT"`
		FPS     int         `toml:"fps" envconfig:"FOCUSFRAME_OUTPUT_FPS"`
		Encoder EncoderMode `toml:"encoder" envconfig:"FOCUSFRAME_ENCODER"`
	} `toml:"output"`
	Processing struct {
		Parallel bool `toml:"parallel" envconfig:"FOCUSFRAME_PARALLEL"`
		Workers  int  `toml:"workers" envconfig:"FOCUSFRAME_WORKERS"`
	} `toml:"processing"`
	Recording struct {
		Mode RecordingMode `toml:"mode" envconfig:"FOCUSFRAME_RECORDING_MODE"`
	} `toml:"recording"`
}

func NewConfig() *Config {
	cfg := &Config{}

	cfg.Zoom.Enabled = true
	cfg.Zoom.MaxZoom = 3.0
	cfg.Zoom.Speed = SpeedMellow
	cfg.Zoom.ZoomOutIdleMs = 5000
	cfg.Zoom.OverviewIdleMs = 8000

	cfg.Effects.ClickRings = true
	cfg.Effects.RingDurationMs = 400
	cfg.Effects.KeyBadges = true
	cfg.Effects.BadgeDurationMs = 1500
	cfg.Effects.CursorSmoothing = true

	cfg.Framing.BorderRadius = 12
	cfg.Framing.Shadow = true
	cfg.Framing.Background = BackgroundGradient
	cfg.Framing.ColorTop = "#1e293b"
	cfg.Framing.ColorBottom = "#0f172a"
	cfg.Framing.GradientAngle = 45
	cfg.Framing.Padding = 64

	cfg.Output.Width = 1920
	cfg.Output.Height = 1080
	cfg.Output.FPS = 0 // derived from the recording unless overridden
	cfg.Output.Encoder = EncoderAuto

	cfg.Processing.Parallel = true
	cfg.Processing.Workers = 4

	cfg.Recording.Mode = ModeDisplay

	return cfg
}

// Load builds the effective configuration: defaults, then the optional
// TOML file, then environment variables.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("focusframe", cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Zoom.MaxZoom < 1.2 {
		return fmt.Errorf("invalid max_zoom %.2f: must be at least 1.2", c.Zoom.MaxZoom)
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("invalid output resolution %dx%d", c.Output.Width, c.Output.Height)
	}
	if c.Processing.Workers <= 0 {
		return fmt.Errorf("invalid worker count %d", c.Processing.Workers)
	}
	switch c.Framing.Background {
	case BackgroundGradient, BackgroundSolid, BackgroundTransparent:
	default:
		return fmt.Errorf("unknown background kind %q", c.Framing.Background)
	}
	return nil
}
