package editing

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vedantwpatil/FocusFrame/internal/config"
	"github.com/vedantwpatil/FocusFrame/internal/motion"
	"github.com/vedantwpatil/FocusFrame/internal/recording"
	"github.com/vedantwpatil/FocusFrame/internal/scene"
	"github.com/vedantwpatil/FocusFrame/internal/tracking"
	"github.com/vedantwpatil/FocusFrame/internal/video"
)

// Editor runs post-production jobs: one recording directory in, one
// composited video out. All job state is constructed fresh per render;
// the editor itself holds only configuration.
type Editor struct {
	config *config.Config
}

func NewEditor(config *config.Config) *Editor {
	return &Editor{config: config}
}

// Analysis is the precomputed plan for a recording: everything the
// per-frame loop consumes, and what `probe` prints.
type Analysis struct {
	Recording *recording.Recording
	Drags     []tracking.DragSpan
	Scenes    []scene.Scene
	Keyframes []scene.Keyframe
	Cursor    []tracking.CursorSample
}

// Analyze loads the recording artifacts and runs the pure analysis
// passes: preprocessing, scene splitting, planning, cursor smoothing.
// These are independent of frame emission and safe to run on their own.
func (e *Editor) Analyze(recordingDir string) (*Analysis, error) {
	rec, err := recording.Load(recordingDir)
	if err != nil {
		return nil, err
	}

	processed, drags := tracking.Preprocess(rec.Events)

	splitter := &scene.Splitter{
		ScreenW: float64(rec.Width),
		ScreenH: float64(rec.Height),
		MaxZoom: e.config.Zoom.MaxZoom,
	}
	scenes := splitter.Split(scene.ExtractActivity(processed))

	planner := &scene.Planner{
		Config:  e.config,
		ScreenW: float64(rec.Width),
		ScreenH: float64(rec.Height),
	}
	keyframes := planner.Plan(scenes, rec.Meta.DurationMs)

	cursor := tracking.CursorPath(rec.Events)
	if e.config.Effects.CursorSmoothing {
		cursor = motion.SmoothCursor(cursor)
	}

	log.Info().
		Int("events", len(rec.Events)).
		Int("drags", len(drags)).
		Int("scenes", len(scenes)).
		Int("keyframes", len(keyframes)).
		Msg("analysis complete")

	return &Analysis{
		Recording: rec,
		Drags:     drags,
		Scenes:    scenes,
		Keyframes: keyframes,
		Cursor:    cursor,
	}, nil
}

// RenderOptions carries per-job observers.
type RenderOptions struct {
	// Progress, when non-nil, receives stage/progress events.
	Progress chan<- video.ProgressEvent
	// Reporter, when non-nil, receives terminal progress output.
	Reporter video.ProgressReporter
}

// Render runs the full job: analyze, sweep the camera, composite every
// frame, and finalize the encoder output.
func (e *Editor) Render(ctx context.Context, recordingDir, outputPath string, opts RenderOptions) error {
	jobID := uuid.NewString()
	logger := log.With().Str("job", jobID).Str("recording", recordingDir).Logger()
	logger.Info().Str("output", outputPath).Msg("starting render")

	analysis, err := e.Analyze(recordingDir)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	rec := analysis.Recording

	// The spring sweep is sequential by construction: every frame's
	// viewport depends on all prior keyframes and dt values. Materialize
	// it first so compositing can fan out.
	viewport := motion.NewViewport(float64(rec.Width), float64(rec.Height), analysis.Keyframes)
	trajectory, err := viewport.Sweep(rec.FrameTimestamps())
	if err != nil {
		return fmt.Errorf("%w: %v", video.ErrInternal, err)
	}

	effects := video.ExtractEffects(e.config, rec.Events)
	compositor, err := video.NewCompositor(e.config, rec.Width, rec.Height, analysis.Cursor, effects)
	if err != nil {
		return fmt.Errorf("failed to build compositor: %w", err)
	}

	fps := float64(e.config.Output.FPS)
	if fps <= 0 {
		fps = rec.EffectiveFPS()
	}

	pipeline := video.NewPipeline(e.config, video.NewProcessor(e.config), compositor, trajectory)
	pipeline.SetJobID(jobID)
	pipeline.SetProgress(opts.Reporter, opts.Progress)

	if err := pipeline.Process(ctx, rec, outputPath, fps); err != nil {
		return err
	}

	verifyOutput(logger, outputPath)
	logger.Info().Msg("render complete")
	return nil
}

// verifyOutput cross-checks the encoded file's resolution when the
// output is a video container. A mismatch only logs; the render already
// succeeded.
func verifyOutput(logger zerolog.Logger, outputPath string) {
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".mp4", ".mov", ".mkv", ".webm":
	default:
		return
	}
	res, err := recording.VideoResolution(outputPath)
	if err != nil {
		logger.Warn().Err(err).Msg("could not verify output resolution")
		return
	}
	logger.Info().Str("resolution", res).Msg("verified encoded output")
}
