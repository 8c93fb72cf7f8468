package video

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/vedantwpatil/FocusFrame/internal/config"
	"github.com/vedantwpatil/FocusFrame/internal/motion"
)

// FrameSource provides decoded source frames by output index.
type FrameSource interface {
	Frame(i int) (image.Image, error)
}

// Pipeline walks the output frames in order: for each frame it picks the
// precomputed viewport, composites, and streams the result to the
// encoder. Compositing inside a chunk runs in parallel; emission stays
// strictly ordered because the encoder consumes a sequential stream.
// sinkOpener is what the pipeline needs from the Processor.
type sinkOpener interface {
	OpenSink(outputPath string, width, height int, fps float64) (FrameSink, error)
}

type Pipeline struct {
	config     *config.Config
	processor  sinkOpener
	compositor *Compositor
	trajectory []motion.TrajectoryPoint

	progress ProgressReporter
	events   chan<- ProgressEvent
	jobID    string
}

func NewPipeline(cfg *config.Config, processor *Processor, compositor *Compositor, trajectory []motion.TrajectoryPoint) *Pipeline {
	return &Pipeline{
		config:     cfg,
		processor:  processor,
		compositor: compositor,
		trajectory: trajectory,
		progress:   nopReporter{},
	}
}

// SetProgress wires a terminal reporter and/or an event channel.
func (p *Pipeline) SetProgress(reporter ProgressReporter, events chan<- ProgressEvent) {
	if reporter != nil {
		p.progress = reporter
	}
	p.events = events
}

// SetJobID tags log lines with the job.
func (p *Pipeline) SetJobID(id string) { p.jobID = id }

// Process renders every frame and finalizes the encoded output. On
// cancellation or failure the partial output is discarded.
func (p *Pipeline) Process(ctx context.Context, frames FrameSource, outputPath string, fps float64) error {
	n := len(p.trajectory)
	if n == 0 {
		return fmt.Errorf("%w: empty frame trajectory", ErrInternal)
	}

	sink, err := p.processor.OpenSink(outputPath, p.config.Output.Width, p.config.Output.Height, fps)
	if err != nil {
		return err
	}

	pub := publisher{reporter: p.progress, events: p.events}

	workers := p.config.Processing.Workers
	if !p.config.Processing.Parallel {
		workers = 1
	}
	chunkSize := workers * 4

	log.Info().
		Str("job", p.jobID).
		Int("frames", n).
		Int("workers", workers).
		Msg("composing frames")

	for start := 0; start < n; start += chunkSize {
		// Cancellation is cooperative, checked between chunks.
		if err := ctx.Err(); err != nil {
			sink.Abort()
			p.progress.ReportError(err)
			return fmt.Errorf("%w: %v", ErrCancelled, err)
		}

		end := start + chunkSize
		if end > n {
			end = n
		}
		rendered := make([]*image.RGBA, end-start)

		grp := pool.New().WithErrors().WithMaxGoroutines(workers)
		for i := start; i < end; i++ {
			i := i
			grp.Go(func() error {
				src, err := frames.Frame(i)
				if err != nil {
					return err
				}
				rendered[i-start] = p.compositor.RenderFrame(src, p.trajectory[i])
				return nil
			})
		}
		if err := grp.Wait(); err != nil {
			sink.Abort()
			p.progress.ReportError(err)
			return fmt.Errorf("failed to compose frames %d..%d: %w", start, end-1, err)
		}

		for i, img := range rendered {
			if err := sink.WriteFrame(img); err != nil {
				sink.Abort()
				p.progress.ReportError(err)
				return err
			}
			pub.publish(ProgressEvent{Stage: StageComposing, Progress: float64(start+i+1) / float64(n)})
		}
	}

	pub.publish(ProgressEvent{Stage: StageEncoding, Progress: 0})
	if err := sink.Close(); err != nil {
		p.progress.ReportError(err)
		return err
	}
	pub.publish(ProgressEvent{Stage: StageComplete, Progress: 1, OutputPath: outputPath})
	p.progress.ReportComplete()
	return nil
}
