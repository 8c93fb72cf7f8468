package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vedantwpatil/FocusFrame/internal/config"
	"github.com/vedantwpatil/FocusFrame/internal/editing"
	"github.com/vedantwpatil/FocusFrame/internal/video"
)

var (
	flagConfig  string
	flagVerbose bool
)

func main() {
	// A .env next to the binary can hold FOCUSFRAME_* overrides.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "focusframe",
		Short: "Automated post-production for screen recordings",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if flagVerbose {
				level = zerolog.DebugLevel
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
		},
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a TOML config file")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(renderCmd(), probeCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	// CLI flags win over file and environment.
	if f := cmd.Flags(); f != nil {
		if f.Changed("speed") {
			speed, _ := f.GetString("speed")
			cfg.Zoom.Speed = config.AnimationSpeed(speed)
		}
		if f.Changed("auto-zoom") {
			cfg.Zoom.Enabled, _ = f.GetBool("auto-zoom")
		}
		if f.Changed("background") {
			bg, _ := f.GetString("background")
			cfg.Framing.Background = config.BackgroundKind(bg)
		}
		if f.Changed("workers") {
			cfg.Processing.Workers, _ = f.GetInt("workers")
		}
	}
	return cfg, cfg.Validate()
}

func renderCmd() *cobra.Command {
	var recordingDir, outputPath string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a recording into a composited video",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// Ctrl-C cancels the job; the partial output is discarded.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			editor := editing.NewEditor(cfg)
			return editor.Render(ctx, recordingDir, outputPath, editing.RenderOptions{
				Reporter: video.NewProgressBar("Rendering"),
			})
		},
	}
	cmd.Flags().StringVar(&recordingDir, "recording", "", "recording directory (required)")
	cmd.Flags().StringVarP(&outputPath, "out", "o", "output.mp4", "output video path")
	cmd.Flags().String("speed", "", "animation speed preset: slow|mellow|quick|rapid")
	cmd.Flags().Bool("auto-zoom", true, "enable automatic zooming")
	cmd.Flags().String("background", "", "background kind: gradient|solid|transparent")
	cmd.Flags().Int("workers", 0, "compositing worker count")
	_ = cmd.MarkFlagRequired("recording")
	return cmd
}

func probeCmd() *cobra.Command {
	var recordingDir string
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Print the analysis for a recording without rendering",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			editor := editing.NewEditor(cfg)
			analysis, err := editor.Analyze(recordingDir)
			if err != nil {
				return err
			}

			rec := analysis.Recording
			fmt.Printf("recording %s: %dx%d, %d frames, %.2fs, %.1f fps effective\n",
				rec.Meta.ID, rec.Width, rec.Height, rec.FrameCount,
				float64(rec.Meta.DurationMs)/1000, rec.EffectiveFPS())
			fmt.Printf("events: %d, drags: %d\n", len(rec.Events), len(analysis.Drags))
			for _, sc := range analysis.Scenes {
				fmt.Printf("scene %d: %d..%dms center=(%.0f,%.0f) zoom=%.2f events=%d\n",
					sc.ID, sc.StartT, sc.EndT, sc.CenterX, sc.CenterY, sc.ZoomLevel, sc.EventCount)
			}
			for _, kf := range analysis.Keyframes {
				fmt.Printf("keyframe t=%dms target=(%.0f,%.0f) zoom=%.2f %s\n",
					kf.T, kf.TargetX, kf.TargetY, kf.ZoomLevel, kf.Transition)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&recordingDir, "recording", "", "recording directory (required)")
	_ = cmd.MarkFlagRequired("recording")
	return cmd
}
