package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kikiluvv/videoeditor/pkg/util"
)

// ImageClipOptions configures turning a still image into a video clip
type ImageClipOptions struct {
	Image    string
	Output   string
	Duration time.Duration
	// Width and Height scale the image; zero keeps its own size
	Width        int
	Height       int
	FPS          float64
	WithSilence  bool // add a silent audio track
	Encoding     Encoding
	ProgressFunc ProgressFunc
}

// DefaultStillFPS is used when the target frame rate is unknown
const DefaultStillFPS = 30

// ImageClip renders a still image as a clip of the given duration
func (e *Executor) ImageClip(ctx context.Context, opts ImageClipOptions) error {
	if opts.Image == "" {
		return fmt.Errorf("image path is required")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Duration <= 0 {
		return fmt.Errorf("clip duration must be positive")
	}

	fps := opts.FPS
	if fps <= 0 {
		fps = DefaultStillFPS
	}
	dur := util.FormatDuration(opts.Duration)

	e.logger.Info().
		Str("image", opts.Image).
		Str("output", opts.Output).
		Dur("duration", opts.Duration).
		Int("width", opts.Width).
		Int("height", opts.Height).
		Msg("rendering still image clip")

	args := []string{
		"-loop", "1",
		"-framerate", strconv.FormatFloat(fps, 'f', -1, 64),
		"-t", dur,
		"-i", opts.Image,
	}
	if opts.WithSilence {
		args = append(args, "-f", "lavfi", "-t", dur, "-i", SilenceSource)
	}

	fb := NewFilterBuilder()
	if opts.Width > 0 && opts.Height > 0 {
		fb.Scale(opts.Width, opts.Height)
	}
	fb.EvenSize().SquarePixels().Format("yuv420p")
	args = append(args, "-vf", fb.Build())

	args = append(args, opts.Encoding.args(!opts.WithSilence)...)
	if opts.WithSilence {
		args = append(args, "-shortest")
	}
	args = append(args, opts.Output)

	runOpts := RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("still image clip")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("still image clip failed: %w", err)
	}
	return nil
}
