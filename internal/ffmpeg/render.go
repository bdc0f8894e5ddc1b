package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kikiluvv/videoeditor/pkg/util"
)

// Render performs a full video render with all specified options
func (e *Executor) Render(ctx context.Context, opts RenderOptions) error {
	if err := validateRenderOptions(opts); err != nil {
		return fmt.Errorf("invalid render options: %w", err)
	}

	run := e
	if opts.Threads > 0 && opts.Threads != e.Threads() {
		run = e.WithThreads(opts.Threads)
	}

	e.logger.Info().
		Str("input", opts.Input).
		Str("output", opts.Output).
		Float64("fps", opts.FPS).
		Bool("no_audio", opts.NoAudio).
		Int("threads", run.Threads()).
		Msg("starting render")

	args := []string{"-i", opts.Input}

	filters := buildFilterChain(opts)
	if len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}

	args = append(args, opts.Encoding.args(opts.NoAudio)...)

	if opts.FPS > 0 {
		args = append(args, "-r", strconv.FormatFloat(opts.FPS, 'f', -1, 64))
	}

	if len(opts.CustomArgs) > 0 {
		args = append(args, opts.CustomArgs...)
	}

	args = append(args, opts.Output)

	runOpts := RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("render output")
		},
	}

	if err := run.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	e.logger.Info().Str("output", opts.Output).Msg("render completed")
	return nil
}

// ExtractFrame writes the frame at timestamp as a single image.
// angle turns the frame counter-clockwise before it is written.
func (e *Executor) ExtractFrame(ctx context.Context, input, output string, timestamp time.Duration, angle int) error {
	if input == "" {
		return fmt.Errorf("input path is required")
	}
	if output == "" {
		return fmt.Errorf("output path is required")
	}

	e.logger.Info().
		Str("input", input).
		Str("output", output).
		Dur("timestamp", timestamp).
		Int("angle", angle).
		Msg("extracting frame")

	args := []string{
		"-ss", util.FormatDuration(timestamp),
		"-i", input,
	}
	if filter := NewFilterBuilder().Rotate(angle).Build(); filter != "" {
		args = append(args, "-vf", filter)
	}
	args = append(args,
		"-frames:v", "1",
		"-q:v", "2", // high quality JPEG
		output,
	)

	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("frame extraction")
		},
	}

	return e.Run(ctx, opts)
}

// validateRenderOptions validates the render options
func validateRenderOptions(opts RenderOptions) error {
	if opts.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Encoding.CRF < 0 || opts.Encoding.CRF > 51 {
		return fmt.Errorf("CRF must be between 0 and 51")
	}
	if opts.FPS < 0 {
		return fmt.Errorf("FPS cannot be negative")
	}
	if opts.Threads < 0 {
		return fmt.Errorf("threads cannot be negative")
	}
	return nil
}

// buildFilterChain constructs the filter chain from render options
func buildFilterChain(opts RenderOptions) []string {
	fb := NewFilterBuilder().Scale(opts.Width, opts.Height)
	if (opts.Width <= 0 || opts.Height <= 0) && opts.Scale != "" {
		fb.Custom("scale=" + opts.Scale)
	}
	for _, f := range opts.Filters {
		fb.Custom(f)
	}
	return fb.BuildAll()
}
