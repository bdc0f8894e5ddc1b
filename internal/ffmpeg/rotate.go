package ffmpeg

import (
	"context"
	"fmt"
)

// RotateOptions configures a rotation re-encode
type RotateOptions struct {
	NoAudio      bool
	Encoding     Encoding
	ProgressFunc ProgressFunc
}

// Rotate writes input turned counter-clockwise by angle (90, 180 or 270)
func (e *Executor) Rotate(ctx context.Context, input, output string, angle int, opts RotateOptions) error {
	if input == "" || output == "" {
		return fmt.Errorf("input and output paths are required")
	}

	filter := NewFilterBuilder().Rotate(angle).Build()
	if filter == "" {
		return fmt.Errorf("unsupported rotation angle %d", angle)
	}

	e.logger.Info().
		Str("input", input).
		Str("output", output).
		Int("angle", angle).
		Msg("rotating video")

	args := []string{"-i", input, "-vf", filter, "-metadata:s:v:0", "rotate=0"}
	args = append(args, opts.Encoding.args(opts.NoAudio)...)
	args = append(args, output)

	runOpts := RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("rotation")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("rotation failed: %w", err)
	}
	return nil
}
