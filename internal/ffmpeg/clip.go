package ffmpeg

import (
	"context"
	"fmt"
	"time"

	"github.com/kikiluvv/videoeditor/pkg/util"
)

// ClipOptions defines clip extraction parameters
type ClipOptions struct {
	Start        time.Duration
	End          time.Duration // zero means until the end of the input
	Output       string
	CopyCodec    bool // If true, use -c copy for fast extraction
	NoAudio      bool
	Encoding     Encoding
	ProgressFunc ProgressFunc
}

// ExtractClip cuts a segment from a video
func (e *Executor) ExtractClip(ctx context.Context, input string, opts ClipOptions) error {
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Start < 0 {
		return fmt.Errorf("invalid clip start: %v", opts.Start)
	}
	if opts.End != 0 && opts.End <= opts.Start {
		return fmt.Errorf("invalid clip duration: end must be after start")
	}

	e.logger.Info().
		Str("input", input).
		Str("output", opts.Output).
		Dur("start", opts.Start).
		Dur("end", opts.End).
		Bool("copy_codec", opts.CopyCodec).
		Msg("extracting clip")

	args := []string{"-i", input, "-ss", util.FormatDuration(opts.Start)}
	if opts.End != 0 {
		args = append(args, "-t", util.FormatDuration(opts.End-opts.Start))
	}

	if opts.CopyCodec {
		args = append(args, "-c", "copy")
		if opts.NoAudio {
			args = append(args, "-an")
		}
	} else {
		args = append(args, opts.Encoding.args(opts.NoAudio)...)
	}

	args = append(args, opts.Output)

	runOpts := RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("clip extraction")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("clip extraction failed: %w", err)
	}

	e.logger.Info().Str("output", opts.Output).Msg("clip extraction complete")
	return nil
}
