package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kikiluvv/videoeditor/pkg/util"
)

// ConcatMethod selects how inputs with different geometry are joined
type ConcatMethod string

const (
	// ConcatDemux uses the concat demuxer; inputs must share codecs and size
	ConcatDemux ConcatMethod = "demux"
	// ConcatChain scales every input to the first input's size
	ConcatChain ConcatMethod = "chain"
	// ConcatCompose centres every input on a canvas large enough for all of them
	ConcatCompose ConcatMethod = "compose"
)

// ParseConcatMethod validates a method name
func ParseConcatMethod(s string) (ConcatMethod, error) {
	switch m := ConcatMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case ConcatDemux, ConcatChain, ConcatCompose:
		return m, nil
	case "":
		return ConcatCompose, nil
	default:
		return "", fmt.Errorf("unknown concat method %q (want demux, chain or compose)", s)
	}
}

// ConcatOptions defines concatenation parameters
type ConcatOptions struct {
	Inputs       []string
	Output       string
	Method       ConcatMethod
	FPS          float64 // zero keeps the first input's rate
	NoAudio      bool
	CopyCodec    bool // demux only: stream copy instead of re-encoding
	Encoding     Encoding
	ProgressFunc ProgressFunc
}

// Concat merges multiple video files into one
func (e *Executor) Concat(ctx context.Context, opts ConcatOptions) error {
	if len(opts.Inputs) == 0 {
		return fmt.Errorf("no input files provided")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Method == "" {
		opts.Method = ConcatCompose
	}

	e.logger.Info().
		Int("inputs", len(opts.Inputs)).
		Str("output", opts.Output).
		Str("method", string(opts.Method)).
		Msg("concatenating videos")

	var (
		args []string
		err  error
	)
	switch opts.Method {
	case ConcatDemux:
		concatFile, err := e.createConcatFile(opts.Inputs)
		if err != nil {
			return fmt.Errorf("failed to create concat file: %w", err)
		}
		defer util.CleanupFiles(concatFile)
		args = demuxArgs(concatFile, opts)
	case ConcatChain, ConcatCompose:
		args, err = e.filterConcatArgs(ctx, opts)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown concat method %q", opts.Method)
	}

	runOpts := RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("concatenating")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("concat failed: %w", err)
	}
	return nil
}

func demuxArgs(concatFile string, opts ConcatOptions) []string {
	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", concatFile,
	}

	if opts.CopyCodec {
		args = append(args, "-c", "copy")
		if opts.NoAudio {
			args = append(args, "-an")
		}
	} else {
		if opts.FPS > 0 {
			args = append(args, "-r", strconv.FormatFloat(opts.FPS, 'f', -1, 64))
		}
		args = append(args, opts.Encoding.args(opts.NoAudio)...)
	}

	return append(args, opts.Output)
}

func (e *Executor) filterConcatArgs(ctx context.Context, opts ConcatOptions) ([]string, error) {
	infos := make([]*VideoInfo, 0, len(opts.Inputs))
	for _, input := range opts.Inputs {
		info, err := e.ProbeVideo(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("probe concat input %s: %w", input, err)
		}
		infos = append(infos, info)
	}

	graph, err := buildConcatGraph(infos, opts.Method, opts.FPS, opts.NoAudio)
	if err != nil {
		return nil, err
	}

	var args []string
	for _, input := range opts.Inputs {
		args = append(args, "-i", input)
	}
	args = append(args, "-filter_complex", graph, "-map", "[v]")
	if !opts.NoAudio {
		args = append(args, "-map", "[a]")
	}
	args = append(args, opts.Encoding.args(opts.NoAudio)...)
	return append(args, opts.Output), nil
}

// buildConcatGraph returns the filter_complex joining infos into [v] and,
// unless noAudio, [a]. Inputs without audio get a silent track of their length.
func buildConcatGraph(infos []*VideoInfo, method ConcatMethod, fps float64, noAudio bool) (string, error) {
	if len(infos) == 0 {
		return "", fmt.Errorf("no inputs to concatenate")
	}

	if fps <= 0 {
		fps = infos[0].FPS
	}
	if fps <= 0 {
		fps = DefaultStillFPS
	}

	var width, height int
	switch method {
	case ConcatChain:
		width, height = infos[0].DisplaySize()
	case ConcatCompose:
		for _, info := range infos {
			w, h := info.DisplaySize()
			width = max(width, w)
			height = max(height, h)
		}
	default:
		return "", fmt.Errorf("method %q does not use a filter graph", method)
	}
	width += width % 2
	height += height % 2
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("concat inputs have no usable frame size")
	}

	var parts, pads []string
	for i, info := range infos {
		fb := NewFilterBuilder()
		if method == ConcatChain {
			fb.Scale(width, height)
		} else {
			fb.Pad(width, height)
		}
		fb.SquarePixels().FPS(fps).Format("yuv420p")
		parts = append(parts, fmt.Sprintf("[%d:v]%s[v%d]", i, fb.Build(), i))
		pads = append(pads, fmt.Sprintf("[v%d]", i))

		if noAudio {
			continue
		}
		if info.HasAudio {
			parts = append(parts, fmt.Sprintf("[%d:a]aresample=44100,aformat=sample_fmts=fltp:channel_layouts=stereo[a%d]", i, i))
		} else {
			parts = append(parts, fmt.Sprintf("%s,atrim=duration=%.3f[a%d]", SilenceSource, info.Duration.Seconds(), i))
		}
		pads = append(pads, fmt.Sprintf("[a%d]", i))
	}

	audio, out := 1, "[v][a]"
	if noAudio {
		audio, out = 0, "[v]"
	}
	parts = append(parts, fmt.Sprintf("%sconcat=n=%d:v=1:a=%d%s", strings.Join(pads, ""), len(infos), audio, out))

	return strings.Join(parts, ";"), nil
}

// createConcatFile generates a temporary file list for ffmpeg concat
func (e *Executor) createConcatFile(inputs []string) (string, error) {
	tmpFile, err := util.TempFile("", "videoeditor-concat-", ".txt")
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	for _, input := range inputs {
		absPath, err := filepath.Abs(input)
		if err != nil {
			return "", err
		}
		quoted := strings.ReplaceAll(absPath, "'", `'\''`)
		if _, err := fmt.Fprintf(tmpFile, "file '%s'\n", quoted); err != nil {
			return "", err
		}
	}

	return tmpFile.Name(), nil
}
