// Package editor holds the stateful video editor: a loaded clip that is cut,
// rotated and extended with images or other videos, then written out.
//
// Every edit renders an intermediate file into the editor's work dir; the
// current clip always points at the latest one.
package editor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/videoeditor/internal/clips"
	"github.com/kikiluvv/videoeditor/internal/ffmpeg"
	"github.com/kikiluvv/videoeditor/pkg/util"
)

var (
	ErrNotLoaded     = errors.New("no video loaded")
	ErrInvalidRange  = errors.New("invalid start or end time")
	ErrInvalidAngle  = errors.New("invalid rotation angle, must be one of 0, 90, 180, 270")
	ErrNoVideoStream = errors.New("file has no video stream")
)

const (
	// ToEnd as an end time means the end of the clip
	ToEnd time.Duration = -1
	// AtEnd as an insert position appends to the clip
	AtEnd time.Duration = math.MaxInt64
)

// Media is the subset of the ffmpeg executor the editor drives
type Media interface {
	ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
	ExtractClip(ctx context.Context, input string, opts ffmpeg.ClipOptions) error
	Rotate(ctx context.Context, input, output string, angle int, opts ffmpeg.RotateOptions) error
	ImageClip(ctx context.Context, opts ffmpeg.ImageClipOptions) error
	Concat(ctx context.Context, opts ffmpeg.ConcatOptions) error
	Render(ctx context.Context, opts ffmpeg.RenderOptions) error
}

// Options configures an Editor
type Options struct {
	OutputFormat string  // extension of the default output, "mp4" when empty
	FPS          float64 // output frame rate, zero keeps the clip's
	WithoutAudio bool
	WriteThreads int // zero picks util.ReasonableThreadCount
	WorkDir      string // parent of the scratch dir, system temp when empty
	Method       ffmpeg.ConcatMethod
	Encoding     ffmpeg.Encoding
}

// Editor edits one loaded video at a time
type Editor struct {
	logger  zerolog.Logger
	media   Media
	opts    Options
	clips   *clips.Manager
	source  string
	current *clips.Clip
}

// New creates an editor. Close must be called to remove intermediate files.
func New(logger zerolog.Logger, media Media, opts Options) (*Editor, error) {
	if opts.OutputFormat == "" {
		opts.OutputFormat = "mp4"
	}
	if opts.Method == "" {
		opts.Method = ffmpeg.ConcatCompose
	}
	threadsSource := "configured"
	if opts.WriteThreads <= 0 {
		opts.WriteThreads = util.ReasonableThreadCount()
		threadsSource = "system-determined"
	}

	manager, err := clips.NewManager(opts.WorkDir)
	if err != nil {
		return nil, err
	}

	e := &Editor{
		logger: logger.With().Str("component", "editor").Logger(),
		media:  media,
		opts:   opts,
		clips:  manager,
	}

	e.logger.Debug().
		Str("output_format", opts.OutputFormat).
		Float64("fps", opts.FPS).
		Bool("without_audio", opts.WithoutAudio).
		Int("write_threads", opts.WriteThreads).
		Str("write_threads_source", threadsSource).
		Str("work_dir", manager.WorkDir()).
		Msg("editor initialized")

	return e, nil
}

// Load probes a video and makes it the current clip
func (e *Editor) Load(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := e.media.ProbeVideo(ctx, abs)
	if err != nil {
		return fmt.Errorf("load video: %w", err)
	}
	if !info.HasVideo {
		return fmt.Errorf("load %s: %w", path, ErrNoVideoStream)
	}
	info.FilePath = abs

	clip := clips.FromInfo(util.Stem(abs), info)
	e.clips.Add(clip)
	e.source = abs
	e.current = clip

	e.logger.Debug().Str("file", abs).Msg("loaded video")
	e.logger.Debug().
		Int("width", clip.Width).
		Int("height", clip.Height).
		Int("rotation", clip.Rotation).
		Msg("normalized video size")
	return nil
}

// Clip returns the current clip
func (e *Editor) Clip() (*clips.Clip, error) {
	if e.current == nil {
		return nil, ErrNotLoaded
	}
	return e.current, nil
}

// Cut keeps [start, end) of the current clip. end may be ToEnd.
func (e *Editor) Cut(ctx context.Context, start, end time.Duration) error {
	cur, err := e.Clip()
	if err != nil {
		return err
	}
	if err := validateRange(start, end); err != nil {
		return err
	}

	out, err := e.subclip(ctx, cur, start, end, "cut")
	if err != nil {
		return err
	}
	e.current = out

	e.logger.Debug().Dur("start", start).Dur("end", end).Msg("cut video")
	return nil
}

// Rotate turns the current clip counter-clockwise by angle degrees
func (e *Editor) Rotate(ctx context.Context, angle int) error {
	cur, err := e.Clip()
	if err != nil {
		return err
	}
	switch angle {
	case 0:
		e.logger.Debug().Msg("rotation of 0 degrees, nothing to do")
		return nil
	case 90, 180, 270:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidAngle, angle)
	}

	output := e.clips.NewScratchPath(fmt.Sprintf("rotate%d", angle), e.opts.OutputFormat)
	err = e.media.Rotate(ctx, cur.Path, output, angle, ffmpeg.RotateOptions{
		NoAudio:  e.opts.WithoutAudio,
		Encoding: e.opts.Encoding,
	})
	if err != nil {
		return err
	}

	clip, err := e.adopt(ctx, output)
	if err != nil {
		return err
	}
	e.current = clip

	e.logger.Debug().Int("angle", angle).Msg("rotated video")
	return nil
}

// Write renders the current clip. An empty output writes
// <dir>/<stem>-edited.<format> next to the loaded video; threads <= 0 uses
// the configured write threads. It returns the output path.
func (e *Editor) Write(ctx context.Context, output string, threads int) (string, error) {
	cur, err := e.Clip()
	if err != nil {
		return "", err
	}
	if output == "" {
		output = e.DefaultOutput()
	} else if err := util.EnsureDir(filepath.Dir(output)); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if threads <= 0 {
		threads = e.opts.WriteThreads
	}

	e.logger.Info().Str("output", output).Msg("writing video")

	err = e.media.Render(ctx, ffmpeg.RenderOptions{
		Input:    cur.Path,
		Output:   output,
		FPS:      e.opts.FPS,
		NoAudio:  e.opts.WithoutAudio,
		Threads:  threads,
		Encoding: e.opts.Encoding,
	})
	if err != nil {
		return "", err
	}

	e.logger.Info().Str("output", output).Msg("video written")
	return output, nil
}

// DefaultOutput is the path Write uses when none is given
func (e *Editor) DefaultOutput() string {
	return filepath.Join(filepath.Dir(e.source), util.Stem(e.source)+"-edited."+e.opts.OutputFormat)
}

// Close removes intermediate files
func (e *Editor) Close() error {
	e.current = nil
	return e.clips.Cleanup()
}

func validateRange(start, end time.Duration) error {
	if start < 0 {
		return fmt.Errorf("%w: start %v is negative", ErrInvalidRange, start)
	}
	if end != ToEnd && end <= start {
		return fmt.Errorf("%w: end %v is not after start %v", ErrInvalidRange, end, start)
	}
	return nil
}

// subclip renders [start, end) of clip into a scratch file
func (e *Editor) subclip(ctx context.Context, clip *clips.Clip, start, end time.Duration, label string) (*clips.Clip, error) {
	if end == ToEnd {
		end = 0
	}
	output := e.clips.NewScratchPath(label, e.opts.OutputFormat)
	err := e.media.ExtractClip(ctx, clip.Path, ffmpeg.ClipOptions{
		Start:    start,
		End:      end,
		Output:   output,
		NoAudio:  e.opts.WithoutAudio,
		Encoding: e.opts.Encoding,
	})
	if err != nil {
		return nil, err
	}
	return e.adopt(ctx, output)
}

// adopt probes a scratch file and tracks it as an intermediate clip
func (e *Editor) adopt(ctx context.Context, path string) (*clips.Clip, error) {
	info, err := e.media.ProbeVideo(ctx, path)
	if err != nil {
		return nil, err
	}
	info.FilePath = path
	clip := clips.FromInfo(util.Stem(path), info)
	clip.Scratch = true
	e.clips.Add(clip)
	return clip, nil
}
