package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/videoeditor/internal/config"
	"github.com/kikiluvv/videoeditor/internal/editor"
	"github.com/kikiluvv/videoeditor/internal/facesearch"
	"github.com/kikiluvv/videoeditor/internal/ffmpeg"
)

// Pipeline runs the editing workflows on single files and directories
type Pipeline struct {
	logger     zerolog.Logger
	config     *Config
	appCfg     *config.Config
	media      editor.Media
	estimator  *facesearch.Estimator
	openFrames FrameOpener
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithMedia replaces the ffmpeg executor the pipeline would create
func WithMedia(media editor.Media) Option {
	return func(p *Pipeline) {
		p.media = media
	}
}

// New creates a new pipeline instance. detector and openFrames are only
// needed by the face workflows and may be nil otherwise.
func New(logger zerolog.Logger, cfg *Config, appCfg *config.Config, detector facesearch.Detector, openFrames FrameOpener, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = &Config{Workers: appCfg.Concurrency}
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	p := &Pipeline{
		logger:     logger.With().Str("component", "pipeline").Logger(),
		config:     cfg,
		appCfg:     appCfg,
		openFrames: openFrames,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.media == nil {
		ffmpegExec, err := ffmpeg.New(logger, appCfg.FFmpeg.Threads)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
		}
		p.media = ffmpegExec
	}

	if detector != nil {
		locator := facesearch.NewLocator(logger, detector,
			facesearch.WithDetectorParams(appCfg.Faces.ScaleFactor, appCfg.Faces.MinNeighbors))
		p.estimator = facesearch.NewEstimator(logger, locator, appCfg.Faces.Confidence)
	}

	return p, nil
}

// EstimateOrientation samples the video at path and reports where faces sit
// and which rotation makes them upright
func (p *Pipeline) EstimateOrientation(ctx context.Context, path string) (facesearch.Orientation, error) {
	if p.estimator == nil || p.openFrames == nil {
		return facesearch.Orientation{}, fmt.Errorf("face detection is not configured")
	}

	info, err := p.media.ProbeVideo(ctx, path)
	if err != nil {
		return facesearch.Orientation{}, fmt.Errorf("failed to probe video: %w", err)
	}

	src, err := p.openFrames(path)
	if err != nil {
		return facesearch.Orientation{}, fmt.Errorf("failed to open frames: %w", err)
	}
	defer src.Close()

	orientation, err := p.estimator.Estimate(ctx, src, facesearch.ClipInfo{
		Width:  info.Width,
		Height: info.Height,
		FPS:    info.FPS,
	})
	if err != nil {
		return facesearch.Orientation{}, err
	}

	p.logger.Info().
		Str("input", path).
		Int("bucket_x", orientation.BucketX).
		Int("bucket_y", orientation.BucketY).
		Int("rotation", int(orientation.Rotation)).
		Msg("orientation estimated")
	return orientation, nil
}

// RotateByFaces rotates the video so detected faces are upright and writes
// it to output (empty for the default next to the input). A video without
// detectable faces is written unrotated.
func (p *Pipeline) RotateByFaces(ctx context.Context, input, output string) (string, error) {
	orientation, err := p.EstimateOrientation(ctx, input)
	switch {
	case errors.Is(err, facesearch.ErrNoFaces):
		p.logger.Warn().Str("input", input).Msg("no faces found, leaving video unrotated")
	case err != nil:
		return "", err
	}

	return p.edit(ctx, input, output, func(ed *editor.Editor) error {
		if orientation.Rotation == facesearch.Rotate0 {
			return nil
		}
		return ed.Rotate(ctx, int(orientation.Rotation))
	})
}

// InsertImage inserts an image into a video and writes the result
func (p *Pipeline) InsertImage(ctx context.Context, video, image, output string, opts InsertImageOptions) (string, error) {
	return p.edit(ctx, video, output, func(ed *editor.Editor) error {
		return ed.InsertImage(ctx, image, opts.At, opts.Duration, editor.InsertOptions{
			Resize: opts.Resize,
			Method: opts.Method,
		})
	})
}

// InsertVideo inserts part of another video and writes the result
func (p *Pipeline) InsertVideo(ctx context.Context, video, clip, output string, opts InsertVideoOptions) (string, error) {
	return p.edit(ctx, video, output, func(ed *editor.Editor) error {
		return ed.InsertVideo(ctx, clip, opts.At, opts.CutStart, opts.CutEnd, editor.InsertOptions{
			Resize: opts.Resize,
			Method: opts.Method,
		})
	})
}

// Edit loads input into a fresh editor, applies fn and writes the result
func (p *Pipeline) Edit(ctx context.Context, input, output string, fn func(*editor.Editor) error) (string, error) {
	return p.edit(ctx, input, output, fn)
}

func (p *Pipeline) edit(ctx context.Context, input, output string, fn func(*editor.Editor) error) (string, error) {
	ed, err := editor.New(p.logger, p.media, p.editorOptions())
	if err != nil {
		return "", err
	}
	defer func() {
		if err := ed.Close(); err != nil {
			p.logger.Warn().Err(err).Msg("failed to remove intermediate files")
		}
	}()

	if err := ed.Load(ctx, input); err != nil {
		return "", err
	}
	if err := fn(ed); err != nil {
		return "", err
	}
	return ed.Write(ctx, output, 0)
}

func (p *Pipeline) editorOptions() editor.Options {
	c := p.appCfg
	method, err := ffmpeg.ParseConcatMethod(c.Editor.Method)
	if err != nil {
		p.logger.Warn().Err(err).Msg("falling back to compose")
		method = ffmpeg.ConcatCompose
	}
	return editor.Options{
		OutputFormat: c.Editor.OutputFormat,
		FPS:          c.Editor.FPS,
		WithoutAudio: c.Editor.WithoutAudio,
		WriteThreads: c.Editor.WriteThreads,
		WorkDir:      c.WorkDir,
		Method:       method,
		Encoding: ffmpeg.Encoding{
			VideoCodec: c.FFmpeg.VideoCodec,
			AudioCodec: c.FFmpeg.AudioCodec,
			CRF:        c.FFmpeg.CRF,
			Preset:     c.FFmpeg.Preset,
		},
	}
}
