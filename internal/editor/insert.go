package editor

import (
	"context"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/kikiluvv/videoeditor/internal/clips"
	"github.com/kikiluvv/videoeditor/internal/ffmpeg"
	"github.com/kikiluvv/videoeditor/pkg/util"
)

// ImageFormats are the still image extensions InsertImage can decode
var ImageFormats = append(append([]string{}, util.ImageExtensions...), ".jpeg", ".webp", ".bmp")

// InsertOptions controls how inserted media is fitted to the current clip
type InsertOptions struct {
	Resize bool                // scale the inserted media to the clip size
	Method ffmpeg.ConcatMethod // empty uses the editor's method
}

// InsertImage shows the image at path for duration, starting at at
func (e *Editor) InsertImage(ctx context.Context, path string, at, duration time.Duration, opts InsertOptions) error {
	cur, err := e.Clip()
	if err != nil {
		return err
	}
	if duration <= 0 {
		return fmt.Errorf("%w: image duration %v must be positive", ErrInvalidRange, duration)
	}
	if !util.HasExtension(path, ImageFormats) {
		return fmt.Errorf("unsupported image format: %s", path)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}

	b := img.Bounds()
	w, h := cur.Size()
	if opts.Resize && (b.Dx() != w || b.Dy() != h) {
		e.logger.Debug().
			Int("from_width", b.Dx()).
			Int("from_height", b.Dy()).
			Int("to_width", w).
			Int("to_height", h).
			Msg("resizing image to video size")
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	still := e.clips.NewScratchPath(util.Stem(path), ".png")
	if err := imaging.Save(img, still); err != nil {
		return fmt.Errorf("save normalized image: %w", err)
	}
	e.clips.Add(&clips.Clip{ID: util.Stem(still), Path: still, Scratch: true})

	output := e.clips.NewScratchPath("image", e.opts.OutputFormat)
	err = e.media.ImageClip(ctx, ffmpeg.ImageClipOptions{
		Image:       still,
		Output:      output,
		Duration:    duration,
		FPS:         cur.FPS,
		WithSilence: !e.opts.WithoutAudio,
		Encoding:    e.opts.Encoding,
	})
	if err != nil {
		return err
	}

	clip, err := e.adopt(ctx, output)
	if err != nil {
		return err
	}
	return e.InsertClip(ctx, clip, at, opts.Method, path)
}

// InsertVideo inserts [cutStart, cutEnd) of the video at path at position at.
// cutEnd may be ToEnd.
func (e *Editor) InsertVideo(ctx context.Context, path string, at, cutStart, cutEnd time.Duration, opts InsertOptions) error {
	cur, err := e.Clip()
	if err != nil {
		return err
	}
	if err := validateRange(cutStart, cutEnd); err != nil {
		return err
	}

	info, err := e.media.ProbeVideo(ctx, path)
	if err != nil {
		return fmt.Errorf("probe inserted video: %w", err)
	}
	if !info.HasVideo {
		return fmt.Errorf("insert %s: %w", path, ErrNoVideoStream)
	}
	info.FilePath = path
	clip := clips.FromInfo(util.Stem(path), info)

	if cutStart > 0 || cutEnd != ToEnd {
		if clip, err = e.subclip(ctx, clip, cutStart, cutEnd, "insert-cut"); err != nil {
			return err
		}
	}

	w, h := cur.Size()
	if cw, ch := clip.Size(); opts.Resize && (cw != w || ch != h) {
		output := e.clips.NewScratchPath("insert-resized", e.opts.OutputFormat)
		err := e.media.Render(ctx, ffmpeg.RenderOptions{
			Input:    clip.Path,
			Output:   output,
			Width:    w,
			Height:   h,
			Filters:  []string{"setsar=1"},
			NoAudio:  e.opts.WithoutAudio,
			Encoding: e.opts.Encoding,
		})
		if err != nil {
			return err
		}
		if clip, err = e.adopt(ctx, output); err != nil {
			return err
		}
	}

	return e.InsertClip(ctx, clip, at, opts.Method, path)
}

// InsertClip joins clip into the current clip at position at:
// a negative at counts back from the end, 0 prepends, AtEnd or anything
// past the duration appends, and other positions split the current clip.
// label names the inserted media in logs.
func (e *Editor) InsertClip(ctx context.Context, clip *clips.Clip, at time.Duration, method ffmpeg.ConcatMethod, label string) error {
	cur, err := e.Clip()
	if err != nil {
		return err
	}
	if clip == nil {
		return fmt.Errorf("no clip to insert")
	}
	if method == "" {
		method = e.opts.Method
	}
	if label == "" {
		label = "clip"
	}

	if at < 0 {
		at = max(cur.Duration+at, 0)
	}

	var parts []string
	var where string
	switch {
	case at == 0:
		parts = []string{clip.Path, cur.Path}
		where = "beginning"
	case at == AtEnd || at >= cur.Duration:
		parts = []string{cur.Path, clip.Path}
		where = "end"
	default:
		head, err := e.subclip(ctx, cur, 0, at, "head")
		if err != nil {
			return err
		}
		tail, err := e.subclip(ctx, cur, at, ToEnd, "tail")
		if err != nil {
			return err
		}
		parts = []string{head.Path, clip.Path, tail.Path}
		where = util.FormatDuration(at)
	}

	output := e.clips.NewScratchPath("joined", e.opts.OutputFormat)
	err = e.media.Concat(ctx, ffmpeg.ConcatOptions{
		Inputs:   parts,
		Output:   output,
		Method:   method,
		FPS:      cur.FPS,
		NoAudio:  e.opts.WithoutAudio,
		Encoding: e.opts.Encoding,
	})
	if err != nil {
		return err
	}

	joined, err := e.adopt(ctx, output)
	if err != nil {
		return err
	}
	e.current = joined

	e.logger.Debug().
		Str("inserted", label).
		Str("at", where).
		Str("method", string(method)).
		Msg("inserted clip")
	return nil
}
