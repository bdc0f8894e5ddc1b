package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kikiluvv/videoeditor/pkg/util"
)

// editedSuffix marks outputs written next to their inputs
const editedSuffix = "-edited"

// batchJob processes one video and returns the output path. A job that
// returns a skipError is reported as skipped.
type batchJob func(ctx context.Context, video string) (string, error)

type skipError struct{ reason string }

func (e skipError) Error() string { return e.reason }

// BatchRotateByFaces runs RotateByFaces on every supported video in dir
func (p *Pipeline) BatchRotateByFaces(ctx context.Context, dir string, progress ProgressFunc) (*BatchReport, error) {
	return p.runBatch(ctx, dir, progress, func(ctx context.Context, video string) (string, error) {
		return p.RotateByFaces(ctx, video, "")
	})
}

// BatchInsertImage runs InsertImage on every supported video in dir that has
// an image of the same name next to it (.jpg preferred over .png)
func (p *Pipeline) BatchInsertImage(ctx context.Context, dir string, opts InsertImageOptions, progress ProgressFunc) (*BatchReport, error) {
	return p.runBatch(ctx, dir, progress, func(ctx context.Context, video string) (string, error) {
		image := util.SiblingWithExtension(video, util.ImageExtensions)
		if image == "" {
			return "", skipError{"no matching image"}
		}
		return p.InsertImage(ctx, video, image, "", opts)
	})
}

// ScanVideos lists the supported videos directly inside dir, skipping
// earlier outputs of the editor
func ScanVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var videos []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !util.IsVideoFile(name) || strings.HasSuffix(util.Stem(name), editedSuffix) {
			continue
		}
		videos = append(videos, filepath.Join(dir, name))
	}
	sort.Strings(videos)
	return videos, nil
}

func (p *Pipeline) runBatch(ctx context.Context, dir string, progress ProgressFunc, job batchJob) (*BatchReport, error) {
	videos, err := ScanVideos(dir)
	if err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("dir", dir).
		Int("videos", len(videos)).
		Int("workers", p.config.Workers).
		Msg("starting batch")

	report := newBatchReport()
	var mu sync.Mutex
	sem := make(chan struct{}, p.config.Workers)
	var wg sync.WaitGroup
	done := 0

	for _, video := range videos {
		wg.Add(1)
		go func(video string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var (
				output string
				err    error
			)
			if err = ctx.Err(); err == nil {
				output, err = job(ctx, video)
			}

			mu.Lock()
			defer mu.Unlock()
			switch e := err.(type) {
			case nil:
				report.Processed[video] = output
				p.logger.Info().Str("input", video).Str("output", output).Msg("video processed")
			case skipError:
				report.Skipped = append(report.Skipped, video)
				p.logger.Info().Str("input", video).Str("reason", e.reason).Msg("video skipped")
			default:
				report.Failed = append(report.Failed, JobError{Path: video, Err: err})
				p.logger.Error().Err(err).Str("input", video).Msg("video failed")
			}
			done++
			if progress != nil {
				progress(done, len(videos))
			}
		}(video)
	}
	wg.Wait()
	report.sort()

	p.logger.Info().
		Int("processed", len(report.Processed)).
		Int("skipped", len(report.Skipped)).
		Int("failed", len(report.Failed)).
		Msg("batch complete")

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}
