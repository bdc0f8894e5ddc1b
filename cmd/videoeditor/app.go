package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/videoeditor/internal/cascade"
	"github.com/kikiluvv/videoeditor/internal/config"
	"github.com/kikiluvv/videoeditor/internal/facesearch"
	"github.com/kikiluvv/videoeditor/internal/ffmpeg"
	"github.com/kikiluvv/videoeditor/internal/gui"
	"github.com/kikiluvv/videoeditor/internal/logging"
	"github.com/kikiluvv/videoeditor/internal/pipeline"
)

// app bundles what a command needs to run a workflow
type app struct {
	logger   zerolog.Logger
	cfg      *config.Config
	ffmpeg   *ffmpeg.Executor
	pipeline *pipeline.Pipeline
	detector *cascade.Classifier
}

// newApp builds the pipeline; withFaces also loads the face cascade.
// Logging must be set up before, batch log included.
func newApp(ctx context.Context, withFaces bool) (*app, error) {
	cfg := config.FromContext(ctx)
	logger := logging.WithComponent("cli")

	exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, err
	}

	a := &app{logger: logger, cfg: cfg, ffmpeg: exec}

	var (
		detector facesearch.Detector
		opener   pipeline.FrameOpener
	)
	if withFaces {
		path, err := cascade.FindCascade(cfg.Faces.CascadePath)
		if err != nil {
			return nil, err
		}
		a.detector, err = cascade.Load(path)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("cascade", path).Msg("face cascade loaded")
		detector = a.detector
		opener = cascade.Open
	}

	a.pipeline, err = pipeline.New(log.Logger, &pipeline.Config{Workers: cfg.Concurrency}, cfg,
		detector, opener, pipeline.WithMedia(exec))
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the face cascade
func (a *app) Close() {
	if a.detector != nil {
		_ = a.detector.Close()
	}
}

// pickPaths fills empty entries of paths with dialog selections
func pickPaths(paths []string, requests []gui.Request) ([]string, error) {
	var missing []gui.Request
	for i, p := range paths {
		if p == "" {
			missing = append(missing, requests[i])
		}
	}
	if len(missing) == 0 {
		return paths, nil
	}

	picked, err := gui.Pick(missing...)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(paths))
	j := 0
	for i, p := range paths {
		if p == "" {
			p = picked[j]
			j++
		}
		out[i] = p
	}
	return out, nil
}

// batchDir resolves the --batch value, asking for a directory when it was
// given bare and no positional directory was passed
func batchDir(flagValue string, args []string) (string, error) {
	if flagValue != askForDir {
		return flagValue, nil
	}
	if len(args) == 1 {
		return args[0], nil
	}
	picked, err := gui.Pick(gui.Directory("Select a directory"))
	if err != nil {
		return "", err
	}
	return picked[0], nil
}

// batchMode resolves --batch and switches logging to the batch log. It
// returns "" when the command runs on a single file.
func batchMode(cmd *cobra.Command, args []string) (string, error) {
	batch := mustGetString(cmd, "batch")
	if batch == "" {
		return "", nil
	}
	dir, err := batchDir(batch, args)
	if err != nil {
		return "", err
	}
	if err := useBatchLog(config.FromContext(cmd.Context()), dir); err != nil {
		return "", err
	}
	return dir, nil
}

// runBatch runs fn over dir with a progress bar and prints a summary
func runBatch(dir, what string, fn func(pipeline.ProgressFunc) (*pipeline.BatchReport, error)) error {
	videos, err := pipeline.ScanVideos(dir)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		fmt.Printf("No supported videos in %s\n", dir)
		return nil
	}

	bar := progressbar.NewOptions(len(videos),
		progressbar.OptionSetDescription(what),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("videos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	report, err := fn(func(done, total int) {
		_ = bar.Set(done)
	})
	_ = bar.Finish()
	if report != nil {
		printReport(report)
	}
	if err != nil {
		return err
	}
	return report.Err()
}

func printReport(r *pipeline.BatchReport) {
	fmt.Printf("\nProcessed: %d, skipped: %d, failed: %d\n", len(r.Processed), len(r.Skipped), len(r.Failed))
	for in, out := range r.Processed {
		fmt.Printf("  %s -> %s\n", in, out)
	}
	for _, s := range r.Skipped {
		fmt.Printf("  skipped %s\n", s)
	}
	if len(r.Failed) > 0 {
		fmt.Printf("\nErrors: %d\n", len(r.Failed))
		for _, e := range r.Failed {
			fmt.Printf("  - %v\n", e)
		}
	}
}
