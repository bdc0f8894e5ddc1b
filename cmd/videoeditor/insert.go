package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kikiluvv/videoeditor/internal/config"
	"github.com/kikiluvv/videoeditor/internal/editor"
	"github.com/kikiluvv/videoeditor/internal/ffmpeg"
	"github.com/kikiluvv/videoeditor/internal/gui"
	"github.com/kikiluvv/videoeditor/internal/pipeline"
	"github.com/kikiluvv/videoeditor/pkg/util"
)

var insertImageCmd = &cobra.Command{
	Use:   "insert-image [video] [image]",
	Short: "Insert a still image into a video",
	Long: `Insert a still image into a video for a short duration. The image is resized
to the video frame unless --no-resize is given.

With --batch every video in a directory gets the image of the same name
(.jpg or .png) inserted. Missing paths are asked for in a file dialog.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runInsertImage,
}

var insertVideoCmd = &cobra.Command{
	Use:   "insert-video [video] [clip]",
	Short: "Insert (part of) another video into a video",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runInsertVideo,
}

func init() {
	f := insertImageCmd.Flags()
	f.StringP("output", "o", "", "output file (default: <video>-edited.<format>)")
	f.String("time", "", "insert position: seconds, [HH:]MM:SS, negative from the end, or \"end\" (default from config)")
	f.Float64("duration", 0, "seconds the image is shown (default from config)")
	f.Bool("no-resize", false, "keep the image size instead of fitting it to the video")
	f.String("method", "", "concatenation method: compose, chain or demux (default from config)")
	addBatchFlag(insertImageCmd)

	f = insertVideoCmd.Flags()
	f.StringP("output", "o", "", "output file (default: <video>-edited.<format>)")
	f.String("time", "", "insert position: seconds, [HH:]MM:SS, negative from the end, or \"end\" (default from config)")
	f.String("cut-start", "0", "start of the part of the inserted video to use")
	f.String("cut-end", "", "end of the part of the inserted video to use (default: its end)")
	f.Bool("no-resize", false, "keep the inserted video size instead of fitting it to the video")
	f.String("method", "", "concatenation method: compose, chain or demux (default from config)")
}

// insertSettings resolves the options shared by both insert commands
func insertSettings(cmd *cobra.Command, cfg *config.Config) (at time.Duration, resize bool, method ffmpeg.ConcatMethod, err error) {
	timeStr := cfg.Insert.Time
	if cmd.Flags().Changed("time") {
		timeStr = mustGetString(cmd, "time")
	}
	at, err = parseInsertTime(timeStr)
	if err != nil {
		return 0, false, "", fmt.Errorf("invalid --time: %w", err)
	}

	resize = cfg.Insert.Resize && !mustGetBool(cmd, "no-resize")

	methodStr := cfg.Editor.Method
	if cmd.Flags().Changed("method") {
		methodStr = mustGetString(cmd, "method")
	}
	method, err = ffmpeg.ParseConcatMethod(methodStr)
	if err != nil {
		return 0, false, "", err
	}
	return at, resize, method, nil
}

func runInsertImage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	at, resize, method, err := insertSettings(cmd, cfg)
	if err != nil {
		return err
	}
	seconds := cfg.Insert.Duration
	if cmd.Flags().Changed("duration") {
		seconds = mustGetFloat64(cmd, "duration")
	}
	if seconds <= 0 {
		return fmt.Errorf("--duration must be positive, got %v", seconds)
	}

	opts := pipeline.InsertImageOptions{
		At:       at,
		Duration: util.Seconds(seconds),
		Resize:   resize,
		Method:   method,
	}

	dir, err := batchMode(cmd, args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if dir != "" {
		return runBatch(dir, "inserting images", func(progress pipeline.ProgressFunc) (*pipeline.BatchReport, error) {
			return a.pipeline.BatchInsertImage(ctx, dir, opts, progress)
		})
	}

	paths, err := pickPaths(padArgs(args, 2), []gui.Request{
		gui.VideoFile("Select a video"),
		gui.ImageFile("Select an image", editor.ImageFormats),
	})
	if err != nil {
		return err
	}

	out, err := a.pipeline.InsertImage(ctx, paths[0], paths[1], mustGetString(cmd, "output"), opts)
	if err != nil {
		return err
	}
	a.logger.Info().Str("output", out).Msg("image inserted")
	fmt.Println(out)
	return nil
}

func runInsertVideo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	at, resize, method, err := insertSettings(cmd, cfg)
	if err != nil {
		return err
	}
	cutStart, err := util.ParseTimestamp(mustGetString(cmd, "cut-start"))
	if err != nil {
		return fmt.Errorf("invalid --cut-start: %w", err)
	}
	cutEnd, err := parseEndTime(mustGetString(cmd, "cut-end"))
	if err != nil {
		return fmt.Errorf("invalid --cut-end: %w", err)
	}

	paths, err := pickPaths(padArgs(args, 2), []gui.Request{
		gui.VideoFile("Select a video"),
		gui.VideoFile("Select the video to insert"),
	})
	if err != nil {
		return err
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.pipeline.InsertVideo(ctx, paths[0], paths[1], mustGetString(cmd, "output"), pipeline.InsertVideoOptions{
		At:       at,
		CutStart: cutStart,
		CutEnd:   cutEnd,
		Resize:   resize,
		Method:   method,
	})
	if err != nil {
		return err
	}
	a.logger.Info().Str("output", out).Msg("video inserted")
	fmt.Println(out)
	return nil
}

// padArgs returns args extended with empty strings to n entries
func padArgs(args []string, n int) []string {
	out := make([]string, n)
	copy(out, args)
	return out
}
