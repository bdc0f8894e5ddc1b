package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kikiluvv/videoeditor/internal/facesearch"
	"github.com/kikiluvv/videoeditor/internal/gui"
	"github.com/kikiluvv/videoeditor/internal/pipeline"
	"github.com/kikiluvv/videoeditor/pkg/util"
)

var rotateByFacesCmd = &cobra.Command{
	Use:   "rotate-by-faces [video]",
	Short: "Rotate a video so the faces in it are upright",
	Long: `Sample frames of a video, look for faces under each of the four rotations
and rotate the video by the one that finds them. Videos without faces are
written unrotated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRotateByFaces,
}

var facesCmd = &cobra.Command{
	Use:   "faces <video>",
	Short: "Print where faces sit in a video and how it is rotated",
	Args:  cobra.ExactArgs(1),
	RunE:  runFaces,
}

func init() {
	rotateByFacesCmd.Flags().StringP("output", "o", "", "output file (default: <video>-edited.<format>)")
	addBatchFlag(rotateByFacesCmd)

	facesCmd.Flags().String("snapshot", "", "write an upright frame to this image file")
	facesCmd.Flags().String("at", "0", "timestamp of the snapshot frame")
}

func runRotateByFaces(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dir, err := batchMode(cmd, args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if dir != "" {
		return runBatch(dir, "rotating by faces", func(progress pipeline.ProgressFunc) (*pipeline.BatchReport, error) {
			return a.pipeline.BatchRotateByFaces(ctx, dir, progress)
		})
	}

	paths, err := pickPaths(padArgs(args, 1), []gui.Request{gui.VideoFile("Select a video")})
	if err != nil {
		return err
	}

	out, err := a.pipeline.RotateByFaces(ctx, paths[0], mustGetString(cmd, "output"))
	if err != nil {
		return err
	}
	a.logger.Info().Str("output", out).Msg("video rotated by faces")
	fmt.Println(out)
	return nil
}

func runFaces(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input := args[0]

	at, err := util.ParseTimestamp(mustGetString(cmd, "at"))
	if err != nil {
		return fmt.Errorf("invalid --at: %w", err)
	}

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	orientation, err := a.pipeline.EstimateOrientation(ctx, input)
	if errors.Is(err, facesearch.ErrNoFaces) {
		fmt.Printf("%s: no faces found\n", filepath.Base(input))
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s:\n", filepath.Base(input))
	fmt.Printf("  face column: %d\n", orientation.BucketX)
	fmt.Printf("  face row:    %d\n", orientation.BucketY)
	fmt.Printf("  rotation:    %d degrees\n", orientation.Rotation)

	snapshot := mustGetString(cmd, "snapshot")
	if snapshot == "" {
		return nil
	}
	if err := a.ffmpeg.ExtractFrame(ctx, input, snapshot, at, int(orientation.Rotation)); err != nil {
		return err
	}
	fmt.Printf("  snapshot:    %s\n", snapshot)
	return nil
}
