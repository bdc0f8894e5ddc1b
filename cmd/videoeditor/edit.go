package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kikiluvv/videoeditor/internal/editor"
	"github.com/kikiluvv/videoeditor/pkg/util"
)

var probeCmd = &cobra.Command{
	Use:   "probe <video>",
	Short: "Print video metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.ffmpeg.ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w, h := info.DisplaySize()
		fmt.Printf("%s:\n", filepath.Base(info.FilePath))
		fmt.Printf("  duration: %s\n", util.FormatDuration(info.Duration))
		fmt.Printf("  video:    %s %dx%d @ %.3f fps", info.VideoCodec, info.Width, info.Height, info.FPS)
		if info.Rotation != 0 {
			fmt.Printf(" (rotated %d, shown %dx%d)", info.Rotation, w, h)
		}
		fmt.Println()
		if info.HasAudio {
			fmt.Printf("  audio:    %s", info.AudioCodec)
			if info.AudioBitrate > 0 {
				fmt.Printf(" %d kb/s", info.AudioBitrate/1000)
			}
			fmt.Println()
		} else {
			fmt.Println("  audio:    none")
		}
		if info.Bitrate > 0 {
			fmt.Printf("  bitrate:  %d kb/s\n", info.Bitrate/1000)
		}
		return nil
	},
}

var cutCmd = &cobra.Command{
	Use:   "cut <video>",
	Short: "Keep only part of a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		start, err := util.ParseTimestamp(mustGetString(cmd, "start"))
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		end, err := parseEndTime(mustGetString(cmd, "end"))
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}

		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.pipeline.Edit(ctx, args[0], mustGetString(cmd, "output"), func(ed *editor.Editor) error {
			return ed.Cut(ctx, start, end)
		})
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var rotateCmd = &cobra.Command{
	Use:   "rotate <video>",
	Short: "Rotate a video counter-clockwise by 90, 180 or 270 degrees",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		angle := mustGetInt(cmd, "angle")

		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.pipeline.Edit(ctx, args[0], mustGetString(cmd, "output"), func(ed *editor.Editor) error {
			return ed.Rotate(ctx, angle)
		})
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	cutCmd.Flags().String("start", "0", "start of the part to keep")
	cutCmd.Flags().String("end", "", "end of the part to keep (default: end of the video)")
	cutCmd.Flags().StringP("output", "o", "", "output file (default: <video>-edited.<format>)")

	rotateCmd.Flags().Int("angle", 90, "counter-clockwise angle: 90, 180 or 270")
	rotateCmd.Flags().StringP("output", "o", "", "output file (default: <video>-edited.<format>)")
}
