package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/videoeditor/internal/config"
	"github.com/kikiluvv/videoeditor/internal/logging"
)

var (
	cfgFile string
	verbose bool

	// logCloser flushes the log file opened for the current command
	logCloser io.Closer = io.NopCloser(nil)
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "videoeditor",
	Short: "videoeditor - insert images and clips, cut, rotate and auto-orient videos",
	Long: `videoeditor edits video files with ffmpeg: it inserts still images or other
clips at a timestamp, cuts and rotates videos, and turns clips upright based on
the faces it finds in them. Every editing command also runs over a whole
directory in batch mode.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env file is optional, don't fail if not found
		_ = godotenv.Load()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlagOverrides(cmd, cfg)

		if err := initLogging(cfg, cfg.Logging.File); err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.videoeditor/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.String("log-file", "", "append logs to this file (batch mode defaults to <dir>/events.log)")
	pf.Float64P("fps", "f", 0, "frames per second of the output video (default: keep)")
	pf.String("output-format", "", "output video format (default: mp4)")
	pf.IntP("write-threads", "t", 0, "encoder threads for writing (default: CPU count - 2, at least 2)")
	pf.Bool("without-audio", false, "remove audio from the output video")
	pf.Int("workers", 0, "videos processed concurrently in batch mode")
	pf.String("work-dir", "", "directory for intermediate files (default: system temp)")

	rootCmd.AddCommand(insertImageCmd)
	rootCmd.AddCommand(insertVideoCmd)
	rootCmd.AddCommand(rotateByFacesCmd)
	rootCmd.AddCommand(facesCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(cutCmd)
	rootCmd.AddCommand(rotateCmd)
	rootCmd.AddCommand(configCmd)
}

// applyFlagOverrides lets explicitly set flags win over file and environment
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if verbose {
		cfg.Logging.Verbose = true
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = mustGetString(cmd, "log-file")
	}
	if flags.Changed("fps") {
		cfg.Editor.FPS = mustGetFloat64(cmd, "fps")
	}
	if flags.Changed("output-format") {
		cfg.Editor.OutputFormat = mustGetString(cmd, "output-format")
	}
	if flags.Changed("write-threads") {
		cfg.Editor.WriteThreads = mustGetInt(cmd, "write-threads")
	}
	if flags.Changed("without-audio") {
		cfg.Editor.WithoutAudio = mustGetBool(cmd, "without-audio")
	}
	if flags.Changed("workers") {
		cfg.Concurrency = mustGetInt(cmd, "workers")
	}
	if flags.Changed("work-dir") {
		cfg.WorkDir = mustGetString(cmd, "work-dir")
	}
}

// initLogging (re)initializes the global logger, writing to logFile as well
// when it is set
func initLogging(cfg *config.Config, logFile string) error {
	_ = logCloser.Close()

	var file *logging.FileOptions
	if logFile != "" {
		file = &logging.FileOptions{
			Path:       logFile,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		}
	}

	closer, err := logging.Init(cfg.Logging.Verbose, file)
	logCloser = closer
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if logFile != "" {
		log.Debug().Str("file", logFile).Msg("logging to file")
	}
	return nil
}

// useBatchLog sends logs to <dir>/events.log unless a log file is configured
func useBatchLog(cfg *config.Config, dir string) error {
	if cfg.Logging.File != "" {
		return nil
	}
	return initLogging(cfg, filepath.Join(dir, "events.log"))
}
