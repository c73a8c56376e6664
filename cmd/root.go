package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/framedump/internal/extract"
	"github.com/andresmejia3/framedump/internal/logger"
	"github.com/andresmejia3/framedump/internal/video"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Options holds the positional arguments of the root command
type Options struct {
	VideoPath     string
	OutputDirPath string
}

// logLevel keeps normal runs quiet; only write faults are printed.
const logLevel = "warn"

// Version is the application version.
const Version = "0.1.0"

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "framedump <video_path> <output_dir_path>",
		Short:   "Write every frame of a video as output_dir_path/frame_<N>.jpg",
		Version: Version, // This enables the --version flag
		Args:    cobra.ExactArgs(2),
		// Execute prints the error once
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runExtract(cmd.Context(), Options{VideoPath: args[0], OutputDirPath: args[1]})
		},
	}
}

// runExtract wires the ffmpeg decoder and the JPEG encoder into the extractor.
// A video that cannot be opened is not an error: the run succeeds with no frames.
func runExtract(ctx context.Context, opts Options) error {
	log, err := logger.New(logLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ex := extract.New(video.NewOpener(log), extract.SaveJPEG, log)
	res, err := ex.Extract(ctx, opts.VideoPath, opts.OutputDirPath)
	if err != nil {
		log.Error("extraction failed",
			zap.String("video", opts.VideoPath),
			zap.Int("frames_written", res.Frames),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
