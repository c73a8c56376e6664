// Package extract writes every decoded frame of a video as a numbered JPEG file.
package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/andresmejia3/framedump/internal/video"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Status tags how far Extract got with the input video.
type Status int

const (
	StatusOpened Status = iota
	StatusNotFound
	StatusUnsupported
)

func (s Status) String() string {
	switch s {
	case StatusOpened:
		return "opened"
	case StatusNotFound:
		return "not_found"
	case StatusUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result describes a finished extraction.
type Result struct {
	Status Status
	Frames int // number of frame files written
}

// Encoder encodes img and writes it to path, replacing any existing file.
type Encoder func(img image.Image, path string) error

// SaveJPEG is the default Encoder. The format comes from the .jpg extension and
// the quality is the imaging library default.
func SaveJPEG(img image.Image, path string) error {
	return imaging.Save(img, path)
}

// FrameFileName names the output file for a zero-based frame index.
func FrameFileName(index int) string {
	return fmt.Sprintf("frame_%d.jpg", index)
}

type Extractor struct {
	open   video.Opener
	encode Encoder
	logger *zap.Logger
}

func New(open video.Opener, encode Encoder, logger *zap.Logger) *Extractor {
	if encode == nil {
		encode = SaveJPEG
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{open: open, encode: encode, logger: logger}
}

// Extract creates outputDir if needed and writes each decoded frame of videoPath
// to outputDir/frame_<N>.jpg, N counting from 0.
//
// A video that cannot be opened is not an error: the result carries the reason
// and no frame is written. Filesystem failures and cancellation are returned.
func (e *Extractor) Extract(ctx context.Context, videoPath, outputDir string) (Result, error) {
	log := e.logger.With(zap.String("video", videoPath), zap.String("output_dir", outputDir))

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output directory: %w", err)
	}

	src, err := e.open(ctx, videoPath)
	if err != nil {
		res := Result{Status: classify(err)}
		log.Debug("video could not be opened", zap.Stringer("status", res.Status), zap.Error(err))
		return res, nil
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Debug("decoder did not shut down cleanly", zap.Error(err))
		}
	}()

	res := Result{Status: StatusOpened}
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		frame, ok := src.Next()
		if !ok {
			break
		}

		path := filepath.Join(outputDir, FrameFileName(res.Frames))
		if err := e.encode(frame.Image, path); err != nil {
			return res, fmt.Errorf("write frame %d: %w", res.Frames, err)
		}
		res.Frames++
	}

	log.Debug("frames extracted", zap.Int("count", res.Frames))
	return res, nil
}

func classify(err error) Status {
	if errors.Is(err, video.ErrNotFound) {
		return StatusNotFound
	}
	return StatusUnsupported
}
