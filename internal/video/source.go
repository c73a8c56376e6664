// Package video turns an encoded video file into a lazy, finite sequence of frames.
// Decoding is delegated to ffmpeg; frames travel over a pipe as PNG images.
package video

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"

	"github.com/andresmejia3/framedump/internal/types"
	"github.com/andresmejia3/framedump/internal/utils"
	"github.com/disintegration/imaging"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

const megabyte = 1024 * 1024

// maxFrameSize bounds a single PNG frame on the pipe (8K RGB is ~100MB uncompressed).
const maxFrameSize = 256 * megabyte

var (
	// ErrNotFound means the video path does not exist.
	ErrNotFound = errors.New("video not found")
	// ErrUnsupported means the path exists but could not be opened for decoding.
	ErrUnsupported = errors.New("video cannot be decoded")
)

func init() {
	// ffmpeg-go prints every compiled command line through the standard logger
	ffmpeg.LogCompiledCommand = false
}

// Source yields decoded frames in source order.
type Source interface {
	// Next returns the next frame, or false on end-of-stream or decode failure.
	Next() (types.Frame, bool)
	Close() error
}

// Opener opens a video path for decoding.
type Opener func(ctx context.Context, path string) (Source, error)

// NewOpener returns an Opener backed by ffmpeg.
func NewOpener(log *zap.Logger) Opener {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, path string) (Source, error) {
		return Open(ctx, path, log)
	}
}

// FFmpegSource decodes a video through an ffmpeg image2pipe process.
type FFmpegSource struct {
	Path   string
	Stream types.ProbeStream
	Cmd    *utils.SafeCommand

	stdout  io.ReadCloser
	scanner *bufio.Scanner
	cancel  context.CancelFunc
	log     *zap.Logger

	index   int
	done    bool
	drained bool // stdout reached EOF cleanly
	closed  bool
}

// Probe reports the first video stream of path.
// It is the "is opened" check: a nil error means ffmpeg can decode the file.
func Probe(path string) (*types.ProbeStream, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return nil, fmt.Errorf("%w: ffprobe not found: %v", ErrUnsupported, err)
	}

	out, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe: %v", ErrUnsupported, err)
	}
	return firstVideoStream([]byte(out))
}

func firstVideoStream(out []byte) (*types.ProbeStream, error) {
	var res types.ProbeOutput
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, fmt.Errorf("%w: ffprobe JSON parse error: %v", ErrUnsupported, err)
	}
	for i := range res.Streams {
		if res.Streams[i].CodecType == "video" {
			return &res.Streams[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no video stream", ErrUnsupported)
}

// Open probes path and starts the ffmpeg decoder.
func Open(ctx context.Context, path string, log *zap.Logger) (*FFmpegSource, error) {
	if log == nil {
		log = zap.NewNop()
	}

	stream, err := Probe(path)
	if err != nil {
		return nil, err
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg not found: %v", ErrUnsupported, err)
	}

	// -pix_fmt rgb24 keeps every frame 8-bit RGB regardless of the source pixel format
	ctx, cancel := context.WithCancel(ctx)
	s := ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{"format": "image2pipe", "vcodec": "png", "pix_fmt": "rgb24"}).
		GlobalArgs("-hide_banner", "-loglevel", "error")
	s.Context = ctx

	cmd := utils.NewSafeCommand(s.Compile())
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: failed to start ffmpeg: %v", ErrUnsupported, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, megabyte), maxFrameSize)
	scanner.Split(utils.SplitPNG)

	log.Debug("video opened",
		zap.String("path", path),
		zap.String("codec", stream.CodecName),
		zap.Int("width", stream.Width),
		zap.Int("height", stream.Height),
	)

	return &FFmpegSource{
		Path:    path,
		Stream:  *stream,
		Cmd:     cmd,
		stdout:  stdout,
		scanner: scanner,
		cancel:  cancel,
		log:     log,
	}, nil
}

// Next decodes the next frame. Once it returns false it keeps returning false.
func (s *FFmpegSource) Next() (types.Frame, bool) {
	if s.done || s.closed {
		return types.Frame{}, false
	}

	if !s.scanner.Scan() {
		s.done = true
		if err := s.scanner.Err(); err != nil {
			s.log.Debug("frame stream failed", zap.Int("index", s.index), zap.Error(err))
			return types.Frame{}, false
		}
		s.drained = true
		return types.Frame{}, false
	}

	img, err := imaging.Decode(bytes.NewReader(s.scanner.Bytes()))
	if err != nil {
		s.done = true
		s.log.Debug("frame decode failed", zap.Int("index", s.index), zap.Error(err))
		return types.Frame{}, false
	}

	frame := types.Frame{Index: s.index, Image: img}
	s.index++
	return frame, true
}

// Close stops the decoder and reaps the ffmpeg process.
// Stopping before end-of-stream kills ffmpeg; that exit is not reported as an error.
func (s *FFmpegSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.cancel()

	if !s.drained {
		s.cancel()
		s.stdout.Close()
		_ = s.Cmd.Wait()
		return nil
	}

	if err := s.Cmd.Wait(); err != nil {
		s.log.Debug("ffmpeg exited with error", zap.Error(err), zap.String("stderr", s.Cmd.Logs()))
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}
