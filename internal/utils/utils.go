package utils

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os/exec"
)

// --- 1. Process Safety & Command Wrapping ---

// SafeCommand wraps a standard exec.Cmd with a buffer to catch Stderr (FFmpeg logs)
// This ensures we don't lose the decoder's diagnostics if it exits early.
type SafeCommand struct {
	*exec.Cmd
	Stderr *bytes.Buffer
}

// NewSafeCommand attaches a buffer to the Stderr of an already compiled command.
// It prepares the command for execution but does not start it.
func NewSafeCommand(cmd *exec.Cmd) *SafeCommand {
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	return &SafeCommand{Cmd: cmd, Stderr: stderr}
}

// Logs returns whatever the process wrote to Stderr so far.
func (s *SafeCommand) Logs() string {
	return string(bytes.TrimSpace(s.Stderr.Bytes()))
}

// --- 2. Frame Splitting ---

var (
	PNGSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	pngIEND      = []byte("IEND")
)

// maxChunkLen is the largest chunk length the PNG format allows (2^31 - 1).
const maxChunkLen = 1<<31 - 1

// ErrChunkTooLarge is returned when a chunk header carries an impossible length.
var ErrChunkTooLarge = errors.New("png chunk length exceeds 2^31-1")

// SplitPNG is the custom splitter for bufio.Scanner
// It locates the PNG signature and walks the chunk headers up to IEND to extract full images.
// Walking chunks (instead of searching for the IEND marker) keeps compressed pixel
// data that happens to contain the marker bytes from ending a frame early.
func SplitPNG(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	start := bytes.Index(data, PNGSignature)
	if start == -1 {
		// Drop garbage but keep a possible partial signature at the tail
		if keep := len(PNGSignature) - 1; len(data) > keep {
			return len(data) - keep, nil, nil
		}
		return 0, nil, nil
	}

	pos := start + len(PNGSignature)
	for {
		// Chunk: [Length:4][Type:4][Data:Length][CRC:4]
		if len(data)-pos < 8 {
			return start, nil, nil
		}
		n := binary.BigEndian.Uint32(data[pos : pos+4])
		if n > maxChunkLen {
			return 0, nil, ErrChunkTooLarge
		}
		end := pos + 12 + int(n)
		if len(data) < end {
			return start, nil, nil
		}
		if bytes.Equal(data[pos+4:pos+8], pngIEND) {
			return end, data[start:end], nil
		}
		pos = end
	}
}
