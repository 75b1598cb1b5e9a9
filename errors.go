package ezffmpeg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotSupported is returned when an optional operation is not supported
// on the current platform.
var ErrNotSupported = errors.New("operation not supported")

var (
	// ErrNoInput is returned by Build when no input was configured.
	ErrNoInput = errors.New("at least one input is required")

	// ErrNoOutput is returned by Build when no output was configured.
	ErrNoOutput = errors.New("at least one output is required")

	// ErrOutputFormatRequired is returned for writer outputs without an
	// explicit container format.
	ErrOutputFormatRequired = errors.New("writer outputs require an explicit format")

	// ErrMultipleReaderInputs is returned when more than one input reads
	// from an io.Reader; only one stdin pipe exists per job.
	ErrMultipleReaderInputs = errors.New("only one reader input is supported per job")

	// ErrMultipleWriterOutputs is returned when more than one output
	// writes to an io.Writer.
	ErrMultipleWriterOutputs = errors.New("only one writer output is supported per job")

	// ErrMixedPipelineTypes is returned when a job carries frame
	// pipelines for more than one media type.
	ErrMixedPipelineTypes = errors.New("frame pipelines of mixed media types in one job")

	// ErrPipelineInput is returned when a job with frame pipelines has
	// more than one input or a reader input; the split runner probes and
	// decodes exactly one seekable source.
	ErrPipelineInput = errors.New("frame pipelines require a single URL input")

	// ErrPipelineStreamConflict is returned when a job's frame pipelines
	// pin different streams; the split runner processes one stream.
	ErrPipelineStreamConflict = errors.New("frame pipelines pin different streams")

	// ErrStreamNotFound is returned when a pipeline's pinned stream index
	// or link label names no matching stream of the job's input.
	ErrStreamNotFound = errors.New("pinned stream not found in input")

	// ErrAlreadyStarted is returned by Start on a scheduler that is
	// already running.
	ErrAlreadyStarted = errors.New("scheduler already started")

	// ErrNotStarted is returned by Wait/Pause/Resume before Start.
	ErrNotStarted = errors.New("scheduler not started")

	// ErrAborted is the terminal result of an aborted job.
	ErrAborted = errors.New("job aborted")

	// ErrFFmpegNotFound is returned when the ffmpeg binary cannot be
	// located.
	ErrFFmpegNotFound = errors.New("ffmpeg binary not found")

	// ErrFFprobeNotFound is returned when the ffprobe binary cannot be
	// located.
	ErrFFprobeNotFound = errors.New("ffprobe binary not found")
)

// ProcessError is the terminal error of a job whose FFmpeg process exited
// with a non-zero status. Stderr holds the tail of the process's error
// output.
type ProcessError struct {
	Name     string // process role: "ffmpeg", "ffmpeg-decode", "ffmpeg-encode", "ffprobe"
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s exited with code %d", e.Name, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Name, e.ExitCode, msg)
}

// FilterError wraps a failure raised by a user FrameFilter, identifying
// the filter by its pipeline name.
type FilterError struct {
	Filter string // name the filter was registered under
	Stage  string // "init", "filter", "request", "uninit"
	Err    error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("frame filter %q failed during %s: %v", e.Filter, e.Stage, e.Err)
}

func (e *FilterError) Unwrap() error { return e.Err }
