package ezffmpeg

import (
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Argument planning. The translation from a Context to an ffmpeg argv is a
// pure function so it can be tested without FFmpeg installed.

// resolveFFmpeg returns the ffmpeg binary for this context.
func (c *Context) resolveFFmpeg() (string, error) {
	if c.ffmpegPath != "" {
		return c.ffmpegPath, nil
	}
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
	}
	return path, nil
}

// resolveFFprobe returns the ffprobe binary for this context.
func (c *Context) resolveFFprobe() (string, error) {
	if c.ffprobePath != "" {
		return c.ffprobePath, nil
	}
	path, err := exec.LookPath("ffprobe")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFFprobeNotFound, err)
	}
	return path, nil
}

// globalArgs returns the flags shared by every invocation of this context.
func (c *Context) globalArgs() []string {
	args := []string{"-hide_banner", "-nostdin"}
	if c.logLevel != "" {
		args = append(args, "-loglevel", c.logLevel)
	}
	if c.overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}
	return args
}

// buildArgs plans the argv for the single-process execution path.
func buildArgs(c *Context) []string {
	args := c.globalArgs()

	for _, in := range c.inputs {
		args = append(args, inputArgs(in)...)
	}

	if c.filterDesc != "" {
		args = append(args, filterArgs(c.filterDesc, len(c.inputs))...)
	}

	for _, out := range c.outputs {
		args = append(args, outputArgs(out)...)
	}

	return args
}

// inputArgs renders one input's flags followed by its -i target.
func inputArgs(in *Input) []string {
	var args []string

	args = appendOptions(args, in.opts)
	if in.format != "" {
		args = append(args, "-f", in.format)
	}
	if in.start > 0 {
		args = append(args, "-ss", formatDuration(in.start))
	}
	if in.duration > 0 {
		args = append(args, "-t", formatDuration(in.duration))
	}
	if in.streamLoop != 0 {
		args = append(args, "-stream_loop", strconv.Itoa(in.streamLoop))
	}
	if in.readRate > 0 {
		args = append(args, "-readrate", strconv.FormatFloat(in.readRate, 'f', -1, 64))
	}
	if in.hwaccel != "" {
		args = append(args, "-hwaccel", in.hwaccel)
	}
	if in.hwaccelDevice != "" {
		args = append(args, "-hwaccel_device", in.hwaccelDevice)
	}
	if in.hwaccelOutputFormat != "" {
		args = append(args, "-hwaccel_output_format", in.hwaccelOutputFormat)
	}
	if in.videoDecoder != "" {
		args = append(args, "-c:v", in.videoDecoder)
	}
	if in.audioDecoder != "" {
		args = append(args, "-c:a", in.audioDecoder)
	}
	if in.subtitleDecoder != "" {
		args = append(args, "-c:s", in.subtitleDecoder)
	}

	target := in.url
	if in.reader != nil {
		target = "pipe:0"
	}
	return append(args, "-i", target)
}

// outputArgs renders one output's flags followed by its target.
func outputArgs(out *Output) []string {
	var args []string

	for _, m := range out.maps {
		args = append(args, "-map", m)
	}
	if out.videoCodec != "" {
		args = append(args, "-c:v", out.videoCodec)
	}
	if out.audioCodec != "" {
		args = append(args, "-c:a", out.audioCodec)
	}
	if out.videoBitrate > 0 {
		args = append(args, "-b:v", strconv.Itoa(out.videoBitrate))
	}
	if out.audioBitrate > 0 {
		args = append(args, "-b:a", strconv.Itoa(out.audioBitrate))
	}
	if out.maxVideoFrames > 0 {
		args = append(args, "-frames:v", strconv.FormatInt(out.maxVideoFrames, 10))
	}
	if out.maxAudioFrames > 0 {
		args = append(args, "-frames:a", strconv.FormatInt(out.maxAudioFrames, 10))
	}
	if out.videoQScale > 0 {
		args = append(args, "-q:v", strconv.Itoa(out.videoQScale))
	}
	if out.frameRate != "" {
		args = append(args, "-r", out.frameRate)
	}
	if out.size != "" {
		args = append(args, "-s", out.size)
	}
	args = appendMetadata(args, out.metadata)
	args = appendOptions(args, out.opts)
	if out.format != "" {
		args = append(args, "-f", out.format)
	}

	target := out.url
	if out.writer != nil {
		target = "pipe:1"
	}
	return append(args, target)
}

// filterArgs places the filter description. Labeled or multi-chain graphs
// and multi-input jobs need -filter_complex; a plain chain is a video
// filter. Audio-only chains can be passed via Output.Option("af", ...).
func filterArgs(desc string, inputCount int) []string {
	if isComplexFilter(desc) || inputCount > 1 {
		return []string{"-filter_complex", desc}
	}
	return []string{"-vf", desc}
}

// isComplexFilter reports whether the description uses link labels or
// multiple chains, which only -filter_complex accepts.
func isComplexFilter(desc string) bool {
	depth := 0
	for _, r := range desc {
		switch r {
		case '\'':
			// quoted expressions like 'min(160,iw)' may contain anything
			depth ^= 1
		case '[', ';':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// appendOptions renders a free-form option map in deterministic order.
func appendOptions(args []string, opts map[string]string) []string {
	if len(opts) == 0 {
		return args
	}
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-"+k, opts[k])
	}
	return args
}

func appendMetadata(args []string, metadata map[string]string) []string {
	if len(metadata) == 0 {
		return args
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-metadata", k+"="+metadata[k])
	}
	return args
}

// formatDuration renders a duration as fractional seconds the way FFmpeg
// expects it ("-ss 1.5").
func formatDuration(d time.Duration) string {
	s := strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimRight(strings.TrimRight(s, "0"), ".")
}

// rawSpec describes the raw stream moving over a pipe between the decode
// and encode halves of a split (frame pipeline) job.
type rawSpec struct {
	Type      MediaType
	Width     int
	Height    int
	FrameRate string // e.g. "30" or "30000/1001"

	SampleRate int
	Channels   int
}

// decodeArgs plans the argv of the decode half of a split job: demux and
// decode the pipeline's stream and emit it raw on stdout. streamPos is
// the type-relative position of the resolved stream, the N of "0:v:N".
func decodeArgs(c *Context, spec rawSpec, streamPos int) []string {
	args := c.globalArgs()
	args = append(args, inputArgs(c.inputs[0])...)

	switch spec.Type {
	case MediaTypeAudio:
		args = append(args,
			"-map", fmt.Sprintf("0:a:%d", streamPos),
			"-f", AudioFormatS16.FFmpegName(),
			"-ar", strconv.Itoa(spec.SampleRate),
			"-ac", strconv.Itoa(spec.Channels),
		)
	default:
		args = append(args,
			"-map", fmt.Sprintf("0:v:%d", streamPos),
			"-f", "rawvideo",
			"-pix_fmt", PixelFormatI420.FFmpegName(),
		)
	}
	return append(args, "pipe:1")
}

// encodeArgs plans the argv of the encode half of a split job: read the
// filtered raw stream from stdin and write the configured outputs. The
// spec reflects frames as they leave the Go filter chain, which may have
// resized them. The filter description, if any, applies here so user
// frame filters see unfiltered decoded frames first.
func encodeArgs(c *Context, spec rawSpec) []string {
	args := c.globalArgs()

	switch spec.Type {
	case MediaTypeAudio:
		args = append(args,
			"-f", AudioFormatS16.FFmpegName(),
			"-ar", strconv.Itoa(spec.SampleRate),
			"-ac", strconv.Itoa(spec.Channels),
		)
	default:
		rate := spec.FrameRate
		if rate == "" || rate == "0/0" {
			rate = "25"
		}
		args = append(args,
			"-f", "rawvideo",
			"-pix_fmt", PixelFormatI420.FFmpegName(),
			"-s", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
			"-r", rate,
		)
	}
	args = append(args, "-i", "pipe:0")

	// The raw stdin stream carries one media type, so a simple filter
	// chain attaches as -vf or -af accordingly.
	if c.filterDesc != "" {
		switch {
		case isComplexFilter(c.filterDesc):
			args = append(args, "-filter_complex", c.filterDesc)
		case spec.Type == MediaTypeAudio:
			args = append(args, "-af", c.filterDesc)
		default:
			args = append(args, "-vf", c.filterDesc)
		}
	}
	for _, out := range c.outputs {
		args = append(args, outputArgs(out)...)
	}
	return args
}
