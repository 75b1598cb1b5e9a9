package ezffmpeg

import (
	"io"
	"time"
)

// Input describes one source of a processing job. Most callers only need
// NewInput; the setters mirror FFmpeg's per-input options and return the
// receiver for chaining.
type Input struct {
	url    string
	reader io.Reader

	format     string
	start      time.Duration
	duration   time.Duration
	streamLoop int
	readRate   float64

	videoDecoder    string
	audioDecoder    string
	subtitleDecoder string

	hwaccel             string
	hwaccelDevice       string
	hwaccelOutputFormat string

	opts map[string]string

	pipelines []*FramePipelineBuilder
}

// NewInput creates an input reading from a URL or file path.
func NewInput(url string) *Input {
	return &Input{url: url}
}

// InputFromReader creates an input streamed from r over a pipe.
//
// Only formats that can be demuxed without seeking work over a pipe
// (e.g. FLV, MPEG-TS, WAV, raw bitstreams). Set Format when the container
// cannot be detected from the leading bytes.
func InputFromReader(r io.Reader) *Input {
	return &Input{reader: r}
}

// URL returns the input URL, or "" for reader inputs.
func (in *Input) URL() string { return in.url }

// Format forces the input container format instead of autodetection.
func (in *Input) Format(format string) *Input {
	in.format = format
	return in
}

// StartTime seeks the input before demuxing (-ss).
func (in *Input) StartTime(d time.Duration) *Input {
	in.start = d
	return in
}

// RecordingTime limits how much of the input is read (-t).
func (in *Input) RecordingTime(d time.Duration) *Input {
	in.duration = d
	return in
}

// StreamLoop loops the input the given number of extra times;
// -1 loops forever.
func (in *Input) StreamLoop(n int) *Input {
	in.streamLoop = n
	return in
}

// ReadRate throttles demuxing relative to native frame rate
// (1.0 = realtime).
func (in *Input) ReadRate(rate float64) *Input {
	in.readRate = rate
	return in
}

// VideoDecoder overrides the decoder used for video streams.
func (in *Input) VideoDecoder(name string) *Input {
	in.videoDecoder = name
	return in
}

// AudioDecoder overrides the decoder used for audio streams.
func (in *Input) AudioDecoder(name string) *Input {
	in.audioDecoder = name
	return in
}

// SubtitleDecoder overrides the decoder used for subtitle streams.
func (in *Input) SubtitleDecoder(name string) *Input {
	in.subtitleDecoder = name
	return in
}

// HWAccel selects a hardware acceleration method ("cuda", "videotoolbox",
// "auto", ...). The nvdec/cuvid aliases are normalized to cuda the way
// FFmpeg itself does.
func (in *Input) HWAccel(name string) *Input {
	if name == "nvdec" || name == "cuvid" {
		name = "cuda"
	}
	in.hwaccel = name
	return in
}

// HWAccelDevice selects the device used for hardware acceleration.
func (in *Input) HWAccelDevice(device string) *Input {
	in.hwaccelDevice = device
	return in
}

// HWAccelOutputFormat selects the pixel format hardware frames are
// delivered in.
func (in *Input) HWAccelOutputFormat(format string) *Input {
	in.hwaccelOutputFormat = format
	return in
}

// Option sets a free-form per-input FFmpeg option (the dictionary options
// of the native API). The leading dash is added by the planner.
func (in *Input) Option(key, value string) *Input {
	if in.opts == nil {
		in.opts = make(map[string]string)
	}
	in.opts[key] = value
	return in
}

// FramePipeline attaches a frame pipeline to this input. The pipeline is
// built by the scheduler once stream layout is known.
func (in *Input) FramePipeline(pb *FramePipelineBuilder) *Input {
	in.pipelines = append(in.pipelines, pb)
	return in
}
