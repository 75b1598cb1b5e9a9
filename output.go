package ezffmpeg

import "io"

// Output describes one destination of a processing job. The container and
// which streams survive are inferred by FFmpeg from the target's file
// extension unless Format or codec overrides say otherwise: "out.aac"
// keeps only audio, "out.jpg" writes a single image container.
type Output struct {
	url    string
	writer io.Writer

	format string

	maxVideoFrames int64
	maxAudioFrames int64
	videoQScale    int

	videoCodec   string
	audioCodec   string
	videoBitrate int
	audioBitrate int
	frameRate    string
	size         string

	maps     []string
	metadata map[string]string
	opts     map[string]string

	pipelines []*FramePipelineBuilder
}

// NewOutput creates an output writing to a URL or file path.
func NewOutput(url string) *Output {
	return &Output{url: url}
}

// OutputToWriter creates an output streamed into w over a pipe.
// Format is mandatory for writer outputs since there is no extension to
// infer the container from.
func OutputToWriter(w io.Writer) *Output {
	return &Output{writer: w}
}

// URL returns the output URL, or "" for writer outputs.
func (o *Output) URL() string { return o.url }

// Format forces the output container format (-f).
func (o *Output) Format(format string) *Output {
	o.format = format
	return o
}

// MaxVideoFrames limits the number of video frames written, the
// equivalent of -vframes. A limit of 1 turns a video into a thumbnail.
func (o *Output) MaxVideoFrames(n int64) *Output {
	o.maxVideoFrames = n
	return o
}

// MaxAudioFrames limits the number of audio frames written (-aframes).
func (o *Output) MaxAudioFrames(n int64) *Output {
	o.maxAudioFrames = n
	return o
}

// VideoQScale sets the fixed video quality scale (-q:v). For JPEG the
// range is 2-31; 2-5 is high quality.
func (o *Output) VideoQScale(q int) *Output {
	o.videoQScale = q
	return o
}

// VideoCodec selects the video encoder, or "copy" for remuxing.
func (o *Output) VideoCodec(name string) *Output {
	o.videoCodec = name
	return o
}

// AudioCodec selects the audio encoder, or "copy" for remuxing.
func (o *Output) AudioCodec(name string) *Output {
	o.audioCodec = name
	return o
}

// VideoBitrate sets the target video bitrate in bits per second.
func (o *Output) VideoBitrate(bps int) *Output {
	o.videoBitrate = bps
	return o
}

// AudioBitrate sets the target audio bitrate in bits per second.
func (o *Output) AudioBitrate(bps int) *Output {
	o.audioBitrate = bps
	return o
}

// FrameRate forces the output frame rate (-r), e.g. "30" or "30000/1001".
func (o *Output) FrameRate(rate string) *Output {
	o.frameRate = rate
	return o
}

// Size forces the output frame size (-s), e.g. "1280x720".
func (o *Output) Size(size string) *Output {
	o.size = size
	return o
}

// Map selects which streams or filter graph labels feed this output
// ("0:a", "[thumb]", ...). Without maps FFmpeg applies its default
// stream selection.
func (o *Output) Map(spec string) *Output {
	o.maps = append(o.maps, spec)
	return o
}

// Metadata sets a metadata key on the output container.
func (o *Output) Metadata(key, value string) *Output {
	if o.metadata == nil {
		o.metadata = make(map[string]string)
	}
	o.metadata[key] = value
	return o
}

// Option sets a free-form per-output FFmpeg option.
func (o *Output) Option(key, value string) *Output {
	if o.opts == nil {
		o.opts = make(map[string]string)
	}
	o.opts[key] = value
	return o
}

// FramePipeline attaches a frame pipeline to this output. Matching against
// the job's streams happens when the scheduler starts.
func (o *Output) FramePipeline(pb *FramePipelineBuilder) *Output {
	o.pipelines = append(o.pipelines, pb)
	return o
}
