package ezffmpeg

// Core frame and sample types moving through frame pipelines.

// PixelFormat represents the raw video pixel formats the pipeline runner
// can move between FFmpeg processes.
type PixelFormat int

const (
	PixelFormatI420  PixelFormat = iota // YUV 4:2:0 planar (Y + U + V)
	PixelFormatNV12                     // YUV 4:2:0 semi-planar (Y + interleaved UV)
	PixelFormatRGB24                    // Packed RGB, 3 bytes per pixel
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatI420:
		return "I420"
	case PixelFormatNV12:
		return "NV12"
	case PixelFormatRGB24:
		return "RGB24"
	default:
		return "Unknown"
	}
}

// FFmpegName returns the FFmpeg pix_fmt name for this format.
func (p PixelFormat) FFmpegName() string {
	switch p {
	case PixelFormatI420:
		return "yuv420p"
	case PixelFormatNV12:
		return "nv12"
	case PixelFormatRGB24:
		return "rgb24"
	default:
		return ""
	}
}

// PlaneCount returns the number of planes for this pixel format.
func (p PixelFormat) PlaneCount() int {
	switch p {
	case PixelFormatI420:
		return 3 // Y, U, V
	case PixelFormatNV12:
		return 2 // Y, UV
	case PixelFormatRGB24:
		return 1 // Packed
	default:
		return 0
	}
}

// FrameSize returns the byte size of one raw frame at the given dimensions,
// or 0 for unknown formats.
func (p PixelFormat) FrameSize(width, height int) int {
	switch p {
	case PixelFormatI420, PixelFormatNV12:
		return width*height + 2*((width/2)*(height/2))
	case PixelFormatRGB24:
		return width * height * 3
	default:
		return 0
	}
}

// AudioFormat represents raw audio sample formats.
type AudioFormat int

const (
	AudioFormatS16 AudioFormat = iota // Signed 16-bit PCM, interleaved
	AudioFormatF32                    // 32-bit float, interleaved
)

func (a AudioFormat) String() string {
	switch a {
	case AudioFormatS16:
		return "S16"
	case AudioFormatF32:
		return "F32"
	default:
		return "Unknown"
	}
}

// FFmpegName returns the FFmpeg sample format/muxer name for this format.
func (a AudioFormat) FFmpegName() string {
	switch a {
	case AudioFormatS16:
		return "s16le"
	case AudioFormatF32:
		return "f32le"
	default:
		return ""
	}
}

// BytesPerSample returns the number of bytes per sample for this format.
func (a AudioFormat) BytesPerSample() int {
	switch a {
	case AudioFormatS16:
		return 2
	case AudioFormatF32:
		return 4
	default:
		return 0
	}
}

// VideoFrame represents a raw video frame.
// The Data slices may alias the runner's read buffers; use Clone to keep a
// frame beyond the current filter call.
type VideoFrame struct {
	Data      [][]byte    // Plane data (1-3 planes depending on format)
	Stride    []int       // Stride for each plane in bytes
	Width     int         // Frame width in pixels
	Height    int         // Frame height in pixels
	Format    PixelFormat // Pixel format
	PTS       int64       // Presentation index within the job (frame number)
	Timestamp int64       // Presentation time in nanoseconds
}

// Clone creates a deep copy of the video frame.
func (f *VideoFrame) Clone() *VideoFrame {
	clone := &VideoFrame{
		Data:      make([][]byte, len(f.Data)),
		Stride:    make([]int, len(f.Stride)),
		Width:     f.Width,
		Height:    f.Height,
		Format:    f.Format,
		PTS:       f.PTS,
		Timestamp: f.Timestamp,
	}
	copy(clone.Stride, f.Stride)
	for i, plane := range f.Data {
		if plane != nil {
			clone.Data[i] = make([]byte, len(plane))
			copy(clone.Data[i], plane)
		}
	}
	return clone
}

// I420Size returns the total buffer size needed for an I420 frame.
func I420Size(width, height int) int {
	ySize := width * height
	uvSize := (width / 2) * (height / 2)
	return ySize + uvSize*2
}

// NewI420Frame allocates a contiguous I420 frame with plane slices set up.
func NewI420Frame(width, height int) *VideoFrame {
	buf := make([]byte, I420Size(width, height))
	ySize := width * height
	uvSize := (width / 2) * (height / 2)
	return &VideoFrame{
		Data: [][]byte{
			buf[:ySize],
			buf[ySize : ySize+uvSize],
			buf[ySize+uvSize:],
		},
		Stride: []int{width, width / 2, width / 2},
		Width:  width,
		Height: height,
		Format: PixelFormatI420,
	}
}

// AudioSamples represents raw interleaved audio samples.
type AudioSamples struct {
	Data        []byte      // Sample data
	SampleRate  int         // Sample rate (e.g., 48000)
	Channels    int         // Number of channels (1 = mono, 2 = stereo)
	SampleCount int         // Number of samples (per channel)
	Format      AudioFormat // Sample format
	Timestamp   int64       // Presentation time in nanoseconds
}

// Clone creates a deep copy of the audio samples.
func (s *AudioSamples) Clone() *AudioSamples {
	clone := &AudioSamples{
		SampleRate:  s.SampleRate,
		Channels:    s.Channels,
		SampleCount: s.SampleCount,
		Format:      s.Format,
		Timestamp:   s.Timestamp,
	}
	if s.Data != nil {
		clone.Data = make([]byte, len(s.Data))
		copy(clone.Data, s.Data)
	}
	return clone
}

// Frame is the unit passed through a FramePipeline: a video frame or a
// block of audio samples, depending on the pipeline's media type.
type Frame struct {
	Type  MediaType
	Video *VideoFrame   // Set when Type == MediaTypeVideo
	Audio *AudioSamples // Set when Type == MediaTypeAudio
}

// NewVideoFrame wraps a raw video frame for pipeline processing.
func NewVideoFrame(v *VideoFrame) *Frame {
	return &Frame{Type: MediaTypeVideo, Video: v}
}

// NewAudioFrame wraps audio samples for pipeline processing.
func NewAudioFrame(a *AudioSamples) *Frame {
	return &Frame{Type: MediaTypeAudio, Audio: a}
}

// Clone creates a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	clone := &Frame{Type: f.Type}
	if f.Video != nil {
		clone.Video = f.Video.Clone()
	}
	if f.Audio != nil {
		clone.Audio = f.Audio.Clone()
	}
	return clone
}
