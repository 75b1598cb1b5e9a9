package ezffmpeg

import "testing"

func TestNewI420Frame(t *testing.T) {
	f := NewI420Frame(320, 240)
	if len(f.Data) != 3 {
		t.Fatalf("planes = %d", len(f.Data))
	}
	if len(f.Data[0]) != 320*240 {
		t.Errorf("Y size = %d", len(f.Data[0]))
	}
	if len(f.Data[1]) != 160*120 || len(f.Data[2]) != 160*120 {
		t.Errorf("chroma sizes = %d, %d", len(f.Data[1]), len(f.Data[2]))
	}
	if f.Stride[0] != 320 || f.Stride[1] != 160 || f.Stride[2] != 160 {
		t.Errorf("strides = %v", f.Stride)
	}
	if f.Format != PixelFormatI420 {
		t.Errorf("format = %v", f.Format)
	}
}

func TestVideoFrameClone(t *testing.T) {
	f := NewI420Frame(16, 16)
	f.Data[0][0] = 42
	f.PTS = 7

	c := f.Clone()
	c.Data[0][0] = 99

	if f.Data[0][0] != 42 {
		t.Error("clone aliases the original buffer")
	}
	if c.PTS != 7 || c.Width != 16 {
		t.Errorf("clone fields = %+v", c)
	}
}

func TestAudioSamplesClone(t *testing.T) {
	a := &AudioSamples{
		Data:        []byte{1, 2, 3, 4},
		SampleRate:  48000,
		Channels:    2,
		SampleCount: 1,
		Format:      AudioFormatS16,
	}
	c := a.Clone()
	c.Data[0] = 9
	if a.Data[0] != 1 {
		t.Error("clone aliases the original buffer")
	}
}

func TestPixelFormatFrameSize(t *testing.T) {
	if got := PixelFormatI420.FrameSize(320, 240); got != 320*240*3/2 {
		t.Errorf("I420 size = %d", got)
	}
	if got := PixelFormatRGB24.FrameSize(320, 240); got != 320*240*3 {
		t.Errorf("RGB24 size = %d", got)
	}
	if got := I420Size(320, 240); got != PixelFormatI420.FrameSize(320, 240) {
		t.Errorf("I420Size = %d", got)
	}
}

func TestFFmpegNames(t *testing.T) {
	if PixelFormatI420.FFmpegName() != "yuv420p" {
		t.Error("I420 name")
	}
	if AudioFormatS16.FFmpegName() != "s16le" {
		t.Error("S16 name")
	}
	if AudioFormatF32.BytesPerSample() != 4 {
		t.Error("F32 bytes")
	}
}

func TestMediaTypeLinkLabel(t *testing.T) {
	if got := MediaTypeVideo.LinkLabel(0); got != "0:v" {
		t.Errorf("LinkLabel = %q", got)
	}
	if got := MediaTypeAudio.LinkLabel(1); got != "1:a" {
		t.Errorf("LinkLabel = %q", got)
	}
}
