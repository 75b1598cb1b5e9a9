package ezffmpeg

import (
	"reflect"
	"testing"
	"time"
)

func TestBuildArgsAudioExtraction(t *testing.T) {
	c, err := NewContext().
		InputURL("test.mp4").
		OutputURL("output.aac").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
		"-i", "test.mp4",
		"output.aac",
	}
	if got := buildArgs(c); !reflect.DeepEqual(got, want) {
		t.Errorf("argv = %v, want %v", got, want)
	}
}

func TestBuildArgsThumbnail(t *testing.T) {
	c, err := NewContext().
		InputURL("test.mp4").
		FilterDesc("scale='min(160,iw)':-1").
		Output(NewOutput("thumbnail.jpg").
			MaxVideoFrames(1).
			VideoQScale(2)).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
		"-i", "test.mp4",
		"-vf", "scale='min(160,iw)':-1",
		"-frames:v", "1",
		"-q:v", "2",
		"thumbnail.jpg",
	}
	if got := buildArgs(c); !reflect.DeepEqual(got, want) {
		t.Errorf("argv = %v, want %v", got, want)
	}
}

func TestBuildArgsInputOptions(t *testing.T) {
	c, err := NewContext().
		Input(NewInput("in.mkv").
			StartTime(1500 * time.Millisecond).
			RecordingTime(10 * time.Second).
			HWAccel("nvdec").
			Format("matroska")).
		Output(NewOutput("out.mp4").
			VideoCodec("libx264").
			AudioCodec("copy").
			Map("0:v").
			Map("0:a").
			Metadata("title", "demo")).
		Overwrite(false).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error", "-n",
		"-f", "matroska",
		"-ss", "1.5",
		"-t", "10",
		"-hwaccel", "cuda",
		"-i", "in.mkv",
		"-map", "0:v",
		"-map", "0:a",
		"-c:v", "libx264",
		"-c:a", "copy",
		"-metadata", "title=demo",
		"out.mp4",
	}
	if got := buildArgs(c); !reflect.DeepEqual(got, want) {
		t.Errorf("argv = %v, want %v", got, want)
	}
}

func TestIsComplexFilter(t *testing.T) {
	tests := []struct {
		desc string
		want bool
	}{
		{"scale='min(160,iw)':-1", false},
		{"hue=s=0", false},
		{"[0:v]scale=160:-1[thumb]", true},
		{"scale=160:-1;hue=s=0", true},
		{"aselect='between(t,0,10)'", false},
	}
	for _, tt := range tests {
		if got := isComplexFilter(tt.desc); got != tt.want {
			t.Errorf("isComplexFilter(%q) = %v, want %v", tt.desc, got, tt.want)
		}
	}
}

func TestFilterArgsMultiInput(t *testing.T) {
	got := filterArgs("overlay", 2)
	want := []string{"-filter_complex", "overlay"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterArgs = %v, want %v", got, want)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{time.Second, "1"},
		{1500 * time.Millisecond, "1.5"},
		{33 * time.Millisecond, "0.033"},
		{2 * time.Minute, "120"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestDecodeArgsVideo(t *testing.T) {
	c := mustPipelineContext(t, MediaTypeVideo)
	spec := rawSpec{Type: MediaTypeVideo, Width: 320, Height: 240, FrameRate: "30"}

	want := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
		"-i", "in.mp4",
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "yuv420p",
		"pipe:1",
	}
	if got := decodeArgs(c, spec, 0); !reflect.DeepEqual(got, want) {
		t.Errorf("argv = %v, want %v", got, want)
	}
}

func TestDecodeArgsMapsPinnedStream(t *testing.T) {
	c := mustPipelineContext(t, MediaTypeVideo)

	got := decodeArgs(c, rawSpec{Type: MediaTypeVideo, Width: 320, Height: 240}, 1)
	if !containsPair(got, "-map", "0:v:1") {
		t.Errorf("argv = %v, want -map 0:v:1", got)
	}

	got = decodeArgs(mustPipelineContext(t, MediaTypeAudio),
		rawSpec{Type: MediaTypeAudio, SampleRate: 48000, Channels: 2}, 2)
	if !containsPair(got, "-map", "0:a:2") {
		t.Errorf("argv = %v, want -map 0:a:2", got)
	}
}

func containsPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestEncodeArgsVideo(t *testing.T) {
	c := mustPipelineContext(t, MediaTypeVideo)
	spec := rawSpec{Type: MediaTypeVideo, Width: 320, Height: 240, FrameRate: "30000/1001"}

	want := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "yuv420p",
		"-s", "320x240",
		"-r", "30000/1001",
		"-i", "pipe:0",
		"out.mp4",
	}
	if got := encodeArgs(c, spec); !reflect.DeepEqual(got, want) {
		t.Errorf("argv = %v, want %v", got, want)
	}
}

func TestEncodeArgsAudio(t *testing.T) {
	c := mustPipelineContext(t, MediaTypeAudio)
	spec := rawSpec{Type: MediaTypeAudio, SampleRate: 48000, Channels: 2}

	want := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
		"-f", "s16le",
		"-ar", "48000",
		"-ac", "2",
		"-i", "pipe:0",
		"out.mp4",
	}
	if got := encodeArgs(c, spec); !reflect.DeepEqual(got, want) {
		t.Errorf("argv = %v, want %v", got, want)
	}
}

func TestEncodeArgsAudioFilterFlag(t *testing.T) {
	c, err := NewContext().
		Input(NewInput("in.mp4").
			FramePipeline(NewFramePipeline(MediaTypeAudio).Filter("nop", NopFilter{Type: MediaTypeAudio}))).
		FilterDesc("volume=0.5").
		OutputURL("out.aac").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	got := encodeArgs(c, rawSpec{Type: MediaTypeAudio, SampleRate: 48000, Channels: 2})
	if !containsPair(got, "-af", "volume=0.5") {
		t.Errorf("argv = %v, want -af volume=0.5", got)
	}
	if containsPair(got, "-vf", "volume=0.5") {
		t.Errorf("argv = %v, audio job must not use -vf", got)
	}
}

func mustPipelineContext(t *testing.T, mt MediaType) *Context {
	t.Helper()
	c, err := NewContext().
		Input(NewInput("in.mp4").
			FramePipeline(NewFramePipeline(mt).Filter("nop", NopFilter{Type: mt}))).
		OutputURL("out.mp4").
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return c
}
