package ezffmpeg

import (
	"bytes"
	"testing"
)

func wavHeader() []byte {
	b := make([]byte, 44)
	copy(b[0:4], "RIFF")
	copy(b[8:12], "WAVE")
	copy(b[12:16], "fmt ")
	return b
}

func TestDetectFormatWAV(t *testing.T) {
	info := DetectFormat(wavHeader())
	if info.Name != "wav" {
		t.Errorf("Name = %q, want wav", info.Name)
	}
	if !info.IsMedia() {
		t.Error("IsMedia = false")
	}
}

func TestDetectFormatNonMedia(t *testing.T) {
	info := DetectFormat([]byte("plain text, definitely not a container"))
	if info.IsMedia() {
		t.Errorf("IsMedia = true for %q", info.MIME)
	}
	if info.MIME == "" {
		t.Error("MIME should still be reported")
	}
}

func TestDetectFormatReader(t *testing.T) {
	info, err := DetectFormatReader(bytes.NewReader(wavHeader()))
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "wav" {
		t.Errorf("Name = %q, want wav", info.Name)
	}
}

func TestExtensionMediaType(t *testing.T) {
	tests := []struct {
		url  string
		want MediaType
	}{
		{"output.aac", MediaTypeAudio},
		{"song.mp3", MediaTypeAudio},
		{"movie.mp4", MediaTypeVideo},
		{"thumb.jpg", MediaTypeVideo},
		{"/tmp/dir.mp4/clip.mkv", MediaTypeVideo},
		{"notes.txt", MediaTypeUnknown},
		{"noextension", MediaTypeUnknown},
	}
	for _, tt := range tests {
		if got := ExtensionMediaType(tt.url); got != tt.want {
			t.Errorf("ExtensionMediaType(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestMuxerForTarget(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"out.mp4", "mp4"},
		{"out.mkv", "matroska"},
		{"out.aac", "adts"},
		{"out.ts", "mpegts"},
		{"thumb.jpg", "image2"},
		{"OUT.MP4", "mp4"},
		{"data.bin", ""},
	}
	for _, tt := range tests {
		if got := MuxerForTarget(tt.url); got != tt.want {
			t.Errorf("MuxerForTarget(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func FuzzDetectFormat(f *testing.F) {
	f.Add([]byte{})
	f.Add(wavHeader())
	f.Add([]byte("RIFF"))
	f.Add(bytes.Repeat([]byte{0xFF}, 64))

	f.Fuzz(func(t *testing.T, data []byte) {
		a := DetectFormat(data)
		b := DetectFormat(data)
		if a != b {
			t.Errorf("non-deterministic detection: %+v vs %+v", a, b)
		}
	})
}
