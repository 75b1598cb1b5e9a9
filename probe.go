package ezffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Container probing via ffprobe. The JSON parsing is separated from
// process execution so it can be tested with canned output.

// StreamInfo describes one stream of a probed container.
type StreamInfo struct {
	Index        int
	CodecName    string
	Type         MediaType
	Width        int
	Height       int
	PixelFormat  string
	AvgFrameRate string // FFmpeg rational, e.g. "30000/1001"
	SampleRate   int
	Channels     int
	Duration     time.Duration
	BitRate      int64
	Metadata     map[string]string
}

// ContainerInfo describes a probed media file.
type ContainerInfo struct {
	FormatName string // comma-separated demuxer names, e.g. "mov,mp4,m4a,3gp,3g2,mj2"
	Duration   time.Duration
	Size       int64
	BitRate    int64
	Metadata   map[string]string
	Streams    []StreamInfo
}

// FirstStream returns the first stream of the given type, or nil.
func (ci *ContainerInfo) FirstStream(t MediaType) *StreamInfo {
	for i := range ci.Streams {
		if ci.Streams[i].Type == t {
			return &ci.Streams[i]
		}
	}
	return nil
}

// HasStream reports whether the container carries a stream of the given type.
func (ci *ContainerInfo) HasStream(t MediaType) bool {
	return ci.FirstStream(t) != nil
}

// Probe inspects a media file and returns its container information.
func Probe(ctx context.Context, input string) (*ContainerInfo, error) {
	return probeWith(ctx, "", input)
}

// ProbeContext inspects using the binaries configured on a built Context,
// honoring FFprobePath overrides.
func (c *Context) Probe(ctx context.Context, input string) (*ContainerInfo, error) {
	return probeWith(ctx, c.ffprobePath, input)
}

func probeWith(ctx context.Context, ffprobePath, input string) (*ContainerInfo, error) {
	if ffprobePath == "" {
		path, err := exec.LookPath("ffprobe")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFFprobeNotFound, err)
		}
		ffprobePath = path
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		input,
	}

	cmd := exec.CommandContext(ctx, ffprobePath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ProcessError{
				Name:     "ffprobe",
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return nil, fmt.Errorf("running ffprobe: %w", err)
	}

	return parseProbeJSON(stdout.Bytes())
}

// GetDurationUs returns the duration of a media file in microseconds.
func GetDurationUs(ctx context.Context, input string) (int64, error) {
	info, err := Probe(ctx, input)
	if err != nil {
		return 0, err
	}
	return info.Duration.Microseconds(), nil
}

// GetFormat returns the container format name of a media file
// (e.g. "mov,mp4,m4a,3gp,3g2,mj2" or "wav").
func GetFormat(ctx context.Context, input string) (string, error) {
	info, err := Probe(ctx, input)
	if err != nil {
		return "", err
	}
	return info.FormatName, nil
}

// GetMetadata returns the container-level metadata of a media file
// (e.g. title, artist).
func GetMetadata(ctx context.Context, input string) (map[string]string, error) {
	info, err := Probe(ctx, input)
	if err != nil {
		return nil, err
	}
	return info.Metadata, nil
}

// ffprobe JSON shapes; only the fields we surface.
type probeDocument struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeFormat struct {
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	BitRate    string            `json:"bit_rate"`
	Tags       map[string]string `json:"tags"`
}

type probeStream struct {
	Index        int               `json:"index"`
	CodecName    string            `json:"codec_name"`
	CodecType    string            `json:"codec_type"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	PixFmt       string            `json:"pix_fmt"`
	AvgFrameRate string            `json:"avg_frame_rate"`
	SampleRate   string            `json:"sample_rate"`
	Channels     int               `json:"channels"`
	Duration     string            `json:"duration"`
	BitRate      string            `json:"bit_rate"`
	Tags         map[string]string `json:"tags"`
}

func parseProbeJSON(data []byte) (*ContainerInfo, error) {
	var doc probeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	info := &ContainerInfo{
		FormatName: doc.Format.FormatName,
		Duration:   parseSeconds(doc.Format.Duration),
		Size:       parseInt64(doc.Format.Size),
		BitRate:    parseInt64(doc.Format.BitRate),
		Metadata:   doc.Format.Tags,
	}

	for _, s := range doc.Streams {
		info.Streams = append(info.Streams, StreamInfo{
			Index:        s.Index,
			CodecName:    s.CodecName,
			Type:         mediaTypeFromCodecType(s.CodecType),
			Width:        s.Width,
			Height:       s.Height,
			PixelFormat:  s.PixFmt,
			AvgFrameRate: s.AvgFrameRate,
			SampleRate:   int(parseInt64(s.SampleRate)),
			Channels:     s.Channels,
			Duration:     parseSeconds(s.Duration),
			BitRate:      parseInt64(s.BitRate),
			Metadata:     s.Tags,
		})
	}

	return info, nil
}

// parseSeconds converts ffprobe's fractional-second strings.
func parseSeconds(s string) time.Duration {
	if s == "" || s == "N/A" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func parseInt64(s string) int64 {
	if s == "" || s == "N/A" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
