package ezffmpeg

import (
	"strconv"
	"strings"
	"time"
)

// Progress is a snapshot of a running job, parsed from FFmpeg's
// -progress key=value stream.
type Progress struct {
	Frame      int64         // video frames written so far
	FPS        float64       // current encoding speed in frames per second
	Bitrate    string        // current output bitrate, e.g. "129.6kbits/s"
	TotalSize  int64         // bytes written so far
	OutTime    time.Duration // presentation time written so far
	DupFrames  int64
	DropFrames int64
	Speed      float64 // realtime factor, 1.0 = realtime
	End        bool    // true on the final snapshot
}

// progressParser accumulates -progress lines into snapshots. FFmpeg emits
// one key=value per line and terminates each block with a progress= line.
type progressParser struct {
	cur Progress
}

// progressKeys guards against treating arbitrary stderr logging as
// progress data when the stream is multiplexed with FFmpeg's own logs.
var progressKeys = map[string]bool{
	"frame":        true,
	"fps":          true,
	"bitrate":      true,
	"total_size":   true,
	"out_time":     true,
	"out_time_us":  true,
	"out_time_ms":  true,
	"dup_frames":   true,
	"drop_frames":  true,
	"speed":        true,
	"progress":     true,
	"stream_0_0_q": true,
}

// parseLine consumes one line. It returns a completed snapshot when the
// line closes a progress block, and consumed=false when the line is not
// progress data at all (i.e. ordinary stderr output).
func (p *progressParser) parseLine(line string) (snapshot Progress, complete bool, consumed bool) {
	line = strings.TrimSpace(line)
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return Progress{}, false, false
	}
	key = strings.TrimSpace(key)
	if !progressKeys[key] && !strings.HasPrefix(key, "stream_") {
		return Progress{}, false, false
	}
	value = strings.TrimSpace(value)

	switch key {
	case "frame":
		p.cur.Frame = parseProgressInt(value)
	case "fps":
		p.cur.FPS, _ = strconv.ParseFloat(value, 64)
	case "bitrate":
		p.cur.Bitrate = value
	case "total_size":
		p.cur.TotalSize = parseProgressInt(value)
	case "out_time_us":
		p.cur.OutTime = time.Duration(parseProgressInt(value)) * time.Microsecond
	case "out_time_ms", "out_time":
		// out_time_us is authoritative when present; out_time_ms is
		// historically microseconds as well, so only use it as fallback.
		if p.cur.OutTime == 0 && key == "out_time_ms" {
			p.cur.OutTime = time.Duration(parseProgressInt(value)) * time.Microsecond
		}
	case "dup_frames":
		p.cur.DupFrames = parseProgressInt(value)
	case "drop_frames":
		p.cur.DropFrames = parseProgressInt(value)
	case "speed":
		p.cur.Speed, _ = strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64)
	case "progress":
		p.cur.End = value == "end"
		snapshot = p.cur
		p.cur = Progress{}
		return snapshot, true, true
	}
	return Progress{}, false, true
}

// parseProgressInt tolerates FFmpeg's "N/A" placeholders.
func parseProgressInt(s string) int64 {
	if s == "" || s == "N/A" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
