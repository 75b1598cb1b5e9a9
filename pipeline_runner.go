package ezffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// Split execution path for jobs carrying frame pipelines: one FFmpeg
// process decodes the pipeline's stream to raw frames on a pipe, the Go
// filter chain runs on those frames, and a second FFmpeg process encodes
// whatever leaves the chain. The encode process starts lazily with the
// dimensions of the first filtered frame, since filters may resize.

// audioChunkSamples is the number of samples (per channel) handed to the
// filter chain per audio frame.
const audioChunkSamples = 1024

// runSplit executes a job whose context carries frame pipelines.
func (s *Scheduler) runSplit(ctx context.Context) error {
	c := s.c

	bin, err := c.resolveFFmpeg()
	if err != nil {
		return err
	}

	info, err := c.Probe(ctx, c.inputs[0].url)
	if err != nil {
		return err
	}
	stream, err := c.pipelineStream(info)
	if err != nil {
		return err
	}

	spec := rawSpec{Type: c.pipelineType}
	switch c.pipelineType {
	case MediaTypeVideo:
		if stream.Width <= 0 || stream.Height <= 0 {
			return fmt.Errorf("video stream %d of %q has no dimensions", stream.Index, c.inputs[0].url)
		}
		spec.Width = stream.Width
		spec.Height = stream.Height
		spec.FrameRate = stream.AvgFrameRate
	case MediaTypeAudio:
		if stream.SampleRate <= 0 || stream.Channels <= 0 {
			return fmt.Errorf("audio stream %d of %q has no sample layout", stream.Index, c.inputs[0].url)
		}
		spec.SampleRate = stream.SampleRate
		spec.Channels = stream.Channels
	default:
		return fmt.Errorf("frame pipelines do not support %s streams", c.pipelineType)
	}

	pos := streamPosition(info, stream)
	pipeline := c.mergedPipeline(stream.Index, pos)
	if err := initFilters(pipeline); err != nil {
		return err
	}
	defer uninitFilters(pipeline)

	decode := exec.CommandContext(ctx, bin, decodeArgs(c, spec, pos)...)
	rawOut, err := decode.StdoutPipe()
	if err != nil {
		return err
	}
	decodeErr, err := decode.StderrPipe()
	if err != nil {
		return err
	}
	logger().Debug("starting decode process", "job", s.id, "args", strings.Join(decode.Args, " "))
	if err := decode.Start(); err != nil {
		return err
	}
	s.registerProc(decode.Process)
	decodeTail := s.consumeStderr(decodeErr, false)

	enc := &splitEncoder{s: s, bin: bin, srcRate: spec.FrameRate}
	defer enc.close()

	pumpErr := s.pumpFrames(ctx, rawOut, spec, pipeline, enc)

	// The decoder may still be running if the pump stopped early; unblock
	// its stdout before waiting.
	if pumpErr != nil {
		_ = decode.Process.Kill()
		_, _ = io.Copy(io.Discard, rawOut)
	}
	decodeTail.wait()
	decodeWaitErr := decode.Wait()
	encodeWaitErr := enc.finish()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if pumpErr != nil {
		return pumpErr
	}
	if decodeWaitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(decodeWaitErr, &exitErr) {
			return &ProcessError{Name: "ffmpeg-decode", ExitCode: exitErr.ExitCode(), Stderr: decodeTail.String()}
		}
		return decodeWaitErr
	}
	return encodeWaitErr
}

// pipelineStream selects the input stream the job's pipelines run on,
// honoring a SetStreamIndex or SetLinkLabel pin. Unpinned jobs take the
// first stream of the pipeline's media type.
func (c *Context) pipelineStream(info *ContainerInfo) (*StreamInfo, error) {
	if c.pinnedStream >= 0 {
		for i := range info.Streams {
			s := &info.Streams[i]
			if s.Index != c.pinnedStream {
				continue
			}
			if s.Type != c.pipelineType {
				return nil, fmt.Errorf("%w: stream %d is %s, not %s",
					ErrStreamNotFound, s.Index, s.Type, c.pipelineType)
			}
			return s, nil
		}
		return nil, fmt.Errorf("%w: no stream with index %d", ErrStreamNotFound, c.pinnedStream)
	}

	rel := c.pinnedRel
	if rel < 0 {
		rel = 0
	}
	n := 0
	for i := range info.Streams {
		s := &info.Streams[i]
		if s.Type != c.pipelineType {
			continue
		}
		if n == rel {
			return s, nil
		}
		n++
	}
	return nil, fmt.Errorf("%w: input has no %s stream %d", ErrStreamNotFound, c.pipelineType, rel)
}

// streamPosition returns the type-relative position of a stream, the N of
// an FFmpeg "0:v:N" specifier.
func streamPosition(info *ContainerInfo, stream *StreamInfo) int {
	n := 0
	for i := range info.Streams {
		s := &info.Streams[i]
		if s.Index == stream.Index {
			break
		}
		if s.Type == stream.Type {
			n++
		}
	}
	return n
}

// mergedPipeline flattens the job's pipeline builders into one chain over
// the resolved stream. The builders were validated to share a media type;
// filters run in builder order, then in the order added to each builder.
func (c *Context) mergedPipeline(streamIndex, streamPos int) *FramePipeline {
	label := fmt.Sprintf("0:%s:%d", c.pipelineType.StreamSpecifier(), streamPos)
	p := c.pipelines[0].build(streamIndex, label)
	for _, pb := range c.pipelines[1:] {
		for _, nf := range pb.filters {
			p.AddLast(nf.name, nf.filter)
		}
	}
	return p
}

// initFilters initializes the chain head to tail, unwinding already
// initialized filters on failure.
func initFilters(p *FramePipeline) error {
	for node := p.First(); node != nil; node = node.Next() {
		if err := node.filter.Init(node); err != nil {
			for prev := node.Prev(); prev != nil; prev = prev.Prev() {
				prev.filter.Uninit(prev)
			}
			return &FilterError{Filter: node.name, Stage: "init", Err: err}
		}
	}
	return nil
}

func uninitFilters(p *FramePipeline) {
	for node := p.First(); node != nil; node = node.Next() {
		node.filter.Uninit(node)
	}
}

// runChain pushes a frame through the chain starting at node. A nil
// result means some filter consumed the frame.
func runChain(node *FrameFilterContext, frame *Frame) (*Frame, error) {
	for ; node != nil && frame != nil; node = node.Next() {
		var err error
		frame, err = node.filter.Filter(frame, node)
		if err != nil {
			return nil, &FilterError{Filter: node.name, Stage: "filter", Err: err}
		}
	}
	return frame, nil
}

// pumpFrames reads raw frames from the decoder, runs them through the
// chain, drains buffered frames after EOF, and feeds the encoder.
func (s *Scheduler) pumpFrames(ctx context.Context, r io.Reader, spec rawSpec, pipeline *FramePipeline, enc *splitEncoder) error {
	var pts int64
	emit := func(frame *Frame) error {
		return enc.write(ctx, frame)
	}

	for {
		frame, err := readRawFrame(r, spec, pts)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		pts++

		out, err := runChain(pipeline.First(), frame)
		if err != nil {
			return err
		}
		if out == nil {
			continue
		}
		if err := emit(out); err != nil {
			return err
		}
	}

	// Source exhausted; let every filter flush what it buffered, feeding
	// flushed frames through the rest of the chain.
	for node := pipeline.First(); node != nil; node = node.Next() {
		for {
			frame, err := node.filter.Request(node)
			if err != nil {
				return &FilterError{Filter: node.name, Stage: "request", Err: err}
			}
			if frame == nil {
				break
			}
			out, err := runChain(node.Next(), frame)
			if err != nil {
				return err
			}
			if out == nil {
				continue
			}
			if err := emit(out); err != nil {
				return err
			}
		}
	}
	return nil
}

// readRawFrame reads one frame's worth of raw data. Audio reads may come
// up short on the final chunk; a partial chunk is trimmed to a whole
// number of samples.
func readRawFrame(r io.Reader, spec rawSpec, pts int64) (*Frame, error) {
	switch spec.Type {
	case MediaTypeAudio:
		sampleBytes := spec.Channels * AudioFormatS16.BytesPerSample()
		buf := make([]byte, audioChunkSamples*sampleBytes)
		n, err := io.ReadFull(r, buf)
		if err == io.ErrUnexpectedEOF {
			n -= n % sampleBytes
			if n == 0 {
				return nil, io.EOF
			}
			buf = buf[:n]
		} else if err != nil {
			return nil, err
		}
		return NewAudioFrame(&AudioSamples{
			Data:        buf,
			SampleRate:  spec.SampleRate,
			Channels:    spec.Channels,
			SampleCount: len(buf) / sampleBytes,
			Format:      AudioFormatS16,
			Timestamp:   pts * audioChunkSamples * 1e9 / int64(spec.SampleRate),
		}), nil

	default:
		buf := make([]byte, I420Size(spec.Width, spec.Height))
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.ErrUnexpectedEOF {
				return nil, io.EOF
			}
			return nil, err
		}
		ySize := spec.Width * spec.Height
		uvSize := (spec.Width / 2) * (spec.Height / 2)
		return NewVideoFrame(&VideoFrame{
			Data: [][]byte{
				buf[:ySize],
				buf[ySize : ySize+uvSize],
				buf[ySize+uvSize:],
			},
			Stride:    []int{spec.Width, spec.Width / 2, spec.Width / 2},
			Width:     spec.Width,
			Height:    spec.Height,
			Format:    PixelFormatI420,
			PTS:       pts,
			Timestamp: frameTimestamp(pts, spec.FrameRate),
		}), nil
	}
}

// frameTimestamp converts a frame index to nanoseconds using the stream's
// average frame rate, falling back to 25 fps.
func frameTimestamp(pts int64, rate string) int64 {
	num, den := parseRational(rate)
	if num <= 0 || den <= 0 {
		num, den = 25, 1
	}
	return pts * 1e9 * den / num
}

// parseRational parses FFmpeg rationals like "30000/1001" or "30".
func parseRational(s string) (num, den int64) {
	if s == "" {
		return 0, 0
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, _ = strconv.ParseInt(s[:i], 10, 64)
		den, _ = strconv.ParseInt(s[i+1:], 10, 64)
		return num, den
	}
	num, _ = strconv.ParseInt(s, 10, 64)
	return num, 1
}

// splitEncoder is the lazily started encode half of a split job. It
// starts on the first frame so the raw input geometry can match whatever
// the filter chain produced.
type splitEncoder struct {
	s       *Scheduler
	bin     string
	srcRate string // probed source frame rate, reused for the raw input

	cmd   *exec.Cmd
	stdin io.WriteCloser
	tail  *stderrTail
	spec  rawSpec
}

func (e *splitEncoder) start(ctx context.Context, spec rawSpec) error {
	c := e.s.c
	args := append(encodeArgs(c, spec), "-progress", "pipe:2", "-nostats")
	cmd := exec.CommandContext(ctx, e.bin, args...)

	for _, out := range c.outputs {
		if out.writer != nil {
			cmd.Stdout = out.writer
		}
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	logger().Debug("starting encode process", "job", e.s.id, "args", strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		return err
	}
	e.s.registerProc(cmd.Process)

	e.cmd = cmd
	e.stdin = stdin
	e.tail = e.s.consumeStderr(stderr, true)
	e.spec = spec
	return nil
}

// write serializes one frame to the encoder, starting it first if needed.
func (e *splitEncoder) write(ctx context.Context, frame *Frame) error {
	if e.cmd == nil {
		spec := frameSpec(frame)
		if spec.Type == MediaTypeVideo {
			spec.FrameRate = e.srcRate
		}
		if err := e.start(ctx, spec); err != nil {
			return err
		}
	}

	switch frame.Type {
	case MediaTypeAudio:
		a := frame.Audio
		if a.SampleRate != e.spec.SampleRate || a.Channels != e.spec.Channels {
			return fmt.Errorf("audio layout changed mid-stream: %dHz/%dch to %dHz/%dch",
				e.spec.SampleRate, e.spec.Channels, a.SampleRate, a.Channels)
		}
		_, err := e.stdin.Write(a.Data)
		return err

	default:
		v := frame.Video
		if v.Format != PixelFormatI420 {
			return fmt.Errorf("encoder accepts %s frames, got %s", PixelFormatI420, v.Format)
		}
		if v.Width != e.spec.Width || v.Height != e.spec.Height {
			return fmt.Errorf("frame size changed mid-stream: %dx%d to %dx%d",
				e.spec.Width, e.spec.Height, v.Width, v.Height)
		}
		return writePlanes(e.stdin, v)
	}
}

// finish closes the encoder's stdin and waits for it. Returns nil when
// the encoder was never started, which means no frame left the chain.
func (e *splitEncoder) finish() error {
	if e.cmd == nil {
		return fmt.Errorf("frame pipeline produced no frames")
	}
	_ = e.stdin.Close()
	e.tail.wait()
	err := e.cmd.Wait()
	e.cmd = nil
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ProcessError{Name: "ffmpeg-encode", ExitCode: exitErr.ExitCode(), Stderr: e.tail.String()}
		}
		return err
	}
	return nil
}

// close kills a still-running encoder on the error path.
func (e *splitEncoder) close() {
	if e.cmd != nil && e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
		_ = e.cmd.Wait()
		e.cmd = nil
	}
}

// frameSpec derives the encoder's raw input geometry from a frame.
func frameSpec(frame *Frame) rawSpec {
	switch frame.Type {
	case MediaTypeAudio:
		return rawSpec{
			Type:       MediaTypeAudio,
			SampleRate: frame.Audio.SampleRate,
			Channels:   frame.Audio.Channels,
		}
	default:
		v := frame.Video
		return rawSpec{
			Type:   MediaTypeVideo,
			Width:  v.Width,
			Height: v.Height,
		}
	}
}

// writePlanes streams a frame's planes, honoring per-plane strides that
// exceed the row width.
func writePlanes(w io.Writer, v *VideoFrame) error {
	widths := []int{v.Width, v.Width / 2, v.Width / 2}
	heights := []int{v.Height, v.Height / 2, v.Height / 2}
	for i, plane := range v.Data {
		rowBytes := widths[i]
		if v.Stride[i] == rowBytes {
			if _, err := w.Write(plane[:rowBytes*heights[i]]); err != nil {
				return err
			}
			continue
		}
		for row := 0; row < heights[i]; row++ {
			off := row * v.Stride[i]
			if _, err := w.Write(plane[off : off+rowBytes]); err != nil {
				return err
			}
		}
	}
	return nil
}
