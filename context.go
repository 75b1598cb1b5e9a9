package ezffmpeg

import (
	"context"
	"fmt"
	"log/slog"
)

// Context is an immutable description of one processing job, produced by
// Builder.Build. A Context can be run any number of times, each run through
// its own Scheduler.
type Context struct {
	inputs     []*Input
	outputs    []*Output
	filterDesc string

	ffmpegPath  string
	ffprobePath string
	logLevel    string
	overwrite   bool

	onProgress func(Progress)

	// resolved at Build time
	pipelineType MediaType
	pipelines    []*FramePipelineBuilder
	pinnedStream int // absolute stream index pin, -1 when unpinned
	pinnedRel    int // type-relative pin from a link label, -1 when unpinned
}

// Builder assembles a Context. Obtain one via NewContext; all methods
// return the receiver for chaining.
type Builder struct {
	ctx Context
}

// NewContext creates a builder for a processing context.
func NewContext() *Builder {
	return &Builder{ctx: Context{
		logLevel:  "error",
		overwrite: true,
	}}
}

// Input adds a configured input.
func (b *Builder) Input(in *Input) *Builder {
	b.ctx.inputs = append(b.ctx.inputs, in)
	return b
}

// InputURL adds an input by URL or path.
func (b *Builder) InputURL(url string) *Builder {
	return b.Input(NewInput(url))
}

// Output adds a configured output.
func (b *Builder) Output(o *Output) *Builder {
	b.ctx.outputs = append(b.ctx.outputs, o)
	return b
}

// OutputURL adds an output by URL or path.
func (b *Builder) OutputURL(url string) *Builder {
	return b.Output(NewOutput(url))
}

// FilterDesc sets the textual filter description passed to FFmpeg, e.g.
// "scale='min(160,iw)':-1" or "hue=s=0". Simple chains become -vf/-af;
// labeled or multi-chain graphs become -filter_complex.
func (b *Builder) FilterDesc(desc string) *Builder {
	b.ctx.filterDesc = desc
	return b
}

// FFmpegPath overrides the ffmpeg binary used for this context.
func (b *Builder) FFmpegPath(path string) *Builder {
	b.ctx.ffmpegPath = path
	return b
}

// FFprobePath overrides the ffprobe binary used for this context.
func (b *Builder) FFprobePath(path string) *Builder {
	b.ctx.ffprobePath = path
	return b
}

// LogLevel sets FFmpeg's own log level (default "error").
func (b *Builder) LogLevel(level string) *Builder {
	b.ctx.logLevel = level
	return b
}

// Overwrite controls whether existing output files are replaced
// (default true).
func (b *Builder) Overwrite(overwrite bool) *Builder {
	b.ctx.overwrite = overwrite
	return b
}

// OnProgress registers a callback invoked with progress snapshots while
// the job runs.
func (b *Builder) OnProgress(fn func(Progress)) *Builder {
	b.ctx.onProgress = fn
	return b
}

// Build validates the configuration and returns the finished Context.
func (b *Builder) Build() (*Context, error) {
	c := b.ctx

	if len(c.inputs) == 0 {
		return nil, ErrNoInput
	}
	if len(c.outputs) == 0 {
		return nil, ErrNoOutput
	}

	readers := 0
	for _, in := range c.inputs {
		if in.reader != nil {
			readers++
		}
	}
	if readers > 1 {
		return nil, ErrMultipleReaderInputs
	}

	writers := 0
	for _, out := range c.outputs {
		if out.writer != nil {
			writers++
			if out.format == "" {
				return nil, ErrOutputFormatRequired
			}
		}
	}
	if writers > 1 {
		return nil, ErrMultipleWriterOutputs
	}

	// Collect frame pipelines. The exec runner moves a single raw stream
	// between the decode and encode processes, so every pipeline in a job
	// must agree on the media type; empty pipelines are dropped the way
	// the scheduler has always ignored them.
	for _, in := range c.inputs {
		c.pipelines = append(c.pipelines, in.pipelines...)
	}
	for _, out := range c.outputs {
		c.pipelines = append(c.pipelines, out.pipelines...)
	}
	kept := c.pipelines[:0]
	for _, pb := range c.pipelines {
		if len(pb.filters) == 0 {
			logger().Warn("dropping empty frame pipeline", "media_type", pb.mediaType.String())
			continue
		}
		if c.pipelineType == MediaTypeUnknown {
			c.pipelineType = pb.mediaType
		} else if c.pipelineType != pb.mediaType {
			return nil, ErrMixedPipelineTypes
		}
		kept = append(kept, pb)
	}
	c.pipelines = kept

	c.pinnedStream, c.pinnedRel = -1, -1
	if len(c.pipelines) > 0 {
		if len(c.inputs) != 1 || c.inputs[0].reader != nil {
			return nil, ErrPipelineInput
		}

		// All pipelines merge into one chain over one stream, so their
		// pins must agree. Link labels can only be checked against the
		// probed stream layout at run time; the shape is validated here.
		label := ""
		for _, pb := range c.pipelines {
			if pb.streamIndex >= 0 {
				if c.pinnedStream >= 0 && c.pinnedStream != pb.streamIndex {
					return nil, ErrPipelineStreamConflict
				}
				c.pinnedStream = pb.streamIndex
			}
			if pb.linkLabel != "" {
				if label != "" && label != pb.linkLabel {
					return nil, ErrPipelineStreamConflict
				}
				label = pb.linkLabel
			}
		}
		if label != "" {
			if c.pinnedStream >= 0 {
				return nil, ErrPipelineStreamConflict
			}
			in, mt, rel, err := parseLinkLabel(label)
			if err != nil {
				return nil, err
			}
			if in != 0 || mt != c.pipelineType {
				return nil, fmt.Errorf("%w: label %q names no %s stream of input 0",
					ErrStreamNotFound, label, c.pipelineType)
			}
			c.pinnedRel = rel
		}
	}

	return &c, nil
}

// Inputs returns the job's inputs.
func (c *Context) Inputs() []*Input { return c.inputs }

// Outputs returns the job's outputs.
func (c *Context) Outputs() []*Output { return c.outputs }

// FilterDesc returns the configured filter description.
func (c *Context) FilterDesc() string { return c.filterDesc }

// Start is a convenience that creates a scheduler for this context and
// starts it, enabling the chained build-start-wait call pattern.
func (c *Context) Start(ctx context.Context) (*Scheduler, error) {
	s := NewScheduler(c)
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// hasPipelines reports whether the job runs through the split
// decode/filter/encode path.
func (c *Context) hasPipelines() bool { return len(c.pipelines) > 0 }

var pkgLogger *slog.Logger

// SetLogger overrides the logger used for the package's diagnostics.
// By default slog.Default() is used.
func SetLogger(l *slog.Logger) { pkgLogger = l }

func logger() *slog.Logger {
	if pkgLogger != nil {
		return pkgLogger
	}
	return slog.Default()
}
