package ezffmpeg

// FrameFilter is user-supplied frame processing inserted between decode
// and encode. Filters run on a single goroutine per job; implementations
// need no internal locking for pipeline state.
type FrameFilter interface {
	// MediaType returns the kind of frames this filter accepts. A filter
	// can only be added to a pipeline of the same media type.
	MediaType() MediaType

	// Init is called once before the first frame.
	Init(ctx *FrameFilterContext) error

	// Filter processes one frame. Returning (nil, nil) consumes the frame;
	// the filter may emit it later from Request. The returned frame may be
	// the input frame, modified in place.
	Filter(frame *Frame, ctx *FrameFilterContext) (*Frame, error)

	// Request asks the filter to emit a buffered frame, called repeatedly
	// after the source is exhausted until it returns (nil, nil).
	Request(ctx *FrameFilterContext) (*Frame, error)

	// Uninit is called once after the last frame, also on error paths.
	Uninit(ctx *FrameFilterContext)
}

// NopFilter is a FrameFilter that passes every frame through unchanged.
// Embed it to implement only the methods a filter cares about.
type NopFilter struct {
	Type MediaType
}

func (n NopFilter) MediaType() MediaType { return n.Type }

func (NopFilter) Init(*FrameFilterContext) error { return nil }

func (NopFilter) Filter(frame *Frame, _ *FrameFilterContext) (*Frame, error) {
	return frame, nil
}

func (NopFilter) Request(*FrameFilterContext) (*Frame, error) { return nil, nil }

func (NopFilter) Uninit(*FrameFilterContext) {}

// FrameFilterContext is a filter's node in its pipeline: its registered
// name, chain neighbors, and a handle back to the pipeline for shared
// attributes.
type FrameFilterContext struct {
	name     string
	filter   FrameFilter
	prev     *FrameFilterContext
	next     *FrameFilterContext
	pipeline *FramePipeline
}

// Name returns the name the filter was registered under.
func (c *FrameFilterContext) Name() string { return c.name }

// Filter returns the filter held by this node.
func (c *FrameFilterContext) Filter() FrameFilter { return c.filter }

// Pipeline returns the pipeline this node belongs to.
func (c *FrameFilterContext) Pipeline() *FramePipeline { return c.pipeline }

// Next returns the downstream node, or nil at the tail.
func (c *FrameFilterContext) Next() *FrameFilterContext { return c.next }

// Prev returns the upstream node, or nil at the head.
func (c *FrameFilterContext) Prev() *FrameFilterContext { return c.prev }
