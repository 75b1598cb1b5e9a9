package ezffmpeg

import "fmt"

// FramePipeline is a named, ordered chain of FrameFilters applied to one
// stream. Pipelines are assembled through FramePipelineBuilder and built
// by the scheduler once stream layout is known; the mutation methods stay
// available to filters that restructure the chain mid-job (filters run on
// the pipeline goroutine, so no locking is involved).
type FramePipeline struct {
	streamIndex int
	linkLabel   string
	mediaType   MediaType

	head *FrameFilterContext
	tail *FrameFilterContext

	attributes map[string]any
}

func newFramePipeline(streamIndex int, linkLabel string, mediaType MediaType) *FramePipeline {
	return &FramePipeline{
		streamIndex: streamIndex,
		linkLabel:   linkLabel,
		mediaType:   mediaType,
		attributes:  make(map[string]any),
	}
}

// StreamIndex returns the stream index this pipeline was matched to.
func (p *FramePipeline) StreamIndex() int { return p.streamIndex }

// LinkLabel returns the FFmpeg-style link label ("0:v:0") of the matched
// stream, or "".
func (p *FramePipeline) LinkLabel() string { return p.linkLabel }

// MediaType returns the media type this pipeline processes.
func (p *FramePipeline) MediaType() MediaType { return p.mediaType }

func (p *FramePipeline) checkType(f FrameFilter) {
	if f.MediaType() != p.mediaType {
		panic(fmt.Sprintf("ezffmpeg: %s filter added to %s pipeline", f.MediaType(), p.mediaType))
	}
}

// AddFirst inserts a filter at the head of the chain.
func (p *FramePipeline) AddFirst(name string, filter FrameFilter) {
	p.checkType(filter)
	node := &FrameFilterContext{name: name, filter: filter, pipeline: p}
	if p.head != nil {
		p.head.prev = node
		node.next = p.head
	}
	p.head = node
	if p.tail == nil {
		p.tail = node
	}
}

// AddLast appends a filter at the tail of the chain.
func (p *FramePipeline) AddLast(name string, filter FrameFilter) {
	p.checkType(filter)
	node := &FrameFilterContext{name: name, filter: filter, pipeline: p}
	if p.tail != nil {
		p.tail.next = node
		node.prev = p.tail
	}
	p.tail = node
	if p.head == nil {
		p.head = node
	}
}

// AddBefore inserts a filter before the named one, reporting whether the
// base name was found.
func (p *FramePipeline) AddBefore(baseName, name string, filter FrameFilter) bool {
	p.checkType(filter)
	base := p.Find(baseName)
	if base == nil {
		return false
	}
	node := &FrameFilterContext{name: name, filter: filter, pipeline: p, next: base, prev: base.prev}
	if base.prev != nil {
		base.prev.next = node
	} else {
		p.head = node
	}
	base.prev = node
	return true
}

// AddAfter inserts a filter after the named one, reporting whether the
// base name was found.
func (p *FramePipeline) AddAfter(baseName, name string, filter FrameFilter) bool {
	p.checkType(filter)
	base := p.Find(baseName)
	if base == nil {
		return false
	}
	node := &FrameFilterContext{name: name, filter: filter, pipeline: p, prev: base, next: base.next}
	if base.next != nil {
		base.next.prev = node
	} else {
		p.tail = node
	}
	base.next = node
	return true
}

// Remove unlinks the named filter and returns it, or nil when not found.
func (p *FramePipeline) Remove(name string) FrameFilter {
	node := p.Find(name)
	if node == nil {
		return nil
	}
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		p.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		p.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	return node.filter
}

// Replace swaps the named filter for a new one under a new name,
// returning the old filter or nil when not found.
func (p *FramePipeline) Replace(oldName, newName string, filter FrameFilter) FrameFilter {
	p.checkType(filter)
	node := p.Find(oldName)
	if node == nil {
		return nil
	}
	old := node.filter
	node.filter = filter
	node.name = newName
	return old
}

// Find returns the node registered under name, or nil.
func (p *FramePipeline) Find(name string) *FrameFilterContext {
	for node := p.head; node != nil; node = node.next {
		if node.name == name {
			return node
		}
	}
	return nil
}

// First returns the head node of the chain.
func (p *FramePipeline) First() *FrameFilterContext { return p.head }

// Last returns the tail node of the chain.
func (p *FramePipeline) Last() *FrameFilterContext { return p.tail }

// Len returns the number of filters in the chain.
func (p *FramePipeline) Len() int {
	n := 0
	for node := p.head; node != nil; node = node.next {
		n++
	}
	return n
}

// SetAttribute stores a value shared by the pipeline's filters.
func (p *FramePipeline) SetAttribute(key string, value any) {
	p.attributes[key] = value
}

// Attribute returns a shared value and whether it was present.
func (p *FramePipeline) Attribute(key string) (any, bool) {
	v, ok := p.attributes[key]
	return v, ok
}

// RemoveAttribute deletes a shared value, returning it if present.
func (p *FramePipeline) RemoveAttribute(key string) any {
	v := p.attributes[key]
	delete(p.attributes, key)
	return v
}

// FramePipelineBuilder collects filters for one pipeline. The pipeline
// itself is built by the scheduler at start time, once the job's stream
// layout is known and the stream index/link label can be resolved.
type FramePipelineBuilder struct {
	mediaType   MediaType
	streamIndex int // -1 until set
	linkLabel   string
	filters     []namedFilter
}

type namedFilter struct {
	name   string
	filter FrameFilter
}

// NewFramePipeline creates a builder for a pipeline of the given media type.
func NewFramePipeline(mediaType MediaType) *FramePipelineBuilder {
	return &FramePipelineBuilder{mediaType: mediaType, streamIndex: -1}
}

// SetStreamIndex pins the pipeline to the input stream with this absolute
// index as reported by probing. The job fails with ErrStreamNotFound when
// no stream of the pipeline's media type carries the index.
func (b *FramePipelineBuilder) SetStreamIndex(index int) *FramePipelineBuilder {
	b.streamIndex = index
	return b
}

// SetLinkLabel pins the pipeline to an FFmpeg-style link label such as
// "0:v" (first video stream) or "0:a:1" (second audio stream). Labels
// referring to another input are rejected at Build; a job carrying frame
// pipelines decodes input 0.
func (b *FramePipelineBuilder) SetLinkLabel(label string) *FramePipelineBuilder {
	b.linkLabel = label
	return b
}

// Filter appends a named filter; filters run in the order added.
func (b *FramePipelineBuilder) Filter(name string, filter FrameFilter) *FramePipelineBuilder {
	if filter.MediaType() != b.mediaType {
		panic(fmt.Sprintf("ezffmpeg: %s filter added to %s pipeline", filter.MediaType(), b.mediaType))
	}
	b.filters = append(b.filters, namedFilter{name: name, filter: filter})
	return b
}

// build materializes the pipeline with its resolved stream identity.
func (b *FramePipelineBuilder) build(streamIndex int, linkLabel string) *FramePipeline {
	p := newFramePipeline(streamIndex, linkLabel, b.mediaType)
	for _, nf := range b.filters {
		p.AddLast(nf.name, nf.filter)
	}
	return p
}
