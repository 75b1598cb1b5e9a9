package ezffmpeg

import "fmt"

// Built-in frame filters. These cover the common cases; anything else
// implements FrameFilter directly, usually by embedding NopFilter.

// GrayscaleFilter drops the chroma of I420 frames in place.
type GrayscaleFilter struct {
	NopFilter
}

// NewGrayscaleFilter creates a video filter that removes color.
func NewGrayscaleFilter() *GrayscaleFilter {
	return &GrayscaleFilter{NopFilter{Type: MediaTypeVideo}}
}

func (g *GrayscaleFilter) Filter(frame *Frame, _ *FrameFilterContext) (*Frame, error) {
	v := frame.Video
	if v.Format != PixelFormatI420 {
		return nil, fmt.Errorf("grayscale expects %s frames, got %s", PixelFormatI420, v.Format)
	}
	// 128 is the neutral chroma value.
	for _, plane := range v.Data[1:] {
		for i := range plane {
			plane[i] = 128
		}
	}
	return frame, nil
}

// ScaleFilter resizes I420 frames. A width or height of -1 preserves the
// source aspect ratio, matching FFmpeg's scale filter convention; the
// resolved dimension is rounded to even for YUV subsampling.
type ScaleFilter struct {
	NopFilter
	width  int
	height int
	mode   ScaleMode

	scaler *VideoScaler
}

// NewScaleFilter creates a video filter scaling to the given dimensions.
func NewScaleFilter(width, height int, mode ScaleMode) *ScaleFilter {
	return &ScaleFilter{
		NopFilter: NopFilter{Type: MediaTypeVideo},
		width:     width,
		height:    height,
		mode:      mode,
	}
}

func (s *ScaleFilter) Init(*FrameFilterContext) error {
	if s.width == 0 || s.height == 0 || (s.width == -1 && s.height == -1) {
		return fmt.Errorf("invalid scale target %dx%d", s.width, s.height)
	}
	return nil
}

func (s *ScaleFilter) Filter(frame *Frame, _ *FrameFilterContext) (*Frame, error) {
	v := frame.Video
	if v.Format != PixelFormatI420 {
		return nil, fmt.Errorf("scale expects %s frames, got %s", PixelFormatI420, v.Format)
	}
	if s.scaler == nil {
		w, h := s.resolveTarget(v.Width, v.Height)
		s.scaler = NewVideoScaler(w, h, s.mode)
	}
	frame.Video = s.scaler.Scale(v)
	return frame, nil
}

// resolveTarget fills in a -1 dimension from the first frame's aspect
// ratio. The target is fixed for the rest of the job.
func (s *ScaleFilter) resolveTarget(srcW, srcH int) (w, h int) {
	w, h = s.width, s.height
	if w == -1 {
		w = ((srcW*h/srcH + 1) &^ 1)
	}
	if h == -1 {
		h = ((srcH*w/srcW + 1) &^ 1)
	}
	return w, h
}
