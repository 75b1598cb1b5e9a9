package ezffmpeg

// ScaleMode defines how scaling handles aspect ratio mismatches.
type ScaleMode int

const (
	// ScaleModeFit scales to fit within target dimensions, preserving aspect ratio.
	ScaleModeFit ScaleMode = iota
	// ScaleModeFill scales to fill target dimensions, preserving aspect ratio (may crop).
	ScaleModeFill
	// ScaleModeStretch scales to exactly match target dimensions (may distort).
	ScaleModeStretch
)

// VideoScaler scales I420 video frames to a fixed target size. The output
// frame buffer is reused across calls; callers that keep a result across
// calls must Clone it.
type VideoScaler struct {
	dstWidth, dstHeight int
	mode                ScaleMode

	out *VideoFrame
}

// NewVideoScaler creates a scaler targeting the given dimensions.
func NewVideoScaler(dstWidth, dstHeight int, mode ScaleMode) *VideoScaler {
	return &VideoScaler{
		dstWidth:  dstWidth,
		dstHeight: dstHeight,
		mode:      mode,
		out:       NewI420Frame(dstWidth, dstHeight),
	}
}

// Scale scales an I420 frame to the target dimensions. Frames already at
// the target size pass through untouched.
func (s *VideoScaler) Scale(frame *VideoFrame) *VideoFrame {
	if frame.Width == s.dstWidth && frame.Height == s.dstHeight {
		return frame
	}

	srcX, srcY, srcW, srcH := s.sourceRegion(frame.Width, frame.Height)

	scalePlane(frame.Data[0], frame.Stride[0], srcX, srcY, srcW, srcH,
		s.out.Data[0], s.out.Stride[0], s.dstWidth, s.dstHeight)
	scalePlane(frame.Data[1], frame.Stride[1], srcX/2, srcY/2, srcW/2, srcH/2,
		s.out.Data[1], s.out.Stride[1], s.dstWidth/2, s.dstHeight/2)
	scalePlane(frame.Data[2], frame.Stride[2], srcX/2, srcY/2, srcW/2, srcH/2,
		s.out.Data[2], s.out.Stride[2], s.dstWidth/2, s.dstHeight/2)

	s.out.PTS = frame.PTS
	s.out.Timestamp = frame.Timestamp
	return s.out
}

// sourceRegion determines the region of the source used for the given mode.
func (s *VideoScaler) sourceRegion(srcW, srcH int) (x, y, w, h int) {
	if s.mode != ScaleModeFill {
		return 0, 0, srcW, srcH
	}

	// Crop the source to the target aspect ratio.
	srcAspect := float64(srcW) / float64(srcH)
	dstAspect := float64(s.dstWidth) / float64(s.dstHeight)
	switch {
	case srcAspect > dstAspect:
		newW := int(float64(srcH) * dstAspect)
		return (srcW - newW) / 2, 0, newW, srcH
	case srcAspect < dstAspect:
		newH := int(float64(srcW) / dstAspect)
		return 0, (srcH - newH) / 2, srcW, newH
	}
	return 0, 0, srcW, srcH
}

// scalePlane scales a single plane using bilinear interpolation with
// 16.16 fixed-point coordinates.
func scalePlane(src []byte, srcStride, srcX, srcY, srcW, srcH int,
	dst []byte, dstStride, dstW, dstH int) {

	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return
	}

	xRatio := (srcW << 16) / dstW
	yRatio := (srcH << 16) / dstH

	for y := 0; y < dstH; y++ {
		srcYFP := y * yRatio
		srcYFrac := srcYFP & 0xFFFF

		y0 := (srcYFP >> 16) + srcY
		y1 := y0 + 1
		if y1 >= srcY+srcH {
			y1 = y0
		}

		for x := 0; x < dstW; x++ {
			srcXFP := x * xRatio
			srcXFrac := srcXFP & 0xFFFF

			x0 := (srcXFP >> 16) + srcX
			x1 := x0 + 1
			if x1 >= srcX+srcW {
				x1 = x0
			}

			p00 := int(src[y0*srcStride+x0])
			p10 := int(src[y0*srcStride+x1])
			p01 := int(src[y1*srcStride+x0])
			p11 := int(src[y1*srcStride+x1])

			top := (p00*(0x10000-srcXFrac) + p10*srcXFrac) >> 16
			bottom := (p01*(0x10000-srcXFrac) + p11*srcXFrac) >> 16
			dst[y*dstStride+x] = byte((top*(0x10000-srcYFrac) + bottom*srcYFrac) >> 16)
		}
	}
}

// ScaleFrame scales a frame without keeping a scaler around.
func ScaleFrame(frame *VideoFrame, dstWidth, dstHeight int, mode ScaleMode) *VideoFrame {
	return NewVideoScaler(dstWidth, dstHeight, mode).Scale(frame)
}

// CalculateScaledSize returns the output dimensions when scaling a source
// into a bounding box with the given mode. Results are rounded up to even
// dimensions for YUV subsampling.
func CalculateScaledSize(srcW, srcH, maxW, maxH int, mode ScaleMode) (w, h int) {
	if mode != ScaleModeFit {
		return maxW, maxH
	}

	srcAspect := float64(srcW) / float64(srcH)
	dstAspect := float64(maxW) / float64(maxH)
	if srcAspect > dstAspect {
		w = maxW
		h = int(float64(maxW) / srcAspect)
	} else {
		h = maxH
		w = int(float64(maxH) * srcAspect)
	}
	w = (w + 1) &^ 1
	h = (h + 1) &^ 1
	return w, h
}
