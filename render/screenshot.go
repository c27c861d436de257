// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"time"

	xdraw "golang.org/x/image/draw"
)

// Screenshot renders one frame off-screen with the given parameters and
// returns it as an image, without presenting to the live draw target. The
// manager's current parameters are swapped out for the duration of the
// render and restored afterwards, so a later Render picks up exactly the
// state a caller last set.
//
// size selects the output dimensions; the zero point keeps the draw
// target's native size, anything else scales bilinearly. Requires the
// foreground thread and a completed init handshake.
func (m *SurfaceManager) Screenshot(tok Token, p Params, at time.Time, size image.Point) (*image.RGBA, error) {
	m.mu.Lock()
	if m.destroyed || m.state != StateForegroundReady {
		state := m.state
		m.mu.Unlock()
		return nil, &NotReadyError{Op: "Screenshot", State: state}
	}
	fg := m.fg
	saved := m.params
	m.params = p
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.params = saved
		m.mu.Unlock()
	}()

	var out *image.RGBA
	err := fg.Run(tok, "Screenshot", func(Context) error {
		frame := m.compose(at, p)

		// The backend's read-back origin convention differs from the
		// image convention for hardware kinds; flip rows back.
		if m.backend.FlippedReadback() {
			out = flipVertical(frame)
		} else {
			out = cloneRGBA(frame)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if size != (image.Point{}) && size != out.Bounds().Size() {
		scaled := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
		xdraw.BiLinear.Scale(scaled, scaled.Bounds(), out, out.Bounds(), xdraw.Src, nil)
		out = scaled
	}
	return out, nil
}

// cloneRGBA copies the image so the caller does not alias the manager's
// composition scratch buffer.
func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// flipVertical copies the image with rows in reverse order, converting a
// bottom-left-origin read-back into top-left image convention.
func flipVertical(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	h := b.Dy()
	for y := 0; y < h; y++ {
		srcRow := src.Pix[y*src.Stride : y*src.Stride+b.Dx()*4]
		dstRow := dst.Pix[(h-1-y)*dst.Stride : (h-1-y)*dst.Stride+b.Dx()*4]
		copy(dstRow, srcRow)
	}
	return dst
}
