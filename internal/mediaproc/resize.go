package mediaproc

// resize.go downscales extracted frames in pure Go before they are sent
// to the vision model.

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// DownscaleJPEG re-encodes data at most maxWidth pixels wide, preserving
// aspect ratio with CatmullRom resampling. Frames already narrow enough
// pass through untouched. Best effort: on any decode or encode problem the
// original bytes are returned, since an oversized frame is still usable by
// the vision model while a dropped frame is not.
func DownscaleJPEG(data []byte, maxWidth int) []byte {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn().Err(err).Msg("Frame decode failed, sending original bytes")
		return data
	}

	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()
	if origWidth <= maxWidth {
		return data
	}

	newHeight := origHeight * maxWidth / origWidth
	resized := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 90}); err != nil {
		log.Warn().Err(err).Msg("Frame re-encode failed, sending original bytes")
		return data
	}

	log.Debug().
		Int("origWidth", origWidth).
		Int("newWidth", maxWidth).
		Int("origBytes", len(data)).
		Int("newBytes", buf.Len()).
		Msg("Frame downscaled for vision input")
	return buf.Bytes()
}
