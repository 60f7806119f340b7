package media

import (
	"image"

	"github.com/gen2brain/heic"
)

// RegisterHEIF registers the HEIC/HEIF decoder with the image package so that
// image.Decode can handle iPhone photos.
//
// Must be called exactly once at process start, before any request handler or
// sweeper run touches an image. Registering up front keeps the wazero decoder
// initialization off the first request and out of the request path entirely.
func RegisterHEIF() {
	// The brand sits at byte offset 4; image.RegisterFormat matches '?' as a
	// wildcard byte.
	image.RegisterFormat("heic", "????ftypheic", heic.Decode, heic.DecodeConfig)
	image.RegisterFormat("heix", "????ftypheix", heic.Decode, heic.DecodeConfig)
	image.RegisterFormat("heif", "????ftypmif1", heic.Decode, heic.DecodeConfig)
	image.RegisterFormat("hevc", "????ftyphevc", heic.Decode, heic.DecodeConfig)
}
