package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for payloads that are not a known image.
var ErrUnsupportedFormat = errors.New("unsupported texture format")

// Formats kept in their container when no resize is needed. Everything else
// is re-encoded to png.
var passthrough = map[string]bool{"png": true, "jpg": true}

// Processed is the outcome of preparing one texture payload.
type Processed struct {
	Data          []byte
	Format        string
	Width, Height int
	Resized       bool
	Reencoded     bool
}

// Process sniffs, decodes and normalizes a texture payload. Dimensions are
// snapped to the nearest power of two and clamped to maxSize. Radiance
// images that are not environment maps are tone mapped to png; environment
// maps are kept as is. Process is pure and safe to run on workers.
func Process(data []byte, environment bool, maxSize int) (*Processed, error) {
	if len(data) == 0 {
		return nil, errors.New("empty texture payload")
	}

	if IsHDR(data) {
		if environment {
			w, h, err := HDRSize(data)
			if err != nil {
				return nil, err
			}
			return &Processed{Data: data, Format: "hdr", Width: w, Height: h}, nil
		}
		img, err := DecodeHDR(data)
		if err != nil {
			return nil, err
		}
		return encode(img, maxSize, true)
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil, ErrUnsupportedFormat
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s texture: %w", kind.Extension, err)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	tw, th := PowerOfTwo(w, maxSize), PowerOfTwo(h, maxSize)
	if tw == w && th == h && passthrough[kind.Extension] {
		return &Processed{Data: data, Format: kind.Extension, Width: w, Height: h}, nil
	}
	return encode(img, maxSize, !passthrough[kind.Extension])
}

func encode(img image.Image, maxSize int, reencoded bool) (*Processed, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	tw, th := PowerOfTwo(w, maxSize), PowerOfTwo(h, maxSize)
	out := &Processed{Format: "png", Width: tw, Height: th, Reencoded: reencoded}
	if tw != w || th != h {
		dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
		draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
		out.Resized = true
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode texture: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

// PowerOfTwo returns the power of two nearest to n, clamped to the largest
// power of two not above limit. A non-positive limit disables clamping.
func PowerOfTwo(n, limit int) int {
	if n <= 1 {
		return 1
	}
	lo := 1
	for lo*2 <= n {
		lo *= 2
	}
	p := lo
	if lo != n && n-lo > lo*2-n {
		p = lo * 2
	}
	if limit > 0 {
		top := 1
		for top*2 <= limit {
			top *= 2
		}
		if p > top {
			p = top
		}
	}
	return p
}

// MIME returns the media type of an encoded payload.
func MIME(data []byte) string {
	if IsHDR(data) {
		return "image/vnd.radiance"
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "application/octet-stream"
	}
	return kind.MIME.Value
}
