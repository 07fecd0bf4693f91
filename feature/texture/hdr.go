package texture

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"
)

var (
	hdrMagic     = []byte("#?RADIANCE")
	hdrMagicRGBE = []byte("#?RGBE")
)

// IsHDR reports whether data is a Radiance RGBE image.
func IsHDR(data []byte) bool {
	return bytes.HasPrefix(data, hdrMagic) || bytes.HasPrefix(data, hdrMagicRGBE)
}

// hdrHeader reads the header and resolution line of a Radiance image.
func hdrHeader(r *bufio.Reader) (width, height int, err error) {
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return 0, 0, fmt.Errorf("hdr header: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "FORMAT=") && line != "FORMAT=32-bit_rle_rgbe" {
			return 0, 0, fmt.Errorf("hdr header: unsupported %s", line)
		}
	}
	res, err := r.ReadString('\n')
	if err != nil {
		return 0, 0, fmt.Errorf("hdr resolution: %w", err)
	}
	f := strings.Fields(res)
	if len(f) != 4 || f[0] != "-Y" || f[2] != "+X" {
		return 0, 0, fmt.Errorf("hdr resolution: unsupported orientation %q", strings.TrimSpace(res))
	}
	if height, err = strconv.Atoi(f[1]); err != nil {
		return 0, 0, fmt.Errorf("hdr resolution: %w", err)
	}
	if width, err = strconv.Atoi(f[3]); err != nil {
		return 0, 0, fmt.Errorf("hdr resolution: %w", err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, errors.New("hdr resolution: empty image")
	}
	return width, height, nil
}

// HDRSize returns the dimensions of a Radiance image without decoding it.
func HDRSize(data []byte) (int, int, error) {
	return hdrHeader(bufio.NewReader(bytes.NewReader(data)))
}

// DecodeHDR decodes a Radiance RGBE image and tone maps it to 8 bits per
// channel with a clamp and a 2.2 gamma.
func DecodeHDR(data []byte) (*image.NRGBA, error) {
	r := bufio.NewReader(bytes.NewReader(data))
	w, h, err := hdrHeader(r)
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	line := make([]byte, w*4)
	for y := 0; y < h; y++ {
		if err := readScanline(r, line, w); err != nil {
			return nil, fmt.Errorf("hdr scanline %d: %w", y, err)
		}
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, rgbe(line[x*4:x*4+4]))
		}
	}
	return img, nil
}

// readScanline reads one scanline of w pixels into line as interleaved RGBE.
// Both the flat layout and the adaptive run-length layout are accepted.
func readScanline(r *bufio.Reader, line []byte, w int) error {
	head := make([]byte, 4)
	if _, err := io.ReadFull(r, head); err != nil {
		return err
	}
	if w < 8 || w > 0x7fff || head[0] != 2 || head[1] != 2 || head[2]&0x80 != 0 {
		copy(line, head)
		_, err := io.ReadFull(r, line[4:])
		return err
	}
	if int(head[2])<<8|int(head[3]) != w {
		return errors.New("scanline width mismatch")
	}
	for c := 0; c < 4; c++ {
		for x := 0; x < w; {
			n, err := r.ReadByte()
			if err != nil {
				return err
			}
			if n > 128 {
				run := int(n) - 128
				if x+run > w {
					return errors.New("run overflows scanline")
				}
				v, err := r.ReadByte()
				if err != nil {
					return err
				}
				for ; run > 0; run-- {
					line[x*4+c] = v
					x++
				}
				continue
			}
			count := int(n)
			if count == 0 || x+count > w {
				return errors.New("bad literal run")
			}
			for ; count > 0; count-- {
				v, err := r.ReadByte()
				if err != nil {
					return err
				}
				line[x*4+c] = v
				x++
			}
		}
	}
	return nil
}

func rgbe(p []byte) color.NRGBA {
	if p[3] == 0 {
		return color.NRGBA{A: 0xff}
	}
	f := math.Ldexp(1, int(p[3])-136)
	return color.NRGBA{
		R: tonemap(float64(p[0]) * f),
		G: tonemap(float64(p[1]) * f),
		B: tonemap(float64(p[2]) * f),
		A: 0xff,
	}
}

func tonemap(v float64) uint8 {
	v = math.Pow(math.Min(math.Max(v, 0), 1), 1/2.2)
	return uint8(math.Round(v * 255))
}
