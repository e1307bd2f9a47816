// Package texture provides image decoding and the CPU-side texture descriptor.
package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

// DecodeTGA decodes an uncompressed or RLE true-color TGA file (24 or 32 bpp).
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d", bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[offset:],
		bpp:         bpp / 8,
		width:       width,
		height:      height,
		topToBottom: descriptor&0x20 != 0,
	}

	if imageType == TGATypeUncompressed {
		if len(d.src) < width*height*d.bpp {
			return nil, fmt.Errorf("TGA pixel data truncated")
		}
		for d.pixel < width*height {
			d.put(d.read())
		}
		return d.img, nil
	}

	for d.pixel < width*height && d.pos < len(d.src) {
		packet := d.src[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if d.pos+d.bpp > len(d.src) {
				break
			}
			c := d.read()
			for i := 0; i < count && d.pixel < width*height; i++ {
				d.put(c)
			}
			continue
		}
		for i := 0; i < count && d.pixel < width*height; i++ {
			if d.pos+d.bpp > len(d.src) {
				break
			}
			d.put(d.read())
		}
	}
	return d.img, nil
}

// tgaDecoder walks BGR(A) pixel data in file order.
type tgaDecoder struct {
	img         *image.RGBA
	src         []byte
	pos         int
	pixel       int
	bpp         int
	width       int
	height      int
	topToBottom bool
}

func (d *tgaDecoder) read() color.RGBA {
	c := color.RGBA{B: d.src[d.pos], G: d.src[d.pos+1], R: d.src[d.pos+2], A: 255}
	if d.bpp == 4 {
		c.A = d.src[d.pos+3]
	}
	d.pos += d.bpp
	return c
}

func (d *tgaDecoder) put(c color.RGBA) {
	x := d.pixel % d.width
	y := d.pixel / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetRGBA(x, y, c)
	d.pixel++
}
