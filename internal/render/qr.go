package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"strings"

	"github.com/vincent-petithory/dataurl"
	_ "golang.org/x/image/bmp" // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Source is an opaque reference to the payment QR image.
// The renderer only opens and decodes it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// DataURL is an image embedded in a data URI, as produced by a browser file reader.
type DataURL string

func (d DataURL) Open(ctx context.Context) (io.ReadCloser, error) {
	u, err := dataurl.DecodeString(string(d))
	if err != nil {
		return nil, fmt.Errorf("failed to decode data url: %w", err)
	}
	return io.NopCloser(bytes.NewReader(u.Data)), nil
}

// Bytes is an encoded image held in memory.
type Bytes []byte

func (b Bytes) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// File is an encoded image on disk.
type File string

func (f File) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(string(f))
}

// ParseSource picks a Source for a stored reference: data URIs are embedded
// images, anything else is a file path. Empty input yields nil.
func ParseSource(ref string) Source {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil
	case strings.HasPrefix(strings.ToLower(ref), "data:"):
		return DataURL(ref)
	default:
		return File(strings.TrimPrefix(ref, "file://"))
	}
}

// LoadImage opens and decodes src.
func LoadImage(ctx context.Context, src Source) (image.Image, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Fit scales img so its longer side equals box, preserving the aspect ratio.
func Fit(img image.Image, box int) (*image.RGBA, error) {
	b := img.Bounds()
	iw, ih := b.Dx(), b.Dy()
	if iw <= 0 || ih <= 0 {
		return nil, errors.New("image has no pixels")
	}

	w, h := box, box
	if iw >= ih {
		h = max(1, (box*ih+iw/2)/iw)
	} else {
		w = max(1, (box*iw+ih/2)/ih)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst, nil
}
