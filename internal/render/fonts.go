package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Fonts is the pair of typefaces used by the renderer.
type Fonts struct {
	Regular *truetype.Font
	Bold    *truetype.Font
}

// DefaultFonts returns the embedded Go fonts.
func DefaultFonts() (*Fonts, error) {
	return LoadFonts("", "")
}

// LoadFonts parses TrueType files from disk. An empty path selects the
// matching Go font. The Go fonts lack some Vietnamese precomposed letters,
// so deployments should point these at a font that has them.
func LoadFonts(regularPath, boldPath string) (*Fonts, error) {
	regular, err := loadFont(regularPath, goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load regular font: %w", err)
	}
	bold, err := loadFont(boldPath, gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load bold font: %w", err)
	}
	return &Fonts{Regular: regular, Bold: bold}, nil
}

func loadFont(path string, fallback []byte) (*truetype.Font, error) {
	data := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return truetype.Parse(data)
}

type faceKey struct {
	bold bool
	size float64
}

// faceCache builds faces at device resolution. Faces are not safe for
// concurrent use, so each render owns its cache.
type faceCache struct {
	fonts *Fonts
	scale float64
	faces map[faceKey]font.Face
}

func newFaceCache(fonts *Fonts, scale float64) *faceCache {
	return &faceCache{fonts: fonts, scale: scale, faces: make(map[faceKey]font.Face)}
}

func (c *faceCache) get(bold bool, size float64) font.Face {
	key := faceKey{bold: bold, size: size}
	if f, ok := c.faces[key]; ok {
		return f
	}
	ttf := c.fonts.Regular
	if bold {
		ttf = c.fonts.Bold
	}
	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    size * c.scale,
		Hinting: font.HintingFull,
	})
	c.faces[key] = f
	return f
}

func (c *faceCache) close() {
	for _, f := range c.faces {
		f.Close()
	}
}
