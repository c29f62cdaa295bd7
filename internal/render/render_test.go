package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincent-petithory/dataurl"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	fonts, err := DefaultFonts()
	require.NoError(t, err)
	return New(fonts)
}

func testInput(qr Source) Input {
	ps := []models.Participant{
		{ID: "a", Name: "An", Amount: 100000},
		{ID: "b", Name: "Bình", Amount: 200000},
	}
	sel := models.DiscountSelection{Mode: models.DiscountPercent, Value: "10"}
	return Input{Participants: ps, Allocation: calculator.Allocate(ps, sel), QR: qr}
}

// solidPNG encodes a w x h image filled with c.
func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decode(t *testing.T, out Image) image.Image {
	t.Helper()
	require.NotEmpty(t, out.PNG)
	img, err := png.Decode(bytes.NewReader(out.PNG))
	require.NoError(t, err)
	return img
}

func rgb8(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func isRed(img image.Image, x, y int) bool {
	r, g, b := rgb8(img, x, y)
	return r > 200 && g < 60 && b < 60
}

func isWhite(img image.Image, x, y int) bool {
	r, g, b := rgb8(img, x, y)
	return r > 240 && g > 240 && b > 240
}

var red = color.RGBA{R: 255, A: 255}

func TestHeight(t *testing.T) {
	assert.Equal(t, 150, Height(0, false))
	assert.Equal(t, 230, Height(2, false))
	assert.Equal(t, 480, Height(2, true))
}

func TestRender_WithoutQR(t *testing.T) {
	r := newTestRenderer(t)
	out := r.Render(context.Background(), testInput(nil))

	assert.Equal(t, Width, out.Width)
	assert.Equal(t, Height(2, false), out.Height)
	assert.False(t, out.QRDrawn)

	img := decode(t, out)
	assert.Equal(t, Width*Scale, img.Bounds().Dx())
	assert.Equal(t, Height(2, false)*Scale, img.Bounds().Dy(), "no QR section")

	assert.True(t, isWhite(img, 2, 2), "background")
	r8, g8, b8 := rgb8(img, borderInset*Scale, img.Bounds().Dy()/2)
	assert.Less(t, int(r8)+int(g8)+int(b8), 100, "border frame")
}

func TestRender_WithQR(t *testing.T) {
	r := newTestRenderer(t)
	n := 2
	qr := DataURL(dataurl.EncodeBytes(solidPNG(t, 40, 20, red)))

	out := r.Render(context.Background(), testInput(qr))
	require.True(t, out.QRDrawn)
	assert.Equal(t, Height(n, true), out.Height)

	img := decode(t, out)
	assert.Equal(t, Height(n, true)*Scale, img.Bounds().Dy(), "QR section included")

	// The QR box starts 213 + 40n logical pixels down and is 160 square.
	boxTop := 213 + RowHeight*n
	centerX := Width / 2 * Scale
	centerY := (boxTop + qrBox/2) * Scale

	assert.True(t, isRed(img, centerX, centerY), "QR drawn at box center")
	// Landscape image is letterboxed: top of the box stays white.
	assert.True(t, isWhite(img, centerX, (boxTop+10)*Scale), "letterbox above landscape QR")
}

func TestRender_PortraitQRIsPillarboxed(t *testing.T) {
	r := newTestRenderer(t)
	qr := Bytes(solidPNG(t, 20, 40, red))

	out := r.Render(context.Background(), testInput(qr))
	require.True(t, out.QRDrawn)
	img := decode(t, out)

	boxTop := 213 + RowHeight*2
	centerY := (boxTop + qrBox/2) * Scale
	boxLeft := (Width - qrBox) / 2 * Scale

	assert.True(t, isRed(img, Width/2*Scale, centerY))
	assert.True(t, isWhite(img, boxLeft+10, centerY), "pillarbox left of portrait QR")
}

func TestRender_BrokenQRStillRenders(t *testing.T) {
	r := newTestRenderer(t)

	for name, src := range map[string]Source{
		"undecodable image": DataURL("data:image/png;base64,AAAA"),
		"malformed data url": DataURL("data:nope"),
		"missing file":       File("/nonexistent/qr.png"),
	} {
		t.Run(name, func(t *testing.T) {
			out := r.Render(context.Background(), testInput(src))
			assert.False(t, out.QRDrawn)
			img := decode(t, out)
			assert.Equal(t, Height(2, true)*Scale, img.Bounds().Dy(), "layout keeps the QR section")
		})
	}
}

func TestRender_NoParticipants(t *testing.T) {
	r := newTestRenderer(t)
	out := r.Render(context.Background(), Input{})
	img := decode(t, out)
	assert.Equal(t, BaseHeight*Scale, img.Bounds().Dy())
}

func TestRender_Deterministic(t *testing.T) {
	r := newTestRenderer(t)
	a := r.Render(context.Background(), testInput(nil))
	b := r.Render(context.Background(), testInput(nil))
	assert.Equal(t, a.PNG, b.PNG)
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{40, 20, 160, 80},
		{20, 40, 80, 160},
		{500, 500, 160, 160},
		{1000, 1, 160, 1},
	}
	for _, tt := range tests {
		src := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
		got, err := Fit(src, 160)
		require.NoError(t, err)
		assert.Equal(t, tt.wantW, got.Bounds().Dx(), "%dx%d width", tt.w, tt.h)
		assert.Equal(t, tt.wantH, got.Bounds().Dy(), "%dx%d height", tt.w, tt.h)
	}

	_, err := Fit(image.NewRGBA(image.Rect(0, 0, 0, 0)), 160)
	assert.Error(t, err)
}

func TestParseSource(t *testing.T) {
	assert.Nil(t, ParseSource(""))
	assert.Nil(t, ParseSource("   "))
	assert.Equal(t, DataURL("data:image/png;base64,AAAA"), ParseSource("data:image/png;base64,AAAA"))
	assert.Equal(t, DataURL("DATA:image/png;base64,AAAA"), ParseSource("DATA:image/png;base64,AAAA"))
	assert.Equal(t, File("/tmp/qr.png"), ParseSource("file:///tmp/qr.png"))
	assert.Equal(t, File("qr.png"), ParseSource("qr.png"))
}

func TestLoadFonts_MissingFile(t *testing.T) {
	_, err := LoadFonts("/nonexistent/font.ttf", "")
	assert.Error(t, err)
}
