// Package render draws the bill summary as a PNG: title, totals, one table
// row per participant, the grand total and, when supplied, the payment QR.
//
// The raster is supersampled: the context is created Scale times larger than
// the logical layout and a single Scale transform is applied before drawing.
// Text is rasterized directly at device resolution so glyphs stay sharp.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fogleman/gg"

	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/numfmt"
)

// Input is everything the renderer draws.
type Input struct {
	Participants []models.Participant
	Allocation   models.AllocationResult

	// QR is the payment QR image, nil for none.
	QR Source
}

// Image is a rendered summary.
type Image struct {
	// PNG is the encoded payload. It is empty if encoding failed.
	PNG []byte

	// Width and Height are logical; the PNG is Scale times larger.
	Width  int
	Height int

	// QRDrawn reports whether the QR artwork made it into the image.
	QRDrawn bool
}

// Renderer draws summary images. It is safe for concurrent use.
type Renderer struct {
	fonts *Fonts
}

// New creates a renderer with the given fonts.
func New(fonts *Fonts) *Renderer {
	return &Renderer{fonts: fonts}
}

type textStyle struct {
	bold   bool
	size   float64
	color  string
	anchor float64 // 0 left, 0.5 center, 1 right
}

var (
	styleTitle    = textStyle{bold: true, size: 28, color: colorInk, anchor: 0.5}
	styleSubtitle = textStyle{size: 14, color: colorMuted, anchor: 0.5}
	styleHeader   = textStyle{bold: true, size: 14, color: colorInk}
	styleCell     = textStyle{size: 13, color: colorInk}
	styleCellBold = textStyle{bold: true, size: 13, color: colorInk, anchor: 1}
	styleTotal    = textStyle{bold: true, size: 16, color: colorTotal, anchor: 0.5}
	styleQRLabel  = textStyle{bold: true, size: 14, color: colorInk, anchor: 0.5}
)

type canvas struct {
	dc    *gg.Context
	scale float64
	faces *faceCache
}

// text draws s with its baseline at logical (x, y).
func (c *canvas) text(s string, x, y float64, st textStyle) {
	c.dc.Push()
	c.dc.Identity()
	c.dc.SetHexColor(st.color)
	c.dc.SetFontFace(c.faces.get(st.bold, st.size))
	c.dc.DrawStringAnchored(s, x*c.scale, y*c.scale, st.anchor, 0)
	c.dc.Pop()
}

// line strokes a logical segment. Widths are in logical units.
func (c *canvas) line(x1, y1, x2, y2, width float64, color string) {
	c.dc.SetHexColor(color)
	c.dc.SetLineWidth(width * c.scale)
	c.dc.DrawLine(x1, y1, x2, y2)
	c.dc.Stroke()
}

// Render draws the summary. It does not fail: a QR that cannot be loaded is
// left out, and an encoding failure yields an empty payload.
func (r *Renderer) Render(ctx context.Context, in Input) Image {
	hasQR := in.QR != nil
	height := Height(len(in.Participants), hasQR)
	out := Image{Width: Width, Height: height}

	dc := gg.NewContext(Width*Scale, height*Scale)
	dc.Scale(Scale, Scale)
	c := &canvas{dc: dc, scale: Scale, faces: newFaceCache(r.fonts, Scale)}
	defer c.faces.close()

	w, h := float64(Width), float64(height)

	dc.SetHexColor(colorBackground)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	dc.SetHexColor(colorInk)
	dc.SetLineWidth(2 * Scale)
	dc.DrawRectangle(borderInset, borderInset, w-2*borderInset, h-2*borderInset)
	dc.Stroke()

	totalAfter := numfmt.Integer(numfmt.Round(in.Allocation.TotalAfterDiscount))

	y := 40.0
	c.text(textTitle, w/2, y, styleTitle)

	y += 35
	c.text(fmt.Sprintf(textSubtitle, numfmt.Integer(in.Allocation.TotalOriginal), totalAfter), w/2, y, styleSubtitle)

	y += 35
	c.text(textName, marginX, y, styleHeader)
	right := styleHeader
	right.anchor = 1
	c.text(textOriginal, amountColX, y, right)
	c.text(textPayment, paymentColX, y, right)

	y += 8
	c.line(marginX, y, w-marginX, y, 1, colorInk)

	y += 25
	rightCell := styleCell
	rightCell.anchor = 1
	for _, p := range in.Participants {
		c.text(p.Name, marginX, y, styleCell)
		c.text(numfmt.Integer(p.Amount), amountColX, y, rightCell)
		c.text(numfmt.Integer(in.Allocation.PaymentFor(p.ID)), paymentColX, y, styleCellBold)
		y += RowHeight
	}

	y += 10
	c.text(fmt.Sprintf(textTotal, totalAfter), w/2, y, styleTotal)

	if hasQR {
		y += 40
		c.text(textQRCaption, w/2, y, styleQRLabel)
		out.QRDrawn = r.drawQR(ctx, c, in.QR, y+qrGap)
	}
	metrics.Renders.WithLabelValues(strconv.FormatBool(hasQR)).Inc()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		slog.Error("Failed to encode summary image", "error", err)
		return out
	}
	out.PNG = buf.Bytes()

	slog.Debug("Summary rendered",
		"participants", len(in.Participants),
		"height", height,
		"qr", out.QRDrawn,
		"size", humanize.Bytes(uint64(len(out.PNG))),
	)
	return out
}

// drawQR loads the QR and draws it centered in the QR box whose top edge is
// at logical y. Failures are logged and reported as false.
func (r *Renderer) drawQR(ctx context.Context, c *canvas, src Source, top float64) bool {
	boxPx := int(qrBox * c.scale)
	fitted, err := loadFitted(ctx, src, boxPx)
	if err != nil {
		metrics.QRFailures.Inc()
		slog.Warn("QR load error, ignoring", "error", err)
		return false
	}

	b := fitted.Bounds()
	x := (Width*Scale - b.Dx()) / 2
	y := int(top*c.scale) + (boxPx-b.Dy())/2

	c.dc.Push()
	c.dc.Identity()
	c.dc.DrawImage(fitted, x, y)
	c.dc.Pop()
	return true
}

func loadFitted(ctx context.Context, src Source, box int) (*image.RGBA, error) {
	img, err := LoadImage(ctx, src)
	if err != nil {
		return nil, err
	}
	return Fit(img, box)
}
