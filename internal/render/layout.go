package render

// Logical layout of the summary image. Drawing coordinates use these units;
// the raster is Scale times larger.
const (
	Width           = 600
	BaseHeight      = 150
	RowHeight       = 40
	QRSectionHeight = 250
	Scale           = 2

	borderInset = 10
	marginX     = 30
	amountColX  = Width - 150
	paymentColX = Width - 30
	qrBox       = 160
	qrGap       = 20
)

const (
	colorBackground = "#ffffff"
	colorInk        = "#000000"
	colorMuted      = "#666666"
	colorTotal      = "#16a34a"
)

const (
	textTitle     = "Danh Sách Chia Chi Phí"
	textSubtitle  = "Chi Phí: %s → %s"
	textName      = "Tên"
	textOriginal  = "Chi Phí Gốc"
	textPayment   = "Thanh Toán"
	textTotal     = "Tổng: %s"
	textQRCaption = "Mã QR Chuyển Khoản"
)

// Height returns the logical height of a summary with n participants.
func Height(n int, hasQR bool) int {
	h := BaseHeight + RowHeight*n
	if hasQR {
		h += QRSectionHeight
	}
	return h
}
