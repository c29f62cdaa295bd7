package service

// Wire messages of billsplit.v1.BillSplitService. They travel as JSON.

// Participant is one row of the participant list with its computed payment.
type Participant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Amount  int64  `json:"amount"`
	Payment int64  `json:"payment"`
}

// Discount is the discount selection as typed by the user.
type Discount struct {
	Mode  string `json:"mode"`
	Value string `json:"value"`
}

// Summary is the formatted summary cards.
type Summary struct {
	TotalOriginal      string `json:"total_original"`
	TotalAfterDiscount string `json:"total_after_discount"`
	DiscountLabel      string `json:"discount_label"`
	ShowDiscount       bool   `json:"show_discount"`
	DiscountAmount     int64  `json:"discount_amount"`
}

// SessionState is the full state of a session plus its derived values.
type SessionState struct {
	SessionID          string         `json:"session_id"`
	Participants       []*Participant `json:"participants"`
	Discount           *Discount      `json:"discount"`
	HasQR              bool           `json:"has_qr"`
	TotalOriginal      int64          `json:"total_original"`
	TotalAfterDiscount float64        `json:"total_after_discount"`
	Summary            *Summary       `json:"summary"`
}

type SessionResponse struct {
	Session *SessionState `json:"session"`
}

type CreateSessionRequest struct{}

type GetSessionRequest struct {
	SessionID string `json:"session_id"`
}

func (r *GetSessionRequest) SessionKey() string { return r.SessionID }

type DeleteSessionRequest struct {
	SessionID string `json:"session_id"`
}

func (r *DeleteSessionRequest) SessionKey() string { return r.SessionID }

type DeleteSessionResponse struct{}

type AddParticipantRequest struct {
	SessionID string `json:"session_id"`
	// Name and Amount are optional initial values.
	Name   string `json:"name,omitempty"`
	Amount string `json:"amount,omitempty"`
}

func (r *AddParticipantRequest) SessionKey() string { return r.SessionID }

type AddParticipantResponse struct {
	ParticipantID string        `json:"participant_id"`
	Session       *SessionState `json:"session"`
}

type UpdateParticipantRequest struct {
	SessionID     string `json:"session_id"`
	ParticipantID string `json:"participant_id"`
	// Nil fields are left unchanged. Amount is raw input.
	Name   *string `json:"name,omitempty"`
	Amount *string `json:"amount,omitempty"`
}

func (r *UpdateParticipantRequest) SessionKey() string { return r.SessionID }

type RemoveParticipantRequest struct {
	SessionID     string `json:"session_id"`
	ParticipantID string `json:"participant_id"`
}

func (r *RemoveParticipantRequest) SessionKey() string { return r.SessionID }

type SetDiscountRequest struct {
	SessionID string `json:"session_id"`
	// Empty Mode and nil Value are left unchanged.
	Mode  string  `json:"mode,omitempty"`
	Value *string `json:"value,omitempty"`
}

func (r *SetDiscountRequest) SessionKey() string { return r.SessionID }

type SetQRImageRequest struct {
	SessionID string `json:"session_id"`
	// Image is a data URI; empty clears the QR.
	Image string `json:"image"`
}

func (r *SetQRImageRequest) SessionKey() string { return r.SessionID }

// CalculateRequest runs the allocation engine without a session.
type CalculateRequest struct {
	Participants []*Participant `json:"participants"`
	Discount     *Discount      `json:"discount"`
}

type Payment struct {
	ParticipantID string `json:"participant_id"`
	Amount        int64  `json:"amount"`
}

type CalculateResponse struct {
	TotalOriginal      int64      `json:"total_original"`
	TotalAfterDiscount float64    `json:"total_after_discount"`
	Payments           []*Payment `json:"payments"`
	Summary            *Summary   `json:"summary"`
}

type ExportSummaryRequest struct {
	SessionID string `json:"session_id"`
	// Kind is "download" or "copy".
	Kind string `json:"kind"`
}

func (r *ExportSummaryRequest) SessionKey() string { return r.SessionID }

type ExportSummaryResponse struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Image    []byte `json:"image"`
	Notice   string `json:"notice"`
}

type ListExportsRequest struct {
	Limit int `json:"limit"`
}

type ExportRecord struct {
	ID                 string `json:"id"`
	Kind               string `json:"kind"`
	Filename           string `json:"filename"`
	ParticipantCount   int    `json:"participant_count"`
	TotalOriginal      int64  `json:"total_original"`
	TotalAfterDiscount int64  `json:"total_after_discount"`
	Bytes              int64  `json:"bytes"`
	Status             string `json:"status"`
	Error              string `json:"error,omitempty"`
	CreatedAt          int64  `json:"created_at"`
}

type ListExportsResponse struct {
	Exports []*ExportRecord `json:"exports"`
}
