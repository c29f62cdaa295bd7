package service

import (
	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/session"
)

func sessionToWire(snap session.Snapshot) *SessionState {
	participants := make([]*Participant, len(snap.Participants))
	for i, p := range snap.Participants {
		participants[i] = &Participant{
			ID:      p.ID,
			Name:    p.Name,
			Amount:  p.Amount,
			Payment: snap.Allocation.PaymentFor(p.ID),
		}
	}
	return &SessionState{
		SessionID:          snap.SessionID,
		Participants:       participants,
		Discount:           &Discount{Mode: string(snap.Discount.Mode), Value: snap.Discount.Value},
		HasQR:              snap.QR != "",
		TotalOriginal:      snap.Allocation.TotalOriginal,
		TotalAfterDiscount: snap.Allocation.TotalAfterDiscount,
		Summary:            summaryToWire(snap.Summary),
	}
}

func summaryToWire(s calculator.Summary) *Summary {
	return &Summary{
		TotalOriginal:      s.TotalOriginal,
		TotalAfterDiscount: s.TotalAfterDiscount,
		DiscountLabel:      s.DiscountLabel,
		ShowDiscount:       s.ShowDiscount,
		DiscountAmount:     s.DiscountAmount,
	}
}

func exportRecordToWire(r *models.ExportRecord) *ExportRecord {
	return &ExportRecord{
		ID:                 r.ID,
		Kind:               string(r.Kind),
		Filename:           r.Filename,
		ParticipantCount:   r.ParticipantCount,
		TotalOriginal:      r.TotalOriginal,
		TotalAfterDiscount: r.TotalAfterDiscount,
		Bytes:              r.Bytes,
		Status:             string(r.Status),
		Error:              r.Error,
		CreatedAt:          r.CreatedAt,
	}
}
