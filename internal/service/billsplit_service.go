package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/export"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/session"
	"github.com/mmynk/billsplit/internal/storage"
)

// ServiceName is the fully-qualified name of the bill split service.
const ServiceName = "billsplit.v1.BillSplitService"

// Procedure paths.
const (
	CreateSessionProcedure     = "/" + ServiceName + "/CreateSession"
	GetSessionProcedure        = "/" + ServiceName + "/GetSession"
	DeleteSessionProcedure     = "/" + ServiceName + "/DeleteSession"
	AddParticipantProcedure    = "/" + ServiceName + "/AddParticipant"
	UpdateParticipantProcedure = "/" + ServiceName + "/UpdateParticipant"
	RemoveParticipantProcedure = "/" + ServiceName + "/RemoveParticipant"
	SetDiscountProcedure       = "/" + ServiceName + "/SetDiscount"
	SetQRImageProcedure        = "/" + ServiceName + "/SetQRImage"
	CalculateProcedure         = "/" + ServiceName + "/Calculate"
	ExportSummaryProcedure     = "/" + ServiceName + "/ExportSummary"
	ListExportsProcedure       = "/" + ServiceName + "/ListExports"
)

// BillSplitService implements the Connect BillSplitService.
type BillSplitService struct {
	sessions *session.Registry
	renderer export.Renderer
	store    storage.Store

	// exporters holds one Exporter per session, so each session has its own busy gate.
	exporters sync.Map
}

// NewBillSplitService creates a BillSplitService. store may be nil, in which
// case exports are not recorded and ListExports returns nothing.
func NewBillSplitService(sessions *session.Registry, renderer export.Renderer, store storage.Store) *BillSplitService {
	s := &BillSplitService{
		sessions: sessions,
		renderer: renderer,
		store:    store,
	}
	sessions.OnRemove(func(id string) { s.exporters.Delete(id) })
	return s
}

// Handler builds the HTTP handler serving every procedure of the service.
// The returned path is the prefix to mount it under.
func (s *BillSplitService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(CreateSessionProcedure, connect.NewUnaryHandler(CreateSessionProcedure, s.CreateSession, opts...))
	mux.Handle(GetSessionProcedure, connect.NewUnaryHandler(GetSessionProcedure, s.GetSession, opts...))
	mux.Handle(DeleteSessionProcedure, connect.NewUnaryHandler(DeleteSessionProcedure, s.DeleteSession, opts...))
	mux.Handle(AddParticipantProcedure, connect.NewUnaryHandler(AddParticipantProcedure, s.AddParticipant, opts...))
	mux.Handle(UpdateParticipantProcedure, connect.NewUnaryHandler(UpdateParticipantProcedure, s.UpdateParticipant, opts...))
	mux.Handle(RemoveParticipantProcedure, connect.NewUnaryHandler(RemoveParticipantProcedure, s.RemoveParticipant, opts...))
	mux.Handle(SetDiscountProcedure, connect.NewUnaryHandler(SetDiscountProcedure, s.SetDiscount, opts...))
	mux.Handle(SetQRImageProcedure, connect.NewUnaryHandler(SetQRImageProcedure, s.SetQRImage, opts...))
	mux.Handle(CalculateProcedure, connect.NewUnaryHandler(CalculateProcedure, s.Calculate, opts...))
	mux.Handle(ExportSummaryProcedure, connect.NewUnaryHandler(ExportSummaryProcedure, s.ExportSummary, opts...))
	mux.Handle(ListExportsProcedure, connect.NewUnaryHandler(ListExportsProcedure, s.ListExports, opts...))
	return "/" + ServiceName + "/", mux
}

// CreateSession starts a new session with one default participant.
func (s *BillSplitService) CreateSession(ctx context.Context, req *connect.Request[CreateSessionRequest]) (*connect.Response[SessionResponse], error) {
	sess := s.sessions.Create()
	slog.Info("Session created", "session_id", sess.ID())
	return s.respond(sess), nil
}

// GetSession returns the current state of a session.
func (s *BillSplitService) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[SessionResponse], error) {
	sess, err := s.lookup(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return s.respond(sess), nil
}

// DeleteSession discards a session.
func (s *BillSplitService) DeleteSession(ctx context.Context, req *connect.Request[DeleteSessionRequest]) (*connect.Response[DeleteSessionResponse], error) {
	if err := s.sessions.Discard(req.Msg.SessionID); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Session deleted", "session_id", req.Msg.SessionID)
	return connect.NewResponse(&DeleteSessionResponse{}), nil
}

// AddParticipant appends a participant, optionally with a name and amount.
func (s *BillSplitService) AddParticipant(ctx context.Context, req *connect.Request[AddParticipantRequest]) (*connect.Response[AddParticipantResponse], error) {
	sess, err := s.lookup(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	p := sess.AddParticipant()
	if req.Msg.Name != "" {
		if err := sess.UpdateName(p.ID, req.Msg.Name); err != nil {
			return nil, toConnectError(err)
		}
	}
	if req.Msg.Amount != "" {
		if err := sess.UpdateAmount(p.ID, req.Msg.Amount); err != nil {
			return nil, toConnectError(err)
		}
	}

	return connect.NewResponse(&AddParticipantResponse{
		ParticipantID: p.ID,
		Session:       s.state(sess),
	}), nil
}

// UpdateParticipant edits a participant's name and/or amount.
func (s *BillSplitService) UpdateParticipant(ctx context.Context, req *connect.Request[UpdateParticipantRequest]) (*connect.Response[SessionResponse], error) {
	sess, err := s.lookup(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	if req.Msg.Name != nil {
		if err := sess.UpdateName(req.Msg.ParticipantID, *req.Msg.Name); err != nil {
			return nil, toConnectError(err)
		}
	}
	if req.Msg.Amount != nil {
		if err := sess.UpdateAmount(req.Msg.ParticipantID, *req.Msg.Amount); err != nil {
			return nil, toConnectError(err)
		}
	}
	return s.respond(sess), nil
}

// RemoveParticipant deletes a participant. Removing the last one is allowed.
func (s *BillSplitService) RemoveParticipant(ctx context.Context, req *connect.Request[RemoveParticipantRequest]) (*connect.Response[SessionResponse], error) {
	sess, err := s.lookup(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.RemoveParticipant(req.Msg.ParticipantID); err != nil {
		return nil, toConnectError(err)
	}
	return s.respond(sess), nil
}

// SetDiscount changes the discount mode, the value, or both.
func (s *BillSplitService) SetDiscount(ctx context.Context, req *connect.Request[SetDiscountRequest]) (*connect.Response[SessionResponse], error) {
	sess, err := s.lookup(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	if req.Msg.Mode != "" {
		mode, err := models.ParseDiscountMode(req.Msg.Mode)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		sess.SetDiscountMode(mode)
	}
	if req.Msg.Value != nil {
		sess.SetDiscountValue(*req.Msg.Value)
	}
	return s.respond(sess), nil
}

// SetQRImage stores the payment QR as a data URI. The image is only decoded
// when a summary is rendered. File references are refused.
func (s *BillSplitService) SetQRImage(ctx context.Context, req *connect.Request[SetQRImageRequest]) (*connect.Response[SessionResponse], error) {
	img := strings.TrimSpace(req.Msg.Image)
	if img != "" && !strings.HasPrefix(strings.ToLower(img), "data:") {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("image must be a data URI"))
	}
	sess, err := s.lookup(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	sess.SetQR(img)
	return s.respond(sess), nil
}

// Calculate runs the allocation engine on the given participants without a session.
func (s *BillSplitService) Calculate(ctx context.Context, req *connect.Request[CalculateRequest]) (*connect.Response[CalculateResponse], error) {
	participants := make([]models.Participant, 0, len(req.Msg.Participants))
	for _, p := range req.Msg.Participants {
		if p == nil {
			continue
		}
		if p.Amount < 0 {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("participant %q has a negative amount", p.ID))
		}
		participants = append(participants, models.Participant{ID: p.ID, Name: p.Name, Amount: p.Amount})
	}

	sel := models.DiscountSelection{Mode: models.DiscountPercent}
	if d := req.Msg.Discount; d != nil {
		if d.Mode != "" {
			mode, err := models.ParseDiscountMode(d.Mode)
			if err != nil {
				return nil, connect.NewError(connect.CodeInvalidArgument, err)
			}
			sel.Mode = mode
		}
		sel.Value = d.Value
	}

	result := calculator.Allocate(participants, sel)
	metrics.Allocations.Inc()

	payments := make([]*Payment, len(result.Payments))
	for i, p := range result.Payments {
		payments[i] = &Payment{ParticipantID: p.ParticipantID, Amount: p.Amount}
	}
	return connect.NewResponse(&CalculateResponse{
		TotalOriginal:      result.TotalOriginal,
		TotalAfterDiscount: result.TotalAfterDiscount,
		Payments:           payments,
		Summary:            summaryToWire(calculator.Summarize(result, sel)),
	}), nil
}

// ExportSummary renders the session's summary image and returns it for
// download or for the clipboard, together with the notice for the user.
func (s *BillSplitService) ExportSummary(ctx context.Context, req *connect.Request[ExportSummaryRequest]) (*connect.Response[ExportSummaryResponse], error) {
	kind := models.ExportKind(req.Msg.Kind)
	if kind != models.ExportDownload && kind != models.ExportCopy {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown export kind %q", req.Msg.Kind))
	}

	sess, err := s.lookup(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	snap := sess.Snapshot()
	metrics.Allocations.Inc()

	rec := &export.Recorder{}
	ctx = export.ContextWithRecorder(ctx, rec)
	target := &export.CaptureTarget{}

	exporter, err := s.exporter(sess.ID())
	if err != nil {
		return nil, toConnectError(err)
	}
	a, err := exporter.Export(ctx, kind, export.InputFromSnapshot(snap), target)
	if err != nil {
		if errors.Is(err, export.ErrBusy) {
			return nil, connect.NewError(connect.CodeResourceExhausted, err)
		}
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("%s: %w", rec.Last().Message, err))
	}

	return connect.NewResponse(&ExportSummaryResponse{
		Filename: a.Filename,
		MIMEType: a.MIMEType,
		Image:    a.Data,
		Notice:   rec.Last().Message,
	}), nil
}

// ListExports returns the export ledger, most recent first.
func (s *BillSplitService) ListExports(ctx context.Context, req *connect.Request[ListExportsRequest]) (*connect.Response[ListExportsResponse], error) {
	if s.store == nil {
		return connect.NewResponse(&ListExportsResponse{}), nil
	}
	records, err := s.store.ListExports(ctx, req.Msg.Limit)
	if err != nil {
		slog.Error("ListExports failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to list exports: %w", err))
	}

	out := make([]*ExportRecord, len(records))
	for i, r := range records {
		out[i] = exportRecordToWire(r)
	}
	return connect.NewResponse(&ListExportsResponse{Exports: out}), nil
}

func (s *BillSplitService) lookup(id string) (*session.Session, error) {
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("session_id is required"))
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, toConnectError(err)
	}
	return sess, nil
}

func (s *BillSplitService) state(sess *session.Session) *SessionState {
	metrics.Allocations.Inc()
	return sessionToWire(sess.Snapshot())
}

func (s *BillSplitService) respond(sess *session.Session) *connect.Response[SessionResponse] {
	return connect.NewResponse(&SessionResponse{Session: s.state(sess)})
}

func (s *BillSplitService) exporter(sessionID string) (*export.Exporter, error) {
	if e, ok := s.exporters.Load(sessionID); ok {
		return e.(*export.Exporter), nil
	}
	opts := []export.Option{export.WithNotifier(export.ContextNotifier{})}
	if s.store != nil {
		opts = append(opts, export.WithLedger(s.store))
	}
	e, _ := s.exporters.LoadOrStore(sessionID, export.New(s.renderer, opts...))

	// The session may have been removed after the caller looked it up, in
	// which case OnRemove already ran and would never drop this entry.
	if _, err := s.sessions.Get(sessionID); err != nil {
		s.exporters.Delete(sessionID)
		return nil, err
	}
	return e.(*export.Exporter), nil
}

// toConnectError maps domain errors to Connect codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrParticipantNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, export.ErrBusy):
		return connect.NewError(connect.CodeResourceExhausted, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
