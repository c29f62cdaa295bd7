package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// SessionScoped is implemented by request messages that address a session.
type SessionScoped interface {
	SessionKey() string
}

// sessionID extracts the session id from a request message, if any.
func sessionID(req connect.AnyRequest) string {
	if s, ok := req.Any().(SessionScoped); ok {
		return s.SessionKey()
	}
	return ""
}

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It logs the procedure name, request and session IDs, duration, and any error codes/messages.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			requestID := chimw.GetReqID(ctx)
			session := sessionID(req)

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					slog.Warn("RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"request_id", requestID,
						"session_id", session,
						"duration_ms", duration,
					)
				} else {
					slog.Error("RPC error",
						"procedure", procedure,
						"error", err,
						"request_id", requestID,
						"session_id", session,
						"duration_ms", duration,
					)
				}
			} else {
				slog.Info("RPC ok",
					"procedure", procedure,
					"request_id", requestID,
					"session_id", session,
					"duration_ms", duration,
				)
			}

			return resp, err
		}
	}
}
