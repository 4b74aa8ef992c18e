package logger

import (
	"context"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// ActionInfo identifies the coordinator operation a log line belongs to
type ActionInfo struct {
	RequestID     string
	OwnerID       string
	Action        string
	ReferenceCode string
}

// Fields returns the action info as zap fields, skipping empty values
func (a ActionInfo) Fields() []zap.Field {
	fields := make([]zap.Field, 0, 4)
	if a.RequestID != "" {
		fields = append(fields, zap.String("request_id", a.RequestID))
	}
	if a.OwnerID != "" {
		fields = append(fields, zap.String("owner_id", a.OwnerID))
	}
	if a.Action != "" {
		fields = append(fields, zap.String("action", a.Action))
	}
	if a.ReferenceCode != "" {
		fields = append(fields, zap.String("reference_code", a.ReferenceCode))
	}
	return fields
}

// ContextWithAction attaches a sentry hub tagged with the action info to ctx.
// Errors logged through the *Ctx helpers with the returned context are grouped
// in Sentry by owner and action.
func ContextWithAction(ctx context.Context, info ActionInfo) context.Context {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub = hub.Clone()
	if sentryClient != nil {
		hub.BindClient(sentryClient)
	}
	hub.ConfigureScope(func(scope *sentry.Scope) {
		if info.RequestID != "" {
			scope.SetTag("request_id", info.RequestID)
		}
		if info.OwnerID != "" {
			scope.SetUser(sentry.User{ID: info.OwnerID})
		}
		if info.Action != "" {
			scope.SetTag("action", info.Action)
		}
		if info.ReferenceCode != "" {
			scope.SetTag("reference_code", info.ReferenceCode)
		}
	})
	return sentry.SetHubOnContext(ctx, hub)
}

// WithAction returns a logger carrying the action info as fields
func WithAction(ctx context.Context, info ActionInfo) *zap.Logger {
	return FromContext(ctx).With(info.Fields()...)
}
