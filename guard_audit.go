package goGuard

import (
	"context"
	"errors"

	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/remote"
	"github.com/MrEthical07/goGuard/session"
)

const (
	auditEventForceLogout        = "force_logout"
	auditEventLogout             = "logout"
	auditEventRemoteLogoutFailed = "remote_logout_failed"
	auditEventSessionRejected    = "session_rejected"
	auditEventSessionEstablished = "session_established"
)

// AuditErrorCode is the stable error label carried by audit events.
type AuditErrorCode string

const (
	auditErrStoreUnavailable  AuditErrorCode = "store_unavailable"
	auditErrRemoteUnavailable AuditErrorCode = "remote_unavailable"
	auditErrRemoteStatus      AuditErrorCode = "remote_status"
	auditErrInvalidSession    AuditErrorCode = "invalid_session"
	auditErrTimeout           AuditErrorCode = "timeout"
	auditErrInternal          AuditErrorCode = "internal_error"
)

func (g *Guard) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	role permission.Role,
	path string,
	target string,
	reason string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if g == nil || g.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		EventType: eventType,
		ClientID:  ClientIDFromContext(ctx),
		Role:      role.String(),
		Path:      path,
		Target:    target,
		Reason:    reason,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	g.audit.Emit(context.WithoutCancel(ctx), event)
}

func logoutAuditEvent(r Reason) string {
	switch r {
	case ReasonExplicitLogout:
		return auditEventLogout
	case ReasonSessionRejected:
		return auditEventSessionRejected
	default:
		return auditEventForceLogout
	}
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	var statusErr *remote.StatusError
	switch {
	case errors.Is(err, session.ErrStoreUnavailable), errors.Is(err, ErrStoreRequired):
		return auditErrStoreUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return auditErrTimeout
	case errors.As(err, &statusErr):
		return auditErrRemoteStatus
	case errors.Is(err, remote.ErrUnavailable):
		return auditErrRemoteUnavailable
	case errors.Is(err, ErrInvalidSession):
		return auditErrInvalidSession
	default:
		return auditErrInternal
	}
}
