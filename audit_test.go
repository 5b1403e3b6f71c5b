package goGuard

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/remote"
	"github.com/MrEthical07/goGuard/session"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func buildAuditGuard(t *testing.T, r RemoteSession, sink AuditSink) *Guard {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Logout.AwaitRemote = true
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 32
	cfg.Audit.DropIfFull = false

	g, err := New().WithConfig(cfg).WithRemote(r).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return g
}

func nextEvent(t *testing.T, sink *ChannelSink) AuditEvent {
	t.Helper()
	select {
	case ev := <-sink.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for audit event")
	}
	return AuditEvent{}
}

func TestAuditForceLogoutEvent(t *testing.T) {
	sink := NewChannelSink(8)
	g := buildAuditGuard(t, newFakeRemote(), sink)
	defer g.Close()

	store := session.NewMemoryStore()
	seed(t, store, map[string]string{session.KeyAccessToken: "abc", session.KeyRole: "lecturer"})

	ctx := WithClientID(context.Background(), "client-1")
	g.NavigateWith(ctx, store, mustDest(t, "faculties"))

	ev := nextEvent(t, sink)
	if ev.EventType != auditEventForceLogout || ev.ClientID != "client-1" || ev.Role != "lecturer" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Reason != "role_mismatch" || ev.Path != "/admin/faculties" || !ev.Success || ev.EventID == "" {
		t.Fatalf("unexpected event fields %+v", ev)
	}
	if ev.Metadata["remote_dispatched"] != "true" {
		t.Fatalf("expected remote_dispatched metadata, got %v", ev.Metadata)
	}
}

func TestAuditRemoteFailureEvent(t *testing.T) {
	sink := NewChannelSink(8)
	r := newFakeRemote()
	r.err = &remote.StatusError{StatusCode: 500}
	g := buildAuditGuard(t, r, sink)
	defer g.Close()

	store := session.NewMemoryStore()
	seed(t, store, map[string]string{session.KeyAccessToken: "abc", session.KeyRole: "admin"})
	g.Logout(context.Background(), store)

	first := nextEvent(t, sink)
	if first.EventType != auditEventRemoteLogoutFailed || first.Error != string(auditErrRemoteStatus) {
		t.Fatalf("unexpected first event %+v", first)
	}
	second := nextEvent(t, sink)
	if second.EventType != auditEventLogout || !second.Success {
		t.Fatalf("unexpected second event %+v", second)
	}
}

func TestAuditSessionEstablished(t *testing.T) {
	sink := NewChannelSink(8)
	g := buildAuditGuard(t, newFakeRemote(), sink)
	defer g.Close()

	err := g.Establish(context.Background(), session.NewMemoryStore(), session.Session{Token: "abc", Role: permission.RoleStudent}, nil)
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	ev := nextEvent(t, sink)
	if ev.EventType != auditEventSessionEstablished || ev.Role != "student" || !ev.Success {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestAuditErrorCodeMapping(t *testing.T) {
	tests := []struct {
		err  error
		want AuditErrorCode
	}{
		{err: nil, want: ""},
		{err: session.ErrStoreUnavailable, want: auditErrStoreUnavailable},
		{err: ErrStoreRequired, want: auditErrStoreUnavailable},
		{err: context.DeadlineExceeded, want: auditErrTimeout},
		{err: &remote.StatusError{StatusCode: 401}, want: auditErrRemoteStatus},
		{err: remote.ErrUnavailable, want: auditErrRemoteUnavailable},
		{err: ErrInvalidSession, want: auditErrInvalidSession},
		{err: errors.New("other"), want: auditErrInternal},
	}
	for _, tt := range tests {
		if got := auditErrorCode(tt.err); got != tt.want {
			t.Fatalf("auditErrorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestAuditDisabledEmitsNothing(t *testing.T) {
	sink := NewChannelSink(1)
	g, err := New().WithRemote(newFakeRemote()).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer g.Close()

	store := session.NewMemoryStore()
	g.ForceLogout(context.Background(), store, ReasonUnauthenticated)
	select {
	case ev := <-sink.Events():
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
	if g.AuditDropped() != 0 {
		t.Fatal("expected zero drops")
	}
}

func TestJSONWriterSinkThroughGuard(t *testing.T) {
	var buf bytes.Buffer
	g := buildAuditGuard(t, newFakeRemote(), NewJSONWriterSink(&buf))

	store := session.NewMemoryStore()
	g.ForceLogout(context.Background(), store, ReasonUnauthenticated)
	g.Close()

	if !bytes.Contains(buf.Bytes(), []byte(`"event_type":"force_logout"`)) {
		t.Fatalf("expected force_logout line, got %s", buf.String())
	}
}

func TestZapSinkLogsEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewZapSink(zap.New(core))

	sink.Emit(context.Background(), AuditEvent{EventID: "e1", EventType: auditEventLogout, Role: "admin", Success: true})

	entries := logs.FilterMessage(auditEventLogout).All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["role"] != "admin" || fields["event_id"] != "e1" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

type gatedAuditSink struct {
	gate chan struct{}
}

func (s gatedAuditSink) Emit(context.Context, AuditEvent) { <-s.gate }

func TestAuditDropsAreCountedByEventType(t *testing.T) {
	sink := gatedAuditSink{gate: make(chan struct{})}
	cfg := DefaultConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 1
	cfg.Audit.DropIfFull = true
	g, err := New().WithConfig(cfg).WithRemote(newFakeRemote()).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for i := 0; i < 10; i++ {
		g.ForceLogout(context.Background(), session.NewMemoryStore(), ReasonUnauthenticated)
	}
	close(sink.gate)
	g.Close()

	byType := g.AuditDroppedByType()
	if byType[auditEventForceLogout] == 0 || byType[auditEventForceLogout] != g.AuditDropped() {
		t.Fatalf("expected force_logout drops matching the total %d, got %v", g.AuditDropped(), byType)
	}
}

type gatedRemote struct {
	gate chan struct{}
}

func (r gatedRemote) Logout(ctx context.Context, _ permission.Role, _ string) error {
	select {
	case <-r.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestPendingRemoteLogoutsTracksDetachedCalls(t *testing.T) {
	r := gatedRemote{gate: make(chan struct{})}
	g, err := New().WithRemote(r).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer g.Close()

	store := session.NewMemoryStore()
	seed(t, store, map[string]string{session.KeyAccessToken: "abc", session.KeyRole: "student"})
	g.ForceLogout(context.Background(), store, ReasonRoleMismatch)
	if n := g.PendingRemoteLogouts(); n != 1 {
		t.Fatalf("expected one pending remote logout, got %d", n)
	}

	close(r.gate)
	g.Wait()
	if n := g.PendingRemoteLogouts(); n != 0 {
		t.Fatalf("expected no pending remote logouts, got %d", n)
	}
}
