package gatekeep

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestVerifyAdminKey(t *testing.T) {
	store := newTestStore(t)
	engine, err := New().
		WithConfig(testConfig()).
		WithStore(store).
		WithAdminKey("super-secret").
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if err := engine.VerifyAdminKey("super-secret"); err != nil {
		t.Fatalf("correct key rejected: %v", err)
	}
	if err := engine.VerifyAdminKey("wrong"); !errors.Is(err, ErrAdminKeyInvalid) {
		t.Fatalf("expected ErrAdminKeyInvalid, got %v", err)
	}
	if err := engine.VerifyAdminKey(""); !errors.Is(err, ErrAdminKeyInvalid) {
		t.Fatalf("empty key: expected ErrAdminKeyInvalid, got %v", err)
	}
}

// With no admin key configured, the admin surface is closed, not open.
func TestVerifyAdminKeyUnconfigured(t *testing.T) {
	engine, _ := newTestEngine(t)

	if err := engine.VerifyAdminKey(""); !errors.Is(err, ErrAdminKeyInvalid) {
		t.Fatalf("expected ErrAdminKeyInvalid, got %v", err)
	}
	if err := engine.VerifyAdminKey("anything"); !errors.Is(err, ErrAdminKeyInvalid) {
		t.Fatalf("expected ErrAdminKeyInvalid, got %v", err)
	}
}

func TestBuildRequiresStore(t *testing.T) {
	_, err := New().WithConfig(testConfig()).Build()
	if err == nil {
		t.Fatal("expected build without store to fail")
	}
}

func TestBuildRejectsShortSigningKey(t *testing.T) {
	cfg := testConfig()
	cfg.Session.SigningKey = []byte("too-short")

	_, err := New().WithConfig(cfg).WithStore(newTestStore(t)).Build()
	if err == nil {
		t.Fatal("expected build with short signing key to fail")
	}
}

func TestBuilderIsOneShot(t *testing.T) {
	b := New().WithConfig(testConfig()).WithStore(newTestStore(t))
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second build to fail")
	}
}

func TestAuditSinkReceivesEvents(t *testing.T) {
	sink := NewChannelSink(16)

	cfg := testConfig()
	cfg.Audit.Enabled = true

	engine, err := New().
		WithConfig(cfg).
		WithStore(newTestStore(t)).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	signupAccount(t, engine, validSignup())
	engine.Close() // drains the dispatcher

	select {
	case ev := <-sink.Events():
		if ev.EventType != "signup_success" {
			t.Fatalf("unexpected event type %q", ev.EventType)
		}
		if ev.Email != "alice@example.com" {
			t.Fatalf("unexpected event email %q", ev.Email)
		}
		if !ev.Success {
			t.Fatal("expected a success event")
		}
	case <-time.After(time.Second):
		t.Fatal("no audit event delivered")
	}
}

func TestAuditEventCarriesClientIP(t *testing.T) {
	sink := NewChannelSink(16)

	cfg := testConfig()
	cfg.Audit.Enabled = true

	engine, err := New().
		WithConfig(cfg).
		WithStore(newTestStore(t)).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	ctx := WithClientIP(context.Background(), "203.0.113.7")
	if _, err := engine.Signup(ctx, validSignup()); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	engine.Close()

	select {
	case ev := <-sink.Events():
		if ev.IP != "203.0.113.7" {
			t.Fatalf("expected client IP on event, got %q", ev.IP)
		}
	case <-time.After(time.Second):
		t.Fatal("no audit event delivered")
	}
}

func TestLoginLatencyObserved(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := New().WithConfig(cfg).WithStore(newTestStore(t)).Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	id := signupAccount(t, engine, validSignup())
	approveAccount(t, engine, id, nil)
	if _, err := engine.Login(context.Background(), "alice@example.com", "correct-horse-battery"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	snapshot := engine.MetricsSnapshot()
	buckets := snapshot.Histograms[MetricLoginLatency]
	var total uint64
	for _, b := range buckets {
		total += b
	}
	if total == 0 {
		t.Fatal("expected at least one latency observation")
	}
}
