package schema

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
)

// --- Mocks ---

type mockIndexClient struct {
	calls     []string
	deleteErr error
	putErr    error
	put       []index.Definition
}

func (m *mockIndexClient) DeleteIndex(_ context.Context, name string) error {
	m.calls = append(m.calls, "delete:"+name)
	return m.deleteErr
}

func (m *mockIndexClient) PutIndex(_ context.Context, def index.Definition) error {
	m.calls = append(m.calls, "put:"+def.Name)
	m.put = append(m.put, def)
	return m.putErr
}

func siteDefinition() index.Definition {
	return index.Definition{
		Name:   "site",
		Fields: []index.Field{{Name: "slug", Type: index.String, Key: true}},
	}
}

func observedCtx() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logpkg.ContextWithLogger(context.Background(), zap.New(core)), logs
}

func TestApply_RecreateDeletesThenPuts(t *testing.T) {
	client := &mockIndexClient{}
	svc := New(client, StrategyRecreate)

	if err := svc.Apply(context.Background(), siteDefinition()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.calls) != 2 || client.calls[0] != "delete:site" || client.calls[1] != "put:site" {
		t.Errorf("calls = %v, want [delete:site put:site]", client.calls)
	}
}

func TestApply_DefaultStrategyIsRecreate(t *testing.T) {
	if got := New(&mockIndexClient{}, "").Strategy(); got != StrategyRecreate {
		t.Errorf("Strategy() = %q, want recreate", got)
	}
}

func TestApply_UpsertSinglePut(t *testing.T) {
	client := &mockIndexClient{}
	svc := New(client, StrategyUpsert)

	if err := svc.Apply(context.Background(), siteDefinition()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.calls) != 1 || client.calls[0] != "put:site" {
		t.Errorf("calls = %v, want [put:site]", client.calls)
	}
}

func TestApply_DeleteNotFoundIsWarning(t *testing.T) {
	client := &mockIndexClient{deleteErr: &domain.APIError{StatusCode: 404, Code: "ResourceNotFound"}}
	ctx, logs := observedCtx()

	if err := New(client, StrategyRecreate).Apply(ctx, siteDefinition()); err != nil {
		t.Fatalf("missing index must not fail the run: %v", err)
	}
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 1 {
		t.Errorf("expected one warning, got %d", n)
	}
	if len(client.put) != 1 {
		t.Error("put must still run after failed delete")
	}
}

func TestApply_DeleteOtherFailureIsWarning(t *testing.T) {
	client := &mockIndexClient{deleteErr: errors.New("connection reset")}
	ctx, logs := observedCtx()

	if err := New(client, StrategyRecreate).Apply(ctx, siteDefinition()); err != nil {
		t.Fatalf("delete failure must not fail the run: %v", err)
	}
	if logs.FilterMessage("Failed to delete index, continuing").Len() != 1 {
		t.Error("expected delete warning")
	}
}

func TestApply_PutFailureIsFatal(t *testing.T) {
	client := &mockIndexClient{putErr: &domain.APIError{StatusCode: 400, Code: "InvalidRequestParameter"}}

	err := New(client, StrategyUpsert).Apply(context.Background(), siteDefinition())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrServiceError) {
		t.Errorf("expected ErrServiceError in chain, got %v", err)
	}
	if len(client.put) != 1 {
		t.Errorf("put called %d times, want exactly 1", len(client.put))
	}
}

func TestApply_UnknownStrategy(t *testing.T) {
	client := &mockIndexClient{}
	err := New(client, "merge").Apply(context.Background(), siteDefinition())
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if len(client.calls) != 0 {
		t.Errorf("no calls expected, got %v", client.calls)
	}
}
