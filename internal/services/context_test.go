package services_test

import (
	"context"
	"testing"

	"reelmatch/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithOperation(ctx, "recommend")
	ctx = services.WithTitle(ctx, "Inception")
	ctx = services.WithRequestID(ctx, "req-123")

	if op, ok := services.OperationFromContext(ctx); !ok || op != "recommend" {
		t.Fatalf("unexpected operation: %v %v", op, ok)
	}
	if title, ok := services.TitleFromContext(ctx); !ok || title != "Inception" {
		t.Fatalf("unexpected title: %v %v", title, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithOperation(ctx, "")
	ctx = services.WithTitle(ctx, "")
	ctx = services.WithRequestID(ctx, "")
	if _, ok := services.OperationFromContext(ctx); ok {
		t.Fatal("expected no operation value")
	}
	if _, ok := services.TitleFromContext(ctx); ok {
		t.Fatal("expected no title value")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id value")
	}
}
