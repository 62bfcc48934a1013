package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/coursekit/coursekit-backend/internal/aicache"
	"github.com/coursekit/coursekit-backend/internal/apperr"
	"github.com/coursekit/coursekit-backend/internal/logger"
)

type fakeOpenAI struct {
	mu       sync.Mutex
	calls    int
	response string
	err      error
}

func (f *fakeOpenAI) GenerateJSON(_ context.Context, _, _ string, _ int, _ float64) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.response), nil
}

func (f *fakeOpenAI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newAIGen(t *testing.T, provider *fakeOpenAI) AIGenService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger init failed: %v", err)
	}
	return NewAIGenService(log, provider, aicache.NewMemoryCache(16), time.Minute)
}

func TestGenerateBlockContent_ObjectMergesOntoDefaults(t *testing.T) {
	provider := &fakeOpenAI{response: `{"text":"generated copy"}`}
	svc := newAIGen(t, provider)

	content, err := svc.GenerateBlockContent(context.Background(), "text", "write intro", "")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if content["text"] != "generated copy" {
		t.Fatalf("object response not merged: %v", content)
	}
}

func TestGenerateBlockContent_ArrayBecomesPollOptions(t *testing.T) {
	provider := &fakeOpenAI{response: `["red","green","blue"]`}
	svc := newAIGen(t, provider)

	content, err := svc.GenerateBlockContent(context.Background(), "poll", "colors", "")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	opts, ok := content["options"].([]any)
	if !ok || len(opts) != 3 {
		t.Fatalf("array response should land in options: %v", content)
	}
	if _, ok := content["question"]; !ok {
		t.Fatalf("defaults should keep required siblings: %v", content)
	}
}

func TestGenerateBlockContent_ArrayBecomesListItems(t *testing.T) {
	provider := &fakeOpenAI{response: `["first","second"]`}
	svc := newAIGen(t, provider)

	content, err := svc.GenerateBlockContent(context.Background(), "list", "steps", "")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	items, ok := content["items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("array response should land in items: %v", content)
	}
	first, ok := items[0].(map[string]any)
	if !ok || first["text"] != "first" {
		t.Fatalf("bare strings should be wrapped as item objects: %v", items[0])
	}
}

func TestGenerateBlockContent_BareStringPerVariant(t *testing.T) {
	cases := []struct {
		blockType string
		wantField string
	}{
		{"code", "code"},
		{"reflection", "prompt"},
		{"wordCloud", "question"},
		{"text", "text"},
	}
	for _, tc := range cases {
		provider := &fakeOpenAI{response: `not json at all`}
		svc := newAIGen(t, provider)
		content, err := svc.GenerateBlockContent(context.Background(), tc.blockType, "p", "")
		if err != nil {
			t.Fatalf("%s: generate failed: %v", tc.blockType, err)
		}
		if content[tc.wantField] != "not json at all" {
			t.Fatalf("%s: bare string should land in %s, got %v", tc.blockType, tc.wantField, content)
		}
	}
}

func TestGenerateBlockContent_CacheHitSkipsProvider(t *testing.T) {
	provider := &fakeOpenAI{response: `{"text":"cached"}`}
	svc := newAIGen(t, provider)
	ctx := context.Background()

	if _, err := svc.GenerateBlockContent(ctx, "text", "same prompt", "ctx"); err != nil {
		t.Fatalf("first generate failed: %v", err)
	}
	if _, err := svc.GenerateBlockContent(ctx, "text", "same prompt", "ctx"); err != nil {
		t.Fatalf("second generate failed: %v", err)
	}
	if got := provider.callCount(); got != 1 {
		t.Fatalf("identical request should be served from cache, got %d provider calls", got)
	}

	// A different prompt misses the cache.
	if _, err := svc.GenerateBlockContent(ctx, "text", "other prompt", "ctx"); err != nil {
		t.Fatalf("third generate failed: %v", err)
	}
	if got := provider.callCount(); got != 2 {
		t.Fatalf("different prompt should reach the provider, got %d calls", got)
	}
}

func TestGenerateBlockContent_EmptyPromptRejected(t *testing.T) {
	provider := &fakeOpenAI{response: `{}`}
	svc := newAIGen(t, provider)

	_, err := svc.GenerateBlockContent(context.Background(), "text", "   ", "")
	if err == nil || !apperr.IsValidation(err) {
		t.Fatalf("blank prompt should be a validation error, got %v", err)
	}
	if provider.callCount() != 0 {
		t.Fatalf("validation failure must not reach the provider")
	}
}

func TestGenerateBlockContent_ProviderErrorPassesThrough(t *testing.T) {
	provider := &fakeOpenAI{err: apperr.Transient("openai", context.DeadlineExceeded)}
	svc := newAIGen(t, provider)

	_, err := svc.GenerateBlockContent(context.Background(), "text", "p", "")
	if err == nil || !apperr.IsTransient(err) {
		t.Fatalf("provider error should pass through as transient, got %v", err)
	}
}
