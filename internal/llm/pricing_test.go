package llm

import (
	"math"
	"testing"

	"github.com/abhisek/adaptutor/internal/store"
)

func TestUsageCost(t *testing.T) {
	usd, known := UsageCost(store.LLMUsage{Model: "gpt-4o-mini", InputTokens: 1_000_000, OutputTokens: 500_000})
	if !known {
		t.Fatal("gpt-4o-mini should be priced")
	}
	if math.Abs(usd-0.45) > 1e-9 {
		t.Fatalf("expected 0.45, got %f", usd)
	}

	if _, known := UsageCost(store.LLMUsage{Model: "mock"}); known {
		t.Fatal("mock should not be priced")
	}
}
