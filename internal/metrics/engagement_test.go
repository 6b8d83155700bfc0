package metrics

import (
	"math"
	"testing"
)

func TestEngagementRateZeroViews(t *testing.T) {
	if r := EngagementRate(0, 50, 10, 5); r != 0 {
		t.Errorf("expected 0 for zero views, got %f", r)
	}
}

func TestEngagementRateWeighted(t *testing.T) {
	// 50 likes + 10 comments*2 + 5 shares*3 = 85 over 1000 views
	if r := EngagementRate(1000, 50, 10, 5); math.Abs(r-8.5) > 1e-9 {
		t.Errorf("expected 8.5, got %f", r)
	}
}

func TestEngagementRateCapped(t *testing.T) {
	if r := EngagementRate(10, 1000, 1000, 1000); r != 100 {
		t.Errorf("expected cap at 100, got %f", r)
	}
}
