package api

import "testing"

func TestAverage_NilOnEmptyInput(t *testing.T) {
	if got := average(nil); got != nil {
		t.Fatalf("got %v", *got)
	}
}

func TestAverage_ComputesMean(t *testing.T) {
	got := average([]int{10, 20, 30})
	if got == nil || *got != 20 {
		t.Fatalf("got %v", got)
	}
}

func TestPercentile_NilOnEmptyInput(t *testing.T) {
	if got := percentile(nil, 0.95); got != nil {
		t.Fatalf("got %v", *got)
	}
}

func TestPercentile_P95OfTenValuesIsNinthSmallest(t *testing.T) {
	values := []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	got := percentile(values, 0.95)
	// idx = int(0.95 * 9) = 8 -> sorted[8] = 90
	if got == nil || *got != 90 {
		t.Fatalf("got %v", got)
	}
}

func TestPercentile_UnsortedInputIsSortedFirst(t *testing.T) {
	values := []int{50, 10, 30}
	got := percentile(values, 0)
	if got == nil || *got != 10 {
		t.Fatalf("expected the minimum at p0, got %v", got)
	}
}
