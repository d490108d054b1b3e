package hotkeys

import (
	"slices"
	"testing"
)

func TestLockCombinations(t *testing.T) {
	got := lockCombinations([]uint16{2, 16, 128})
	slices.Sort(got)
	want := []uint16{2, 16, 18, 128, 130, 144, 146}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLockCombinations_Empty(t *testing.T) {
	if got := lockCombinations(nil); len(got) != 0 {
		t.Fatalf("expected no combinations, got %v", got)
	}
}
