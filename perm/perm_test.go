package perm

import "testing"

func TestApplyToGathersByPermutation(t *testing.T) {
	pi, err := New([]int{2, 0, 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := []string{"a", "b", "c"}
	ApplyTo(pi, s)
	want := []string{"c", "a", "b"}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("ApplyTo: got %v, want %v", s, want)
		}
	}
}

func TestInverseUndoesApply(t *testing.T) {
	pi, err := New([]int{2, 0, 3, 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := []int{10, 20, 30, 40}
	orig := append([]int(nil), s...)
	ApplyTo(pi, s)
	ApplyTo(pi.Inverse(), s)
	for i := range orig {
		if s[i] != orig[i] {
			t.Fatalf("round trip: got %v, want %v", s, orig)
		}
	}
}

func TestShiftGathersCyclically(t *testing.T) {
	pi := Shift(4, 1)
	s := []int{0, 1, 2, 3}
	ApplyTo(pi, s)
	want := []int{1, 2, 3, 0}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("Shift(4,1): got %v, want %v", s, want)
		}
	}
}

func TestNewRejectsNonPermutation(t *testing.T) {
	if _, err := New([]int{0, 0, 2}); err == nil {
		t.Fatal("expected error for repeated index")
	}
	if _, err := New([]int{0, 3, 2}); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}

func TestShufflesSampleIsAPermutation(t *testing.T) {
	pi, err := Shuffles{N: 8}.Sample(nil)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	seen := make([]bool, 8)
	for _, v := range pi.Slice() {
		if v < 0 || v >= 8 || seen[v] {
			t.Fatalf("Shuffles.Sample produced a non-permutation: %v", pi.Slice())
		}
		seen[v] = true
	}
}
