package bitset

import "testing"

func TestVector_SetAndTest(t *testing.T) {
	// 1. Fresh vector is all zero
	v := New(100)
	if v.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", v.Len())
	}
	if v.OnesCount() != 0 {
		t.Errorf("fresh vector has %d one-bits, want 0", v.OnesCount())
	}

	// 2. Set bits across word boundaries
	for _, pos := range []int{0, 1, 63, 64, 65, 99} {
		v.Set(pos)
	}

	for _, pos := range []int{0, 1, 63, 64, 65, 99} {
		if !v.Test(pos) {
			t.Errorf("bit %d not set", pos)
		}
	}
	if v.Test(2) || v.Test(62) || v.Test(98) {
		t.Error("unset bit reported as set")
	}
	if v.OnesCount() != 6 {
		t.Errorf("OnesCount() = %d, want 6", v.OnesCount())
	}

	// 3. Setting an already-set bit is idempotent
	v.Set(0)
	if v.OnesCount() != 6 {
		t.Errorf("re-setting a bit changed the count to %d", v.OnesCount())
	}
}

func TestVector_SetOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Set beyond vector length should panic")
		}
	}()
	New(8).Set(8)
}

func TestVector_Prefix(t *testing.T) {
	v := New(130)
	set := []int{0, 5, 63, 64, 100, 129}
	for _, pos := range set {
		v.Set(pos)
	}

	testCases := []struct {
		name   string
		segLen int
	}{
		{"zero length", 0},
		{"within first word", 5},
		{"word boundary", 64},
		{"mid second word", 101},
		{"full length", 130},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seg, err := v.Prefix(tc.segLen)
			if err != nil {
				t.Fatalf("Prefix(%d) returned error: %v", tc.segLen, err)
			}
			if seg.Len() != tc.segLen {
				t.Fatalf("segment length = %d, want %d", seg.Len(), tc.segLen)
			}
			// Segment bits must be positionally identical to the source prefix.
			for p := 0; p < tc.segLen; p++ {
				if seg.Test(p) != v.Test(p) {
					t.Errorf("bit %d differs between segment and source", p)
				}
			}
		})
	}
}

func TestVector_PrefixTooLong(t *testing.T) {
	v := New(20)
	if _, err := v.Prefix(21); err == nil {
		t.Error("Prefix longer than the vector should fail")
	}
	if _, err := v.Prefix(-1); err == nil {
		t.Error("negative segment length should fail")
	}
}

func TestVector_SubsetOf(t *testing.T) {
	target := New(128)
	for _, pos := range []int{3, 40, 64, 90} {
		target.Set(pos)
	}

	sub := New(128)
	sub.Set(3)
	sub.Set(90)
	if !sub.SubsetOf(target) {
		t.Error("expected subset relation to hold")
	}

	// Empty vector is a subset of everything of the same length.
	if !New(128).SubsetOf(target) {
		t.Error("empty vector should be a subset")
	}

	// One stray bit outside the target breaks the relation.
	sub.Set(91)
	if sub.SubsetOf(target) {
		t.Error("vector with a 1-bit at a 0 position of target is not a subset")
	}

	// Mismatched lengths never satisfy the relation.
	if New(64).SubsetOf(target) {
		t.Error("subset test across different lengths must be false")
	}
}

func TestVector_CloneIsIndependent(t *testing.T) {
	v := New(32)
	v.Set(7)

	c := v.Clone()
	if !c.Equal(v) {
		t.Fatal("clone differs from source")
	}

	c.Set(8)
	if v.Test(8) {
		t.Error("mutating the clone leaked into the source")
	}
}

func TestSegmentLength(t *testing.T) {
	testCases := []struct {
		totalBits int
		percent   int
		want      int
	}{
		{1000, 100, 1000},
		{1000, 50, 500},
		{1000, 1, 10},
		{20, 100, 20},
		{30, 25, 7},  // floor(7.5)
		{999, 10, 99}, // floor(99.9)
		{1000, 0, 0},
	}

	for _, tc := range testCases {
		if got := SegmentLength(tc.totalBits, tc.percent); got != tc.want {
			t.Errorf("SegmentLength(%d, %d) = %d, want %d", tc.totalBits, tc.percent, got, tc.want)
		}
	}
}
