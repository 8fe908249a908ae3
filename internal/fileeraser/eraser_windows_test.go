//go:build windows

package fileeraser

import "testing"

func TestRandomOffsetsFiveMaskPlusOne(t *testing.T) {
	const maskLen = int64(1024)
	size := 5*maskLen + 1
	endOffset := size - maskLen

	points := randomOffsets(size, maskLen, endOffset)
	if len(points) != 3 {
		t.Fatalf("randomOffsets() returned %d points, want 3: %v", len(points), points)
	}
	if points[0] != 0 {
		t.Errorf("points[0] = %d, want 0", points[0])
	}
	if points[len(points)-1] != endOffset {
		t.Errorf("last point = %d, want %d", points[len(points)-1], endOffset)
	}
	if points[1] < maskLen || points[1] > endOffset-maskLen {
		t.Errorf("middle point %d out of bounds [%d, %d]", points[1], maskLen, endOffset-maskLen)
	}
}

func TestSortInt64s(t *testing.T) {
	s := []int64{5, 3, 1, 4, 2}
	sortInt64s(s)
	want := []int64{1, 2, 3, 4, 5}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("sortInt64s() = %v, want %v", s, want)
		}
	}
}

func TestUniformBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := uniform(10, 20)
		if v < 10 || v > 20 {
			t.Fatalf("uniform(10, 20) = %d, out of bounds", v)
		}
	}
	if got := uniform(10, 10); got != 10 {
		t.Fatalf("uniform(10, 10) = %d, want 10", got)
	}
}
