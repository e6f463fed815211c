//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

package ncio

import "testing"

func TestAccessModeString(t *testing.T) {
	if Independent.String() != "independent" {
		t.Errorf("Independent.String() = %q", Independent.String())
	}
	if Collective.String() != "collective" {
		t.Errorf("Collective.String() = %q", Collective.String())
	}
}

func TestCopyWindow2D(t *testing.T) {
	// 4x5 float32 field; select rows 1-2 and columns 2-4.
	field := [][]float32{
		{0, 1, 2, 3, 4},
		{10, 11, 12, 13, 14},
		{20, 21, 22, 23, 24},
		{30, 31, 32, 33, 34},
	}
	// The outermost dimension is trimmed at the I/O layer, so the window
	// starts at row 0 of the trimmed value.
	trimmed := field[1:3]
	dst := make([]float64, 6)
	n, err := copyWindow(dst, 0, interface{}(trimmed), []int{0, 2}, []int{2, 3}, 0)
	if err != nil {
		t.Fatalf("copyWindow failed: %s", err)
	}
	if n != 6 {
		t.Fatalf("copied %d elements, want 6", n)
	}
	want := []float64{12, 13, 14, 22, 23, 24}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestCopyWindow3D(t *testing.T) {
	// 2x3x4 int32 cube; full first axis, middle row, columns 1-2.
	cube := [][][]int32{
		{{0, 1, 2, 3}, {4, 5, 6, 7}, {8, 9, 10, 11}},
		{{12, 13, 14, 15}, {16, 17, 18, 19}, {20, 21, 22, 23}},
	}
	dst := make([]float64, 4)
	n, err := copyWindow(dst, 0, interface{}(cube), []int{0, 1, 1}, []int{2, 1, 2}, 0)
	if err != nil {
		t.Fatalf("copyWindow failed: %s", err)
	}
	if n != 4 {
		t.Fatalf("copied %d elements, want 4", n)
	}
	want := []float64{5, 6, 17, 18}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestCopyWindow1D(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	dst := make([]float64, 3)
	n, err := copyWindow(dst, 0, interface{}(vals[1:4]), []int{0}, []int{3}, 0)
	if err != nil {
		t.Fatalf("copyWindow failed: %s", err)
	}
	if n != 3 || dst[0] != 2 || dst[2] != 4 {
		t.Errorf("copied %d elements %v, want 3 [2 3 4]", n, dst)
	}
}

func TestCopyWindowOutOfRange(t *testing.T) {
	field := [][]float32{{1, 2}, {3, 4}}
	dst := make([]float64, 8)
	if _, err := copyWindow(dst, 0, interface{}(field), []int{0, 0}, []int{2, 3}, 0); err == nil {
		t.Error("expected an error for a window wider than the innermost dimension")
	}
	if _, err := copyWindow(dst, 0, interface{}(field), []int{0, 0}, []int{3, 2}, 0); err == nil {
		t.Error("expected an error for a window taller than the outermost dimension")
	}
}

func TestCopyWindowUnsupportedType(t *testing.T) {
	vals := []string{"a", "b"}
	dst := make([]float64, 2)
	if _, err := copyWindow(dst, 0, interface{}(vals), []int{0}, []int{2}, 0); err == nil {
		t.Error("expected an error for an unsupported element type")
	}
}

func TestWidenScalar(t *testing.T) {
	for _, tt := range []struct {
		in   interface{}
		want float64
	}{
		{float64(2.5), 2.5},
		{float32(1.5), 1.5},
		{int16(-3), -3},
		{int32(7), 7},
		{int64(9), 9},
	} {
		got, err := widenScalar(tt.in)
		if err != nil {
			t.Errorf("widenScalar(%T) failed: %s", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("widenScalar(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := widenScalar("no"); err == nil {
		t.Error("expected an error for an unsupported scalar type")
	}
}
