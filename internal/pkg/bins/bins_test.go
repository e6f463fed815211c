//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

package bins

import (
	"os"
	"strings"
	"testing"
)

func TestGetFromInputDescr(t *testing.T) {
	thresholds, err := GetFromInputDescr("2, 0.5,0.1")
	if err != nil {
		t.Fatalf("GetFromInputDescr failed: %s", err)
	}
	want := []float64{0.1, 0.5, 2}
	if len(thresholds) != len(want) {
		t.Fatalf("got %d thresholds, want %d", len(thresholds), len(want))
	}
	for i := range want {
		if thresholds[i] != want[i] {
			t.Errorf("threshold %d = %f, want %f", i, thresholds[i], want[i])
		}
	}

	for _, descr := range []string{"", "fast", "-1"} {
		if _, err := GetFromInputDescr(descr); err == nil {
			t.Errorf("GetFromInputDescr(%q) accepted invalid input", descr)
		}
	}
}

func TestCreate(t *testing.T) {
	b := Create([]float64{0.1, 0.5})
	if len(b) != 3 {
		t.Fatalf("Create returned %d bins, want 3", len(b))
	}
	if b[0].Min != 0 || b[0].Max != 0.1 {
		t.Errorf("bin 0 = %+v", b[0])
	}
	if b[1].Min != 0.1 || b[1].Max != 0.5 {
		t.Errorf("bin 1 = %+v", b[1])
	}
	if b[2].Min != 0.5 || b[2].Max >= 0 {
		t.Errorf("bin 2 = %+v", b[2])
	}
}

func TestGetFromDurations(t *testing.T) {
	thresholds := []float64{0.1, 0.5}
	durations := []float64{0.05, 0.09, 0.1, 0.3, 0.6, 2.5}
	b := GetFromDurations(durations, thresholds)
	// 0.1 sits exactly on a threshold and belongs to the bin above it.
	if b[0].Size != 2 {
		t.Errorf("bin [0, 0.1) holds %d, want 2", b[0].Size)
	}
	if b[1].Size != 2 {
		t.Errorf("bin [0.1, 0.5) holds %d, want 2", b[1].Size)
	}
	if b[2].Size != 2 {
		t.Errorf("bin [0.5, inf) holds %d, want 2", b[2].Size)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	b := GetFromDurations([]float64{0.05, 0.2}, []float64{0.1})
	path, err := Save(dir, 2, 1, b)
	if err != nil {
		t.Fatalf("Save failed: %s", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unable to read %s: %s", path, err)
	}
	text := string(content)
	if !strings.Contains(text, "[0.000000, 0.100000) s: 1") {
		t.Errorf("closed bin missing from:\n%s", text)
	}
	if !strings.Contains(text, ">= 0.100000 s: 1") {
		t.Errorf("open bin missing from:\n%s", text)
	}
}
