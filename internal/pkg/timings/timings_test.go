//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

package timings

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/slcs-jsc/netcdf-bench/internal/pkg/group"
)

func TestGather(t *testing.T) {
	const n = 3
	members := group.NewLocal(n)
	results := make([][][]float64, n)

	var wg sync.WaitGroup
	for r := 0; r < n; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			local := []float64{float64(r) + 0.1, float64(r) + 0.2}
			results[r] = Gather(members[r], local, 0)
		}(r)
	}
	wg.Wait()

	for r := 1; r < n; r++ {
		if results[r] != nil {
			t.Errorf("rank %d got a table back, want nil", r)
		}
	}
	all := results[0]
	if len(all) != n {
		t.Fatalf("coordinator gathered %d rows, want %d", len(all), n)
	}
	for r := 0; r < n; r++ {
		if len(all[r]) != 2 || all[r][0] != float64(r)+0.1 || all[r][1] != float64(r)+0.2 {
			t.Errorf("row %d = %v", r, all[r])
		}
	}
}

func TestWriteReportParseLogRoundTrip(t *testing.T) {
	all := [][]float64{
		{0.101234, 0.202345},
		{0.111111, 0.222222},
	}
	var buf bytes.Buffer
	buf.WriteString("Halo size: 2\n")
	buf.WriteString("Process grid: 2x1\n")
	buf.WriteString("Use independent access: yes\n")
	buf.WriteString("Number of files: 2\n")
	buf.WriteString("some unrelated status line\n")
	if err := WriteReport(&buf, 12.5, all); err != nil {
		t.Fatalf("WriteReport failed: %s", err)
	}

	data, err := ParseLog(&buf)
	if err != nil {
		t.Fatalf("ParseLog failed: %s", err)
	}
	if data.Halo != 2 || data.NprocX != 2 || data.NprocY != 1 {
		t.Errorf("configuration = halo=%d grid=%dx%d", data.Halo, data.NprocX, data.NprocY)
	}
	if !data.Independent {
		t.Error("independent access flag lost")
	}
	if data.NumFiles != 2 {
		t.Errorf("file count = %d, want 2", data.NumFiles)
	}
	if data.FileMB != 12.5 {
		t.Errorf("file size = %f, want 12.5", data.FileMB)
	}
	if got := data.Ranks(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("ranks = %v", got)
	}
	for r, times := range all {
		got := data.Times[r]
		if len(got) != len(times) {
			t.Fatalf("rank %d: %d durations, want %d", r, len(got), len(times))
		}
		for i := range times {
			if got[i] != times[i] {
				t.Errorf("rank %d file %d: %f, want %f", r, i, got[i], times[i])
			}
		}
	}
}

func TestParseLogRejectsGarbage(t *testing.T) {
	for _, log := range []string{
		"Halo size: many\n",
		"rank=0 ; times=fast,slow\n",
		"rank=zero ; times=0.1\n",
	} {
		if _, err := ParseLog(strings.NewReader(log)); err == nil {
			t.Errorf("ParseLog accepted %q", log)
		}
	}
}

func TestMaxPerFile(t *testing.T) {
	all := [][]float64{
		{0.5, 0.1, 0.3},
		{0.2, 0.4, 0.3},
	}
	max := MaxPerFile(all)
	want := []float64{0.5, 0.4, 0.3}
	if len(max) != len(want) {
		t.Fatalf("MaxPerFile returned %d entries, want %d", len(max), len(want))
	}
	for i := range want {
		if max[i] != want[i] {
			t.Errorf("max[%d] = %f, want %f", i, max[i], want[i])
		}
	}
	if MaxPerFile(nil) != nil {
		t.Error("MaxPerFile(nil) should be nil")
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	meta := RunMeta{
		NprocX: 2,
		NprocY: 1,
		Halo:   1,
		Mode:   "independent",
		Files:  []string{"/data/a.nc", "/data/b.nc"},
		FileMB: 3.2,
	}
	all := [][]float64{{0.1, 0.2}, {0.15, 0.25}}
	path, err := Save(dir, meta, all)
	if err != nil {
		t.Fatalf("Save failed: %s", err)
	}
	if filepath.Base(path) != "timings_2x1_halo1.md" {
		t.Errorf("report name = %s", filepath.Base(path))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unable to read report: %s", err)
	}
	text := string(content)
	for _, want := range []string{
		"Process grid: 2x1",
		"Halo size: 1",
		"Access mode: independent",
		"rank=0 ; times=0.100000,0.200000",
		"rank=1 ; times=0.150000,0.250000",
		"a.nc",
		"b.nc",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report misses %q", want)
		}
	}
}
