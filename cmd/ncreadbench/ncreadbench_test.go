//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

package main

import "testing"

func TestParseArgs(t *testing.T) {
	args, err := parseArgs([]string{"2", "4", "2", "1", "lon", "lat", "a.nc", "b.nc"})
	if err != nil {
		t.Fatalf("parseArgs failed: %s", err)
	}
	if args.halo != 2 || args.nprocX != 4 || args.nprocY != 2 {
		t.Errorf("layout = halo=%d grid=%dx%d", args.halo, args.nprocX, args.nprocY)
	}
	if !args.independent {
		t.Error("independent access flag lost")
	}
	if args.lonName != "lon" || args.latName != "lat" {
		t.Errorf("axis names = %s/%s", args.lonName, args.latName)
	}
	if len(args.files) != 2 || args.files[0] != "a.nc" {
		t.Errorf("files = %v", args.files)
	}
}

func TestParseArgsRejectsBadInput(t *testing.T) {
	for _, tt := range [][]string{
		{"2", "4", "2", "1", "lon", "lat"},
		{"two", "4", "2", "1", "lon", "lat", "a.nc"},
		{"2", "x", "2", "1", "lon", "lat", "a.nc"},
		{"2", "4", "y", "1", "lon", "lat", "a.nc"},
		{"2", "4", "2", "maybe", "lon", "lat", "a.nc"},
	} {
		if _, err := parseArgs(tt); err == nil {
			t.Errorf("parseArgs(%v) accepted invalid input", tt)
		}
	}
}

func TestEffectiveHalo(t *testing.T) {
	tests := []struct {
		nprocX, nprocY, halo int
		want                 int
		warns                bool
	}{
		{4, 2, 2, 2, false},
		{2, 1, 3, 3, false},
		{1, 1, 0, 0, false},
		{1, 1, 2, 0, true},
		{1, 3, 2, 0, true},
	}
	for _, tt := range tests {
		got, warning := effectiveHalo(tt.nprocX, tt.nprocY, tt.halo)
		if got != tt.want {
			t.Errorf("effectiveHalo(%d, %d, %d) = %d, want %d", tt.nprocX, tt.nprocY, tt.halo, got, tt.want)
		}
		if (warning != "") != tt.warns {
			t.Errorf("effectiveHalo(%d, %d, %d) warning = %q", tt.nprocX, tt.nprocY, tt.halo, warning)
		}
	}

	if _, warning := effectiveHalo(1, 1, 2); warning != "Warning: 1x1 domain decomposition detected, forcing halo=0" {
		t.Errorf("1x1 warning = %q", warning)
	}
}

func TestYesNo(t *testing.T) {
	if yesNo(true) != "yes" || yesNo(false) != "no" {
		t.Error("yesNo is broken")
	}
}
