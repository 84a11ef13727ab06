package deps

import (
	"os"
	"path/filepath"
	"testing"

	"crosstalk/internal/config"
)

func TestCheckBinariesMissing(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "Phantom", Command: "definitely-not-a-real-binary-xyz"},
	})
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatalf("expected unavailable, got %+v", statuses[0])
	}
	if statuses[0].Detail == "" {
		t.Fatalf("expected detail for missing binary")
	}
}

func TestCheckBinariesUnconfigured(t *testing.T) {
	statuses := CheckBinaries([]Requirement{{Name: "Empty", Command: "  "}})
	if statuses[0].Available || statuses[0].Detail != "command not configured" {
		t.Fatalf("unexpected status: %+v", statuses[0])
	}
}

func TestCheckBinariesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	statuses := CheckBinaries([]Requirement{{Name: "FFmpeg", Command: path}})
	if !statuses[0].Available {
		t.Fatalf("executable path should be available: %+v", statuses[0])
	}

	missing := CheckBinaries([]Requirement{{Name: "FFmpeg", Command: filepath.Join(dir, "absent")}})
	if missing[0].Available {
		t.Fatalf("missing path should be unavailable: %+v", missing[0])
	}
}

func TestRequirementsHonoursOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.FFmpeg = "/opt/ffmpeg/bin/ffmpeg"

	reqs := Requirements(&cfg)
	if reqs[0].Command != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("override not honoured: %+v", reqs[0])
	}
	if reqs[1].Command != "ffprobe" {
		t.Fatalf("default command lost: %+v", reqs[1])
	}

	var optional int
	for _, req := range reqs {
		if req.Optional {
			optional++
		}
	}
	if optional != 4 {
		t.Fatalf("expected 4 optional requirements, got %d", optional)
	}
}
