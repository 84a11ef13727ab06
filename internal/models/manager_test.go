package models

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"crosstalk/internal/faults"
)

// chunkedFetcher simulates a transfer in fixed steps, invoking the progress
// callback and cancellation checkpoint after each one, like the real HTTP
// loop does.
func chunkedFetcher(chunks int, between func(step int)) fetchFunc {
	return func(ctx context.Context, url string, w io.Writer, progress func(done, total int64), checkpoint func() error) error {
		total := int64(chunks)
		for i := 1; i <= chunks; i++ {
			if _, err := w.Write([]byte{0xAB}); err != nil {
				return err
			}
			progress(int64(i), total)
			if between != nil {
				between(i)
			}
			if err := checkpoint(); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestLookup(t *testing.T) {
	entry, err := Lookup(FamilyWhisperCpp, "base")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if entry.ID() != "whispercpp/base" || entry.FileName != "ggml-base.bin" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if _, err := Lookup(FamilyWhisperCpp, "enormous"); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected validation error for unknown model, got %v", err)
	}
	if _, err := Lookup(FamilyPyannote, "speaker-diarization-3.1"); !errors.Is(err, faults.ErrAuthRequired) {
		t.Fatalf("expected auth required for gated family, got %v", err)
	}
	if _, err := Lookup("mystery", "base"); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected validation error for unknown family, got %v", err)
	}
}

func TestDownloadCompletes(t *testing.T) {
	m := NewManager(t.TempDir())
	m.WithFetcher(chunkedFetcher(4, nil))

	path, task, err := m.Download(context.Background(), FamilyWhisperCpp, "base")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	status := task.Poll()
	if status.State != StateComplete || status.Percent != 100 {
		t.Fatalf("unexpected final status: %+v", status)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read installed weights: %v", err)
	}
	if len(data) != 4 {
		t.Fatalf("expected 4 bytes installed, got %d", len(data))
	}
	if _, err := os.Stat(path + ".partial"); !os.IsNotExist(err) {
		t.Fatalf("partial file must be gone after install")
	}
	if installed := InstalledWhisperModels(m.BaseDir()); len(installed) != 1 || installed[0] != "base" {
		t.Fatalf("unexpected installed inventory: %v", installed)
	}
}

func TestDownloadCancellationAtCheckpoint(t *testing.T) {
	m := NewManager(t.TempDir())

	var task *Task
	ready := make(chan struct{})
	m.WithFetcher(chunkedFetcher(10, func(step int) {
		<-ready
		if step == 2 {
			task.Cancel()
		}
	}))

	task = m.Start(context.Background(), FamilyWhisperCpp, "tiny")
	close(ready)
	err := task.Wait()
	if !errors.Is(err, faults.ErrCancelled) {
		t.Fatalf("expected cancellation failure, got %v", err)
	}

	status := task.Poll()
	if status.State == StateError {
		t.Fatalf("cancellation must not enter the error state: %+v", status)
	}
	if status.State == StateDownloading {
		t.Fatalf("cancelled task must leave the downloading state: %+v", status)
	}

	// The flag was cleared on observation: a fresh run is unaffected.
	m.WithFetcher(chunkedFetcher(3, nil))
	if _, _, err := m.Download(context.Background(), FamilyWhisperCpp, "tiny"); err != nil {
		t.Fatalf("retry after cancellation: %v", err)
	}

	// No partial leftovers from the cancelled attempt.
	matches, _ := filepath.Glob(filepath.Join(m.BaseDir(), FamilyWhisperCpp, "*.partial"))
	if len(matches) != 0 {
		t.Fatalf("partial files left behind: %v", matches)
	}
}

func TestManagerSlotIsLastWriterWins(t *testing.T) {
	m := NewManager(t.TempDir())
	m.WithFetcher(chunkedFetcher(1, nil))

	if got := m.Current(); got.State != StateIdle {
		t.Fatalf("fresh manager should report idle, got %+v", got)
	}

	first := m.Start(context.Background(), FamilyWhisperCpp, "tiny")
	if err := first.Wait(); err != nil {
		t.Fatalf("first download: %v", err)
	}
	second := m.Start(context.Background(), FamilyWhisperCpp, "base")
	if err := second.Wait(); err != nil {
		t.Fatalf("second download: %v", err)
	}

	if got := m.Current(); got.ModelID != "whispercpp/base" {
		t.Fatalf("manager slot must follow the latest request, got %+v", got)
	}
	// The superseded handle still reports its own final state.
	if got := first.Poll(); got.ModelID != "whispercpp/tiny" || got.State != StateComplete {
		t.Fatalf("old handle corrupted: %+v", got)
	}
}

func TestDownloadAlreadyInstalled(t *testing.T) {
	base := t.TempDir()
	dir, err := FamilyDir(base, FamilyWhisperCpp)
	if err != nil {
		t.Fatalf("family dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ggml-base.bin"), []byte("weights"), 0o644); err != nil {
		t.Fatalf("seed weights: %v", err)
	}

	m := NewManager(base)
	m.WithFetcher(func(ctx context.Context, url string, w io.Writer, progress func(done, total int64), checkpoint func() error) error {
		t.Fatalf("fetch must not run for installed weights")
		return nil
	})

	path, task, err := m.Download(context.Background(), FamilyWhisperCpp, "base")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if filepath.Base(path) != "ggml-base.bin" {
		t.Fatalf("unexpected path %q", path)
	}
	if status := task.Poll(); status.State != StateComplete {
		t.Fatalf("expected complete, got %+v", status)
	}
}

func TestDownloadFailureEntersErrorState(t *testing.T) {
	m := NewManager(t.TempDir())
	m.WithFetcher(func(ctx context.Context, url string, w io.Writer, progress func(done, total int64), checkpoint func() error) error {
		return errors.New("connection reset")
	})

	_, task, err := m.Download(context.Background(), FamilyWhisperCpp, "base")
	if err == nil {
		t.Fatalf("expected failure")
	}
	if status := task.Poll(); status.State != StateError {
		t.Fatalf("expected error state, got %+v", status)
	}
}
