package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"crosstalk/internal/faults"
)

// fetchFunc transfers url into w, reporting progress through the callback
// and honouring cooperative cancellation through checkpoint. Returned
// checkpoint errors must propagate unchanged.
type fetchFunc func(ctx context.Context, url string, w io.Writer, progress func(done, total int64), checkpoint func() error) error

const downloadChunkBytes = 256 * 1024

// download runs the acquisition state machine for one catalog entry:
// idle -> downloading -> complete | error, with cancellation checkpoints
// before the transfer, after every chunk, and before finalizing.
func (m *Manager) download(ctx context.Context, task *Task, family, model string) (string, error) {
	entry, err := Lookup(family, model)
	if err != nil {
		task.set(StateError, 0, err.Error())
		return "", err
	}

	familyDir, err := FamilyDir(m.baseDir, entry.Family)
	if err != nil {
		task.set(StateError, 0, err.Error())
		return "", err
	}

	dest := entry.LocalPath(m.baseDir)
	if info, statErr := os.Stat(dest); statErr == nil && info.Size() > 0 {
		task.set(StateComplete, 100, fmt.Sprintf("%s already installed", entry.ID()))
		return dest, nil
	}

	// One download per family dir at a time, across processes.
	lock := flock.New(filepath.Join(familyDir, ".download.lock"))
	if err := lock.Lock(); err != nil {
		task.set(StateError, 0, err.Error())
		return "", fmt.Errorf("acquire download lock: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	task.set(StateDownloading, 0, fmt.Sprintf("downloading %s", entry.ID()))
	if err := task.checkpoint(); err != nil {
		return "", err
	}

	partial := dest + ".partial"
	out, err := os.Create(partial)
	if err != nil {
		task.set(StateError, 0, err.Error())
		return "", fmt.Errorf("create partial file: %w", err)
	}

	fetchErr := m.fetch(ctx, entry.URL, out, func(done, total int64) {
		percent := 0.0
		if total > 0 {
			percent = float64(done) / float64(total) * 100
		}
		task.set(StateDownloading, percent, fmt.Sprintf("downloading %s", entry.ID()))
	}, task.checkpoint)
	closeErr := out.Close()

	if fetchErr != nil {
		_ = os.Remove(partial)
		if !isCancelled(fetchErr) {
			task.set(StateError, 0, fetchErr.Error())
		}
		return "", fetchErr
	}
	if closeErr != nil {
		_ = os.Remove(partial)
		task.set(StateError, 0, closeErr.Error())
		return "", fmt.Errorf("finalize download: %w", closeErr)
	}

	if err := task.checkpoint(); err != nil {
		_ = os.Remove(partial)
		return "", err
	}

	if err := os.Rename(partial, dest); err != nil {
		_ = os.Remove(partial)
		task.set(StateError, 0, err.Error())
		return "", fmt.Errorf("install weights: %w", err)
	}

	task.set(StateComplete, 100, fmt.Sprintf("%s ready", entry.ID()))
	return dest, nil
}

func isCancelled(err error) bool {
	return errors.Is(err, faults.ErrCancelled)
}

func fetchHTTP(ctx context.Context, url string, w io.Writer, progress func(done, total int64), checkpoint func() error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch weights: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return faults.Wrap(faults.ErrAuthRequired, "models", "fetch", url, nil)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("fetch weights: unexpected status %s", resp.Status)
	}

	total := resp.ContentLength
	var done int64
	buf := make([]byte, downloadChunkBytes)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("write weights: %w", writeErr)
			}
			done += int64(n)
			progress(done, total)
			if err := checkpoint(); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read weights: %w", readErr)
		}
	}
}
