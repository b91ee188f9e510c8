// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rotatewriter writes logs to size bounded files, keeping a limited number of them.
package rotatewriter

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Writer is an io.WriteCloser over a rotating set of files named <base>-<timestamp>.log.
type Writer struct {
	dir      string
	base     string
	maxSize  int64
	maxFiles int // 0 keeps every file
	now      func() time.Time

	mu      sync.Mutex
	current *os.File
	size    int64
}

// New opens the first file of the set in dir.
func New(dir, base string, maxSize int64, maxFiles int) (*Writer, error) {
	if maxSize <= 0 {
		return nil, errors.New("max file size must be positive")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create log dir")
	}
	w := &Writer{dir: dir, base: base, maxSize: maxSize, maxFiles: maxFiles, now: time.Now}
	if err := w.openNext(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil {
		return 0, io.ErrClosedPipe
	}
	if w.size > 0 && w.size+int64(len(p)) > w.maxSize {
		if err := w.openNext(); err != nil {
			return 0, err
		}
		if err := w.prune(); err != nil {
			return 0, err
		}
	}
	n, err := w.current.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil {
		return nil
	}
	err := w.current.Close()
	w.current = nil
	return err
}

func (w *Writer) openNext() error {
	if w.current != nil {
		if err := w.current.Close(); err != nil {
			return errors.Wrap(err, "close log file")
		}
		w.current = nil
	}

	path := filepath.Join(w.dir, w.base+"-"+w.now().Format("2006-01-02T15-04-05")+".log")
	if _, err := os.Stat(path); err == nil {
		path = filepath.Join(w.dir, w.base+"-"+w.now().Format("2006-01-02T15-04-05.000000")+".log")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	w.current = f
	w.size = 0
	return nil
}

// prune removes the oldest files beyond maxFiles. Names sort by creation time.
func (w *Writer) prune() error {
	if w.maxFiles <= 0 {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(w.dir, w.base+"-*.log"))
	if err != nil {
		return err
	}
	sort.Strings(files)
	for len(files) > w.maxFiles {
		if err := os.Remove(files[0]); err != nil {
			return errors.Wrap(err, "remove old log file")
		}
		files = files[1:]
	}
	return nil
}
