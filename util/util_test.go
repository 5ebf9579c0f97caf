// util/util_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glidernav/airwarn/log"
)

func TestErrorLogger(t *testing.T) {
	var e ErrorLogger
	if e.HaveErrors() {
		t.Errorf("fresh ErrorLogger has errors")
	}

	e.Push("east.txt")
	e.Push("line 12")
	e.ErrorString("bad coordinate %q", "50:11")
	if e.CurrentDepth() != 2 {
		t.Errorf("depth %d, expected 2", e.CurrentDepth())
	}
	e.Pop()
	e.Error(errors.New("unknown class"))
	e.Pop()
	e.ErrorString("no records")

	expected := []string{
		`east.txt / line 12: bad coordinate "50:11"`,
		"east.txt: unknown class",
		"no records",
	}
	if got := e.Errors(); len(got) != len(expected) {
		t.Fatalf("got %q", got)
	} else {
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("got %q, expected %q", got[i], expected[i])
			}
		}
	}

	var buf bytes.Buffer
	e.LogWarnings(log.NewWriter(&buf, "warn"))
	if out := buf.String(); strings.Count(out, "level=WARN") != 3 || !strings.Contains(out, "unknown class") {
		t.Errorf("unexpected log output %q", out)
	}

	var nilLogger *ErrorLogger
	if nilLogger.HaveErrors() || nilLogger.CurrentDepth() != 0 {
		t.Errorf("nil ErrorLogger should be empty")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	failure := errors.New("failed")
	err := WriteFileAtomic(path, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return failure
	})
	if !errors.Is(err, failure) {
		t.Errorf("got error %v", err)
	}
	if b, _ := os.ReadFile(path); string(b) != "old" {
		t.Errorf("failed write replaced file contents with %q", b)
	}

	if err := WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write([]byte("new"))
		return err
	}); err != nil {
		t.Fatal(err)
	}
	if b, _ := os.ReadFile(path); string(b) != "new" {
		t.Errorf("got %q", b)
	}

	if entries, _ := os.ReadDir(dir); len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}

	if mt, err := ModTime(filepath.Join(dir, "missing")); err != nil || !mt.IsZero() {
		t.Errorf("missing file: %v %v", mt, err)
	}
	if mt, err := ModTime(path); err != nil || mt.IsZero() {
		t.Errorf("existing file: %v %v", mt, err)
	}
}
