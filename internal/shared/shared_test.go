package shared

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/charmbracelet/log"
)

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Fatal("generated IDs should not be empty")
	}

	if a == b {
		t.Errorf("generated IDs should be unique, got %s twice", a)
	}

	if len(a) != 36 {
		t.Errorf("expected UUID string length 36, got %d", len(a))
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello")
	if buf.Len() == 0 {
		t.Error("expected log output to be written")
	}

	child := WithLogger(logger, "component", "test")
	if child == nil {
		t.Fatal("expected child logger")
	}

	SetLogLevel(logger, log.ErrorLevel)
	buf.Reset()
	logger.Debug("suppressed")
	if buf.Len() != 0 {
		t.Error("debug output should be suppressed at error level")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tc := []struct {
		name   string
		err    error
		target error
	}{
		{name: "song not found", err: ErrSongNotFound, target: ErrNotFound},
		{name: "user not found", err: ErrUserNotFound, target: ErrNotFound},
		{name: "playlist not found", err: ErrPlaylistNotFound, target: ErrNotFound},
		{name: "wrapped transient", err: fmt.Errorf("query: %w", ErrTransient), target: ErrTransient},
		{name: "wrapped permission", err: fmt.Errorf("add song: %w", ErrPermissionDenied), target: ErrPermissionDenied},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("expected %v to match %v", tt.err, tt.target)
			}
		})
	}

	if errors.Is(ErrSongNotFound, ErrPermissionDenied) {
		t.Error("not-found errors must not match permission errors")
	}
}

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{60, "1:00"},
		{225, "3:45"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{-5, "0:00"},
	}

	for _, tt := range tc {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]int{"n": 1}

	compact, err := MarshalJSON(v, false)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(compact) != `{"n":1}` {
		t.Errorf("unexpected compact output: %s", compact)
	}

	indented, err := MarshalJSON(v, true)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if !bytes.Contains(indented, []byte("\n")) {
		t.Error("expected indented output to span multiple lines")
	}
}
