package logger

import (
	"testing"
)

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	cases := []struct {
		in      string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"", false},
		{"WARN", false},
		{"warning", false},
		{"error", false},
		{"verbose", true},
	}
	for _, c := range cases {
		err := SetLevelString(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("SetLevelString(%q) err=%v, wantErr=%v", c.in, err, c.wantErr)
		}
	}
}

func TestNamedLogger(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	l := Named("worker")
	if l == nil {
		t.Fatal("expected a named logger")
	}
	child := l.Named("claim")
	if child == nil {
		t.Fatal("expected a nested named logger")
	}
}
