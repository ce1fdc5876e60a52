package infrastructure

import (
	"slices"
	"testing"
)

func TestFFmpegArgs(t *testing.T) {
	args := ffmpegArgs("https://cdn.example/stream", 1.5)

	// Reconnect flags are input options and must precede -i.
	iIdx := slices.Index(args, "-i")
	if iIdx == -1 {
		t.Fatal("missing -i")
	}
	for _, flag := range []string{"-reconnect", "-reconnect_streamed", "-reconnect_delay_max"} {
		idx := slices.Index(args, flag)
		if idx == -1 || idx > iIdx {
			t.Errorf("%s must appear before -i (at %d, -i at %d)", flag, idx, iIdx)
		}
	}
	if args[iIdx+1] != "https://cdn.example/stream" {
		t.Errorf("input = %q, want the stream URL", args[iIdx+1])
	}

	if idx := slices.Index(args, "-filter:a"); idx == -1 || args[idx+1] != "volume=1.50" {
		t.Errorf("volume filter = %v, want volume=1.50", args)
	}

	// Output geometry must match the encoder's.
	for flag, want := range map[string]string{
		"-f":  "s16le",
		"-ar": "48000",
		"-ac": "2",
	} {
		idx := slices.Index(args, flag)
		if idx == -1 || args[idx+1] != want {
			t.Errorf("%s = missing or wrong, want %s", flag, want)
		}
	}

	if args[len(args)-1] != "pipe:1" {
		t.Errorf("last arg = %q, want pipe:1", args[len(args)-1])
	}
}

func TestFFmpegArgsVolumeFormatting(t *testing.T) {
	tests := []struct {
		volume float64
		want   string
	}{
		{0.1, "volume=0.10"},
		{1.0, "volume=1.00"},
		{1.5, "volume=1.50"},
		{2.0, "volume=2.00"},
	}

	for _, tt := range tests {
		args := ffmpegArgs("url", tt.volume)
		idx := slices.Index(args, "-filter:a")
		if idx == -1 || args[idx+1] != tt.want {
			t.Errorf("volume %v rendered %q, want %q", tt.volume, args[idx+1], tt.want)
		}
	}
}

func TestStreamPauseFlag(t *testing.T) {
	st := &stream{}
	if st.isPaused() {
		t.Error("new stream must not start paused")
	}
	st.setPaused(true)
	if !st.isPaused() {
		t.Error("setPaused(true) did not stick")
	}
	st.setPaused(false)
	if st.isPaused() {
		t.Error("setPaused(false) did not stick")
	}
}
