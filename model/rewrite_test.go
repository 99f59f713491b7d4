package model

import "testing"

// 特性开关缺省即同步模式
func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"async":   ModeAsync,
		"enabled": ModeAsync,
		"on":      ModeAsync,
		"sync":    ModeSync,
		"":        ModeSync,
		"bogus":   ModeSync,
	}
	for in, want := range cases {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %s, want %s", in, got, want)
		}
	}

	if ModeSync.Enabled() {
		t.Error("ModeSync must not be enabled")
	}
	if !ModeAsync.Enabled() {
		t.Error("ModeAsync must be enabled")
	}
}
