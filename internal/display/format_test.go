package display

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"micro", 850 * time.Microsecond, "850 µs"},
		{"milli", 12300 * time.Microsecond, "12.3 ms"},
		{"seconds", 4200 * time.Millisecond, "4.20 s"},
		{"minutes", 3*time.Minute + 5*time.Second, "3m05s"},
		{"rounded", 61*time.Second + 600*time.Millisecond, "1m02s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.d); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(1, 4); got != "25.0%" {
		t.Errorf("FormatPercent(1, 4) = %q", got)
	}
	if got := FormatPercent(3, 0); got != "n/a" {
		t.Errorf("FormatPercent(3, 0) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"Vanderbilt Knockout Teams", 12, "Vanderbil..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.s, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestPrintBannerWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	out := buf.String()
	if strings.Contains(out, "\033[") {
		t.Errorf("banner has escape codes with colors disabled: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("banner does not end with a newline")
	}
}
