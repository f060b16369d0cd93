package components

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestPadCountsDisplayWidth(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"ascii fill", "id", 4, "id  "},
		{"ascii truncate", "abcdefgh", 6, "abc..."},
		{"accented fill", "héllo", 7, "héllo  "},
		{"wide exact", "日本語", 6, "日本語"},
		{"wide fill", "東京", 5, "東京 "},
		{"wide truncate", "日本語テキスト", 6, "日... "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pad(tt.in, tt.width)
			if got != tt.want {
				t.Errorf("pad(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
			if w := runewidth.StringWidth(got); w != tt.width {
				t.Errorf("pad(%q, %d) renders %d columns", tt.in, tt.width, w)
			}
		})
	}
}

func TestPadNeverSplitsRunes(t *testing.T) {
	for _, s := range []string{"héllo wörld", "日本語のテキスト", "données"} {
		for width := 4; width <= 12; width++ {
			out := pad(s, width)
			for _, r := range out {
				if r == '�' {
					t.Fatalf("pad(%q, %d) produced a broken rune: %q", s, width, out)
				}
			}
		}
	}
}
