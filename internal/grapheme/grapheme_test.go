package grapheme

import "testing"

func TestSplitAndCount_MultiRuneGraphemes(t *testing.T) {
	family := "\U0001F468\u200d\U0001F469\u200d\U0001F467"
	text := "a" + "é" + family + "b"
	got := Split(text)
	if len(got) != 4 {
		t.Fatalf("split len=%d, want %d", len(got), 4)
	}
	if got[1] != "é" {
		t.Fatalf("split[1]=%q, want %q", got[1], "é")
	}
	if got[2] != family {
		t.Fatalf("split[2]=%q, want family emoji", got[2])
	}
	if c := Count(text); c != 4 {
		t.Fatalf("count=%d, want %d", c, 4)
	}
	if got := Join(got); got != text {
		t.Fatalf("join=%q, want %q", got, text)
	}
}

func TestWidth(t *testing.T) {
	tests := []struct {
		cluster string
		col     int
		want    int
	}{
		{"a", 0, 1},
		{"テ", 0, 2},
		{"\t", 0, 4},
		{"\t", 3, 1},
		{"\t", 5, 3},
	}
	for _, tt := range tests {
		if got := Width(tt.cluster, tt.col, 4); got != tt.want {
			t.Fatalf("Width(%q, %d)=%d, want %d", tt.cluster, tt.col, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10, "…"); got != "hello" {
		t.Fatalf("short text truncated: %q", got)
	}
	if got, want := Truncate("hello world", 6, "…"), "hello…"; got != want {
		t.Fatalf("truncate=%q, want %q", got, want)
	}
	if got := Truncate("hello", 0, "…"); got != "" {
		t.Fatalf("zero width=%q, want empty", got)
	}
}

func TestIsSpace(t *testing.T) {
	if !IsSpace("\t") {
		t.Fatalf("tab should be space")
	}
	if IsSpace("a") || IsSpace("") {
		t.Fatalf("letter and empty should not be space")
	}
}
