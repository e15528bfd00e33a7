package sanitize

import "testing"

func TestASCII(t *testing.T) {
	tests := map[string]string{
		"":                                  "",
		"Sony WH-1000XM5":                   "Sony WH-1000XM5",
		"Fone Bluetooth Ação 🎧  Pro":        "Fone Bluetooth Acao Pro",
		"  Café\n\tcom leite  ":             "Cafe com leite",
		"Crème brûlée™ 100% pure":           "Creme brulee 100% pure",
		"​Invisible space":          "Invisible space",
		"Apple iPhone 15 (128 GB) – Preto": "Apple iPhone 15 (128 GB) Preto",
	}
	for in, want := range tests {
		if got := ASCII(in); got != want {
			t.Errorf("ASCII(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("Truncate = %q", got)
	}
}
