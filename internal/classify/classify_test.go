package classify

import (
	"testing"

	"github.com/pastego/pastego/internal/model"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.ClipType
	}{
		{"empty", "", model.ClipTypeText},
		{"plain sentence", "meet me at noon", model.ClipTypeText},
		{"https url", "https://example.com/path?q=1", model.ClipTypeURL},
		{"http url with spaces around", "  http://example.com  ", model.ClipTypeURL},
		{"ftp url", "ftp://files.example.com/a.iso", model.ClipTypeURL},
		{"url embedded in prose", "see https://example.com for details", model.ClipTypeText},
		{"multiline starting with url", "https://example.com\nand more", model.ClipTypeText},
		{"unsupported scheme", "mailto:someone@example.com", model.ClipTypeText},
		{
			"go snippet",
			"package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}",
			model.ClipTypeCode,
		},
		{
			"js snippet",
			"function add(a, b) {\n  return a + b;\n}\nconst x = add(1, 2);\nconsole.log(x);",
			model.ClipTypeCode,
		},
		{"single indicator one line", "return of the king", model.ClipTypeText},
		{
			"braces but prose",
			"notes {draft}\nline two\nline three",
			model.ClipTypeText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectType(tt.text); got != tt.want {
				t.Errorf("DetectType(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestHashTextNormalization(t *testing.T) {
	base := HashText("hello world")

	same := []string{
		"hello world\n",
		"hello world\r\n",
		"hello world  \n\n",
		"hello world",
	}
	for _, s := range same {
		if got := HashText(s); got != base {
			t.Errorf("HashText(%q) = %s, want same as base %s", s, got, base)
		}
	}

	if HashText("hello  world") == base {
		t.Error("interior whitespace change should produce a different hash")
	}
	if HashText(" hello world") == base {
		t.Error("leading whitespace change should produce a different hash")
	}
}

func TestClassify(t *testing.T) {
	typ, hash := Classify(Payload{Text: "https://example.com"})
	if typ != model.ClipTypeURL {
		t.Errorf("text payload type = %v, want url", typ)
	}
	if hash != HashText("https://example.com") {
		t.Error("text payload hash should match HashText")
	}

	img := []byte{0x89, 0x50, 0x4e, 0x47}
	typ, hash = Classify(Payload{Image: img})
	if typ != model.ClipTypeImage {
		t.Errorf("image payload type = %v, want image", typ)
	}
	if hash != HashBytes(img) {
		t.Error("image payload hash should match HashBytes")
	}
}
