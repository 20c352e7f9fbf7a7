// Package classify turns raw clipboard payloads into a content type and
// a normalized fingerprint. It is pure: no I/O, no clock, no store.
package classify

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/pastego/pastego/internal/model"
)

// Payload is one raw clipboard observation. Exactly one of Text or
// Image is populated for a given semantic value.
type Payload struct {
	Text  string
	Image []byte
}

// IsImage reports whether the payload carries binary image data.
func (p Payload) IsImage() bool {
	return len(p.Image) > 0
}

// Classify returns the content type and normalized hash for a payload.
func Classify(p Payload) (model.ClipType, string) {
	if p.IsImage() {
		return model.ClipTypeImage, HashBytes(p.Image)
	}
	return DetectType(p.Text), HashText(p.Text)
}

// NormalizeText prepares text for hashing: line endings are normalized
// to LF and trailing whitespace is trimmed, so a stray trailing newline
// does not produce a near-duplicate record.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimRight(s, " \t\n")
}

// HashText returns the hex sha256 digest of the normalized text.
func HashText(s string) string {
	sum := sha256.Sum256([]byte(NormalizeText(s)))
	return hex.EncodeToString(sum[:])
}

// HashBytes returns the hex sha256 digest of raw bytes.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// codeIndicators are syntax tokens whose presence hints at source code.
// Classification is a best-effort UX hint, not a correctness contract.
var codeIndicators = []string{
	"fn ", "func ", "def ", "class ", "import ", "from ", "#include",
	"const ", "let ", "var ", "function ", "return ", "if (", "for (",
	"while (", "pub fn", "async ", "await ", "=>", "->", "::",
	"console.log", "System.out", "<?php", "package ", "struct ",
}

// DetectType classifies text content as url, code, or plain text.
func DetectType(text string) model.ClipType {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.ClipTypeText
	}

	if isURL(trimmed) {
		return model.ClipTypeURL
	}

	if looksLikeCode(trimmed) {
		return model.ClipTypeCode
	}

	return model.ClipTypeText
}

// isURL reports whether the whole trimmed string is a single
// well-formed URI.
func isURL(s string) bool {
	if strings.ContainsAny(s, " \n\t") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ftp":
		return true
	}
	return false
}

// looksLikeCode applies the indicator-density heuristic: either several
// syntax tokens over a few lines, or brace structure plus at least one
// token over a longer snippet.
func looksLikeCode(s string) bool {
	lineCount := strings.Count(s, "\n") + 1
	hasBraces := strings.Contains(s, "{") && strings.Contains(s, "}")

	indicatorCount := 0
	for _, ind := range codeIndicators {
		if strings.Contains(s, ind) {
			indicatorCount++
		}
	}

	if indicatorCount >= 2 && lineCount >= 3 {
		return true
	}
	if hasBraces && indicatorCount >= 1 && lineCount >= 5 {
		return true
	}
	return false
}
