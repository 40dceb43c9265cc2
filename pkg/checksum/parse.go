package checksum

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// VisibleText returns the text content of an HTML document, one text node per
// line, with script and style bodies dropped and entities decoded.
func VisibleText(page string) string {
	z := html.NewTokenizer(strings.NewReader(page))

	var (
		sb   strings.Builder
		skip int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.StartTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if text == "" {
				continue
			}
			sb.WriteString(text)
			sb.WriteByte('\n')
		}
	}
}

func isHidden(tag string) bool {
	return tag == "script" || tag == "style"
}

// ParseChecksumFile reads a sha256sum style listing ("<hex>  <file>" or
// "<hex> *<file>") and returns the digest for filename.
func ParseChecksumFile(content, filename string) (string, error) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		value := strings.TrimPrefix(parts[0], "sha256:")
		file := strings.TrimPrefix(strings.Join(parts[1:], " "), "*")
		if file != filename && filepath.Base(file) != filename {
			continue
		}
		if !isSHA256(value) {
			return "", fmt.Errorf("invalid sha256 %q for %s", value, filename)
		}
		return strings.ToLower(value), nil
	}
	return "", fmt.Errorf("%w: %s not listed", ErrChecksumNotFound, filename)
}

func isSHA256(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
