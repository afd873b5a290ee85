package remote

import (
	"encoding/base64"
	"path"
	"strings"
)

// EncodeContent encodes file text the way the contents APIs expect it.
func EncodeContent(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// DecodeContent decodes a contents-API payload. Backends wrap base64 at
// fixed column widths, so all whitespace is stripped before decoding.
func DecodeContent(p, enc string) (string, error) {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, enc)
	raw, err := base64.StdEncoding.DecodeString(stripped)
	if err != nil {
		return "", &DecodeError{Path: p, Err: err}
	}
	return string(raw), nil
}

// NormalizePath converts a repository-relative path to the slash-separated,
// no-leading-separator form the contents APIs expect.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

// JoinPath joins repository path segments, skipping empty ones.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return NormalizePath(path.Join(parts...))
}
