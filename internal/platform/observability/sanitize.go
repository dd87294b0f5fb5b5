package observability

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits for request values copied into logs and span attributes.
const (
	maxRouteRunes  = 180
	maxMethodRunes = 10
)

// SanitizeRoute makes a request path or route pattern safe to log. An empty path reads as "/".
func SanitizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return clipRunes(strings.Map(dropControl, route), maxRouteRunes)
}

// SanitizeMethod keeps only the visible ASCII of an HTTP method.
func SanitizeMethod(method string) string {
	return clipRunes(strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsGraphic(r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, method), maxMethodRunes)
}

func dropControl(r rune) rune {
	if unicode.IsControl(r) {
		return -1
	}
	return r
}

func clipRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
