package engine

import (
	"strconv"
	"unicode/utf8"

	"github.com/valyala/fasttemplate"
)

const (
	VersionMajor = 1
	VersionMinor = 0

	userAgentTemplate = "Mozilla/4.0 (Compatible; {info}; kites3 {major}.{minor}; {platform})"
	// userAgentMax matches the longest user agent the engine will emit
	userAgentMax = 256
)

var userAgentTpl = fasttemplate.New(userAgentTemplate, "{", "}")

// buildUserAgent renders the process wide user agent from the caller supplied info
func buildUserAgent(info string) string {
	if info == "" {
		info = "Unknown"
	}
	ua := userAgentTpl.ExecuteString(map[string]interface{}{
		"info":     info,
		"major":    strconv.Itoa(VersionMajor),
		"minor":    strconv.Itoa(VersionMinor),
		"platform": platform(),
	})
	if len(ua) > userAgentMax {
		// cut on a rune boundary
		n := userAgentMax
		for n > 0 && !utf8.RuneStart(ua[n]) {
			n--
		}
		ua = ua[:n]
	}
	return ua
}
