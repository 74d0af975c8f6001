package solver

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/quizchain/solver-service/internal/fetch"
)

// UnknownSecret is what a submission carries when no embedding convention
// matched. Wire formats need a string; inside the service absence is the
// ok=false return of ExtractSecret.
const UnknownSecret = "UNKNOWN_SECRET"

// Embedding conventions seen across quiz pages, in priority order. The first
// pattern that matches anywhere in the document wins.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"secret"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`secret=([A-Za-z0-9_\-]+)`),
	regexp.MustCompile(`<span id="secret">([^<]+)</span>`),
	regexp.MustCompile(`data-secret="([^"]+)"`),
	regexp.MustCompile(`SECRET:\s*([A-Za-z0-9_\-]+)`),
}

var (
	submitURLPattern   = regexp.MustCompile(`https?://[^\s'"<>]+/submit[^\s'"<>]*`)
	apiURLPattern      = regexp.MustCompile(`https?://[^\s'"<>]+/(?:api|quiz|answer)[^\s'"<>]*`)
	dataURLPattern     = regexp.MustCompile(`https?://[^\s'"<>]+(?:\.csv|\.json|\.pdf|\.xlsx|\.xls)`)
	atobPattern        = regexp.MustCompile(`atob\(["']([^"']+)["']\)`)
	decodeCallPattern  = regexp.MustCompile(`decode\(["']([^"']+)["']\)`)
	quotedChunkPattern = regexp.MustCompile(`["']([^"']+)["']`)
)

// ExtractSecret returns the first embedded secret token found in raw HTML.
// ok is false when none of the known conventions matched; the returned string
// is then UnknownSecret.
func ExtractSecret(html string) (string, bool) {
	for _, pat := range secretPatterns {
		if m := pat.FindStringSubmatch(html); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return UnknownSecret, false
}

// ExtractSubmitURL picks the submission endpoint for a page. Known hrefs and
// form actions are preferred; failing that the document is scanned for URL
// literals, and as a last resort the answer goes to origin + "/submit".
func ExtractSubmitURL(html, text string, hrefs []string, currentURL string) string {
	for _, u := range hrefs {
		if u == "" {
			continue
		}
		if strings.Contains(u, "submit") || strings.Contains(u, "answer") || strings.Contains(u, "upload") {
			return u
		}
	}

	combined := html + "\n" + text
	if m := submitURLPattern.FindString(combined); m != "" {
		return m
	}
	if m := apiURLPattern.FindString(combined); m != "" {
		return m
	}

	return originOf(currentURL) + "/submit"
}

// originOf drops the last path segment of a URL.
func originOf(url string) string {
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[:i]
	}
	return url
}

// FindDataURLs scans HTML for literal links to downloadable data files.
func FindDataURLs(html string) []string {
	return dataURLPattern.FindAllString(html, -1)
}

// DecodeInstructions recovers the instruction text of a page. Quiz pages hide
// instructions behind base64 blobs handed to atob()/decode() or build them
// from script string literals; plain pages just get their tags stripped.
func DecodeInstructions(html string) string {
	for _, pat := range []*regexp.Regexp{atobPattern, decodeCallPattern} {
		for _, m := range pat.FindAllStringSubmatch(html, -1) {
			if decoded, ok := decodeBase64(m[1]); ok {
				return decoded
			}
		}
	}

	for _, script := range fetch.ParseStatic(html).Scripts {
		if !strings.Contains(script, "document.write") && !strings.Contains(script, "innerHTML") {
			continue
		}
		for _, m := range quotedChunkPattern.FindAllStringSubmatch(script, -1) {
			if len(m[1]) > 20 {
				return m[1]
			}
		}
	}

	if text := fetch.StripTags(html); len(text) > 10 {
		return text
	}
	return html
}

func decodeBase64(candidate string) (string, bool) {
	if decoded, err := base64.StdEncoding.DecodeString(candidate); err == nil && len(decoded) > 10 {
		return string(decoded), true
	}

	padded := candidate + strings.Repeat("=", (4-len(candidate)%4)%4)
	if decoded, err := base64.URLEncoding.DecodeString(padded); err == nil && len(decoded) > 10 {
		return string(decoded), true
	}
	return "", false
}
