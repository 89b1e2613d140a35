package session

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	csrfPattern      = regexp.MustCompile(`"SNlM0e":"([^"]+)"`)
	sessionIDPattern = regexp.MustCompile(`"FdrFJe":"(-?\d+)"`)
	sidParamPattern  = regexp.MustCompile(`f\.sid["\s:=]+["']?(-?\d+)`)
)

// pageTokens holds what the landing page reveals about the session.
type pageTokens struct {
	CSRF      string
	SessionID string
}

// extractTokens reads the tokens from the page's inline scripts. The raw
// document is scanned only when it has no inline script, as with pages
// that goquery cannot parse.
func extractTokens(html string) pageTokens {
	var scripts []string
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find("script").Each(func(_ int, s *goquery.Selection) {
			if _, external := s.Attr("src"); !external {
				scripts = append(scripts, s.Text())
			}
		})
	}
	if len(scripts) == 0 {
		scripts = []string{html}
	}

	var t pageTokens
	for _, text := range scripts {
		if t.CSRF == "" {
			t.CSRF = firstMatch(csrfPattern, text)
		}
		if t.SessionID == "" {
			t.SessionID = firstMatch(sessionIDPattern, text)
		}
		if t.SessionID == "" {
			t.SessionID = firstMatch(sidParamPattern, text)
		}
		if t.CSRF != "" && t.SessionID != "" {
			break
		}
	}
	return t
}

func firstMatch(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	return ""
}
