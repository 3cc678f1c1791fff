package scraper

import (
	"net/url"
	"strings"
)

// videoHosts are hosts whose channel pages describe the brand better on
// their about tab than on the landing page.
var videoHosts = []string{"youtube.com"}

const aboutSuffix = "/about"

// NormalizeURL rewrites raw to a better source page when one is known. It
// performs no network access, and applying it twice gives the same result
// as applying it once.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil || !isVideoHost(u.Host) {
		return raw
	}

	path := strings.TrimRight(u.Path, "/")
	if strings.HasSuffix(path, aboutSuffix) {
		return raw
	}

	u.Path = path + aboutSuffix
	u.RawPath = ""
	return u.String()
}

func isVideoHost(host string) bool {
	host = strings.ToLower(host)
	for _, h := range videoHosts {
		if strings.Contains(host, h) {
			return true
		}
	}
	return false
}
