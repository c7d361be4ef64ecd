package discovery

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractLinks returns same-origin paths referenced by anchor elements in
// an HTML document. Only hrefs starting with "/" are kept; external links,
// fragments, and javascript: pseudo-links are ignored.
func extractLinks(html []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !strings.HasPrefix(href, "/") {
			return
		}
		// Protocol-relative URLs point off-origin.
		if strings.HasPrefix(href, "//") {
			return
		}

		// Drop query and fragment; route identity is the path.
		if i := strings.IndexAny(href, "?#"); i != -1 {
			href = href[:i]
		}
		if href == "" || href == "/" {
			return
		}

		if _, dup := seen[href]; !dup {
			seen[href] = struct{}{}
			links = append(links, href)
		}
	})

	return links
}
