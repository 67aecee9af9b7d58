package browse

import "regexp"

// hrefPattern matches double-quoted absolute http(s) href attributes.
// Relative links, single-quoted and unquoted attributes are ignored.
var hrefPattern = regexp.MustCompile(`href="(https?://[^"]+)"`)

// ExtractLinks returns every absolute http(s) link in body, in order of
// appearance and with duplicates kept, minus links matched by filter.
// A nil filter keeps every link. The result is empty, never nil.
func ExtractLinks(body []byte, filter Filter) []string {
	links := make([]string, 0)
	for _, m := range hrefPattern.FindAllSubmatch(body, -1) {
		link := string(m[1])
		if filter != nil && filter.Matches(link) {
			continue
		}
		links = append(links, link)
	}
	return links
}
