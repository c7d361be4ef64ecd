package discovery

import (
	"bufio"
	"strings"
)

// robotsPath is the well-known robots-exclusion file. Its Allow/Disallow
// entries are trusted as declared routes without being independently probed.
const robotsPath = "/robots.txt"

// parseRobots extracts path references from robots.txt content. Both
// Allow and Disallow directives are interesting: paths an operator hides
// from crawlers are often exactly the ones worth testing.
func parseRobots(body string) []string {
	var paths []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		directive := strings.ToLower(strings.TrimSpace(parts[0]))
		if directive != "allow" && directive != "disallow" {
			continue
		}

		value := strings.TrimSpace(parts[1])
		if !strings.HasPrefix(value, "/") {
			continue
		}

		// Strip wildcard suffixes so the path is directly probeable.
		value = strings.TrimSuffix(value, "$")
		value = strings.TrimSuffix(value, "*")
		if value == "" || value == "/" {
			continue
		}

		if _, dup := seen[value]; !dup {
			seen[value] = struct{}{}
			paths = append(paths, value)
		}
	}

	return paths
}
