package discovery

import (
	"bufio"
	"os"
	"strings"
)

// DefaultWordlist returns the fixed ordered list of candidate paths probed
// against a target. Order matters: cheap, high-signal paths come first.
func DefaultWordlist() []string {
	return []string{
		// Well-known files
		"/robots.txt", "/sitemap.xml", "/security.txt", "/.well-known/security.txt",
		"/humans.txt", "/favicon.ico", "/manifest.json",

		// Entry points
		"/", "/index.html", "/home", "/app",

		// Auth surface
		"/login", "/logout", "/signin", "/signout", "/signup", "/register",
		"/auth", "/oauth", "/password-reset", "/forgot-password",

		// User and account
		"/user", "/users", "/account", "/profile", "/settings", "/me",

		// Admin panels
		"/admin", "/admin/", "/administrator", "/dashboard", "/manager",
		"/panel", "/console",

		// API endpoints
		"/api", "/api/", "/api/v1", "/api/v2", "/rest", "/graphql", "/graphiql",
		"/swagger", "/swagger-ui", "/swagger.json", "/openapi.json", "/api-docs",

		// Config and debug
		"/.env", "/config.json", "/config.yml", "/debug", "/phpinfo.php",
		"/server-status", "/.git/config", "/.git/HEAD", "/web.config",
		"/.htaccess", "/composer.json", "/package.json", "/Dockerfile",
		"/docker-compose.yml",

		// Framework internals
		"/actuator", "/actuator/health", "/actuator/env", "/h2-console",
		"/wp-admin", "/wp-login.php", "/wp-json",

		// Backups and dumps
		"/backup", "/backups", "/dump.sql", "/database.sql", "/db.sql",
		"/backup.zip", "/site.zip", "/old",

		// Operational
		"/status", "/health", "/healthcheck", "/ping", "/version", "/info",
		"/metrics", "/log", "/logs", "/error.log", "/access.log",

		// Content
		"/upload", "/uploads", "/files", "/documents", "/images", "/assets",
		"/static", "/download", "/export", "/search",

		// Environments
		"/test", "/dev", "/staging", "/demo", "/tmp", "/cache",
	}
}

// LoadWordlist reads candidate paths from a file, one per line. Blank
// lines and #-comments are skipped; entries are normalized to start
// with "/".
func LoadWordlist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var paths []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			line = "/" + line
		}
		if _, dup := seen[line]; !dup {
			seen[line] = struct{}{}
			paths = append(paths, line)
		}
	}

	return paths, scanner.Err()
}
