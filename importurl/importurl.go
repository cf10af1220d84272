// Package importurl validates the URLs a Ruchy `import`/`use`
// statement may resolve to (spec.md §6.3). It is a pure function with
// no network access — fetching and caching the resolved module are the
// launcher's concern, out of this core's scope.
package importurl

import (
	"fmt"
	"net/url"
	"strings"
)

var blockedSubstrings = []string{"javascript:", "data:", "file:"}

// Validate enforces every rule a Ruchy import URL must satisfy:
//  1. scheme is https://, or http:// to localhost/127.0.0.1
//  2. path ends in .ruchy or .rchy
//  3. no ".." or "/." path-traversal segments
//  4. no javascript:/data:/file: substrings anywhere in the raw URL
func Validate(rawURL string) error {
	lower := strings.ToLower(rawURL)
	for _, bad := range blockedSubstrings {
		if strings.Contains(lower, bad) {
			return fmt.Errorf("import url contains forbidden scheme marker %q", bad)
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid import url: %w", err)
	}

	if !validScheme(u) {
		return fmt.Errorf("import url scheme must be https, or http to localhost/127.0.0.1, got %q://%q", u.Scheme, u.Host)
	}

	if !strings.HasSuffix(u.Path, ".ruchy") && !strings.HasSuffix(u.Path, ".rchy") {
		return fmt.Errorf("import url path must end in .ruchy or .rchy, got %q", u.Path)
	}

	if strings.Contains(u.Path, "..") || strings.Contains(u.Path, "/.") {
		return fmt.Errorf("import url path must not contain traversal segments, got %q", u.Path)
	}

	return nil
}

func validScheme(u *url.URL) bool {
	if u.Scheme == "https" {
		return true
	}
	if u.Scheme == "http" {
		host := u.Hostname()
		return host == "localhost" || host == "127.0.0.1"
	}
	return false
}
