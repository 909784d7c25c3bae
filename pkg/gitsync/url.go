package gitsync

import "strings"

// BuildAuthenticatedURL rewrites a remote URL into the https push form
// with the credential spliced into the authority: any existing protocol
// and user prefix is stripped, a single .git suffix is appended, and the
// opaque credential (token or user:token) becomes the userinfo.
func BuildAuthenticatedURL(repoURL, credential string) string {
	stripped := repoURL
	if i := strings.Index(stripped, "://"); i >= 0 {
		stripped = stripped[i+3:]
	}
	if i := strings.Index(stripped, "@"); i >= 0 {
		stripped = stripped[i+1:]
	}
	stripped = strings.TrimSuffix(stripped, "/")
	if !strings.HasSuffix(stripped, ".git") {
		stripped += ".git"
	}
	if credential == "" {
		return "https://" + stripped
	}
	return "https://" + credential + "@" + stripped
}

// isRemoteURL reports whether the configured repository address is a
// network URL rather than a filesystem path.
func isRemoteURL(repoURL string) bool {
	return strings.Contains(repoURL, "://")
}
