package catalog

import (
	"net/url"
	"strings"
)

// ResolveStoragePath maps a photo URL onto a bucket-relative storage path.
// Three shapes are recognized:
//
//	gs://<bucket>/<object>
//	https://storage.googleapis.com/<bucket>/<object>
//	https://firebasestorage.googleapis.com/v0/b/<bucket>/o/<escaped object>?token=...
//
// Anything else resolves to ok=false, which callers treat as "skip
// cleanup", never as a failure.
func ResolveStoragePath(rawURL string) (string, bool) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", false
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}

	switch {
	case u.Scheme == "gs":
		object := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || object == "" {
			return "", false
		}
		return u.Host + "/" + object, true

	case (u.Scheme == "https" || u.Scheme == "http") && u.Host == "storage.googleapis.com":
		parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", false
		}
		return parts[0] + "/" + parts[1], true

	case (u.Scheme == "https" || u.Scheme == "http") && u.Host == "firebasestorage.googleapis.com":
		return resolveTokenizedPath(u.EscapedPath())

	default:
		return "", false
	}
}

// resolveTokenizedPath handles the signed download shape, where the
// object name is a single percent-encoded path segment after /o/.
func resolveTokenizedPath(escapedPath string) (string, bool) {
	const prefix = "/v0/b/"
	if !strings.HasPrefix(escapedPath, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(escapedPath, prefix)

	bucketAndObject := strings.SplitN(rest, "/o/", 2)
	if len(bucketAndObject) != 2 || bucketAndObject[0] == "" || bucketAndObject[1] == "" {
		return "", false
	}

	object, err := url.PathUnescape(bucketAndObject[1])
	if err != nil || object == "" {
		return "", false
	}
	return bucketAndObject[0] + "/" + object, true
}
