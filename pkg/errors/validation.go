package errors

import (
	"net/url"
	"regexp"
)

// maxCrateName is the crates.io limit on crate name length.
const maxCrateName = 64

// crateNameRe matches names crates.io accepts: an ASCII letter followed by
// ASCII letters, digits, '-' or '_'. Anything else (path separators, query
// characters, control bytes) cannot reach a registry URL.
var crateNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidateCrateName checks a crate name before it is sent to the registry.
func ValidateCrateName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPackage, "crate name cannot be empty")
	case len(name) > maxCrateName:
		return New(ErrCodeInvalidPackage, "crate name too long (max %d characters): %q", maxCrateName, name)
	case !crateNameRe.MatchString(name):
		return New(ErrCodeInvalidPackage, "invalid crate name: %q", name)
	}
	return nil
}

// ValidateURL checks that rawURL is an absolute http or https URL.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme: %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL has no host: %q", rawURL)
	}
	return nil
}
