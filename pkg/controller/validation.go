package controller

import (
	"net/http"
	"net/url"
	"strings"

	"lambda-jsonapi/pkg/apierror"
)

// Characters outside RFC 3986 that url.Parse tolerates.
const invalidURLCharacters = " \\\"<>^`{|}"

// ValidateStatus fails for status codes without a registered reason phrase.
func ValidateStatus(status int) error {
	if http.StatusText(status) == "" {
		return apierror.New(http.StatusInternalServerError, "Unknown response status code.")
	}
	return nil
}

// ValidateRedirectStatus fails unless status is a registered 3xx status.
func ValidateRedirectStatus(status int) error {
	if status < 300 || status > 399 || http.StatusText(status) == "" {
		return apierror.New(http.StatusInternalServerError, "HTTP redirections must have a 3xx status code.")
	}
	return nil
}

// ValidateRedirectURL fails for empty or malformed redirection targets.
func ValidateRedirectURL(raw string) error {
	invalid := apierror.Newf(http.StatusInternalServerError, "`%s' is not a valid URL.", raw)
	if strings.TrimSpace(raw) == "" || strings.ContainsAny(raw, invalidURLCharacters) {
		return invalid
	}
	if _, err := url.Parse(raw); err != nil {
		return invalid
	}
	return nil
}
