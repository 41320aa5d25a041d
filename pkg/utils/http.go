// Package utils provides common utility functions.
package utils

import (
	"net/http"
	"net/url"
	"strconv"
)

// UserAgent identifies outbound requests.
const UserAgent = "reshape/1.0"

// BuildHeaders creates HTTP headers with defaults for JSON APIs.
func BuildHeaders(customHeaders map[string]string) http.Header {
	headers := http.Header{}

	headers.Add("User-Agent", UserAgent)
	headers.Add("Accept", "application/json")

	for key, value := range customHeaders {
		headers.Set(key, value)
	}

	return headers
}

// PageURL builds {base}/{entity}?limit={limit}&skip={skip}.
func PageURL(base, entity string, limit, skip int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	u = u.JoinPath(entity)

	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
