package github

import "net/http"

const (
	// apiVersion is the pinned GitHub REST API version sent on every request.
	apiVersion = "2022-11-28"

	acceptHeader = "application/vnd.github.v3+json"
)

// RequestHeaders returns the headers carried by every outbound GitHub API
// request: bearer authorization, the JSON media type, and the pinned API
// version. It is a pure function of the supplied token; the process
// environment is never consulted.
func RequestHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization":        "Bearer " + token,
		"Accept":               acceptHeader,
		"X-GitHub-Api-Version": apiVersion,
	}
}

// pinnedHeaderTransport sets the Accept and API-version headers on every
// request before handing it to the underlying transport. Authorization is
// handled by the oauth2 transport it wraps.
type pinnedHeaderTransport struct {
	next http.RoundTripper
}

func (t *pinnedHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(req)
}
