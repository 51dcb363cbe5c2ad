package repo

import "net/http"

// roundTripFunc stubs the feedstore transport so client tests run without a
// listening server.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// newTestClient returns an http.Client whose requests are answered by fn.
func newTestClient(fn roundTripFunc) *http.Client {
	return &http.Client{Transport: fn}
}
