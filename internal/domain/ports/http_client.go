package ports

import "net/http"

// HTTPClient is a minimal HTTP client interface for making requests.
// It allows adapters to be tested against a mock transport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
