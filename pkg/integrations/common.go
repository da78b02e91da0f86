package integrations

import (
	"net/http"
	"net/url"
	"time"
)

const httpTimeout = 30 * time.Second

// BrowserUserAgent is sent with every request.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"

// NewHTTPClient creates an HTTP client with a standard timeout for page requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// hostPath splits a URL into host and path for hook labels.
// Unparsable URLs yield the raw string as path.
func hostPath(raw string) (host, path string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", raw
	}
	return u.Host, u.Path
}
