package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates a resty client bound to baseURL with the given
// per-request timeout. Every request whose context carries a trace id
// (see WithTraceID) is sent with the TraceIDHeader set.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		OnBeforeRequest(propagateTraceID)

	return &HTTPClient{Client: client}
}

func propagateTraceID(_ *resty.Client, req *resty.Request) error {
	if traceID, ok := GetTraceIDFromContext(req.Context()); ok {
		req.SetHeader(TraceIDHeader, traceID)
	}
	return nil
}
