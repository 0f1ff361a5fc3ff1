package observability

import (
	"net/http"
	"time"

	sentryhttpclient "github.com/getsentry/sentry-go/httpclient"
)

// emailAPIHosts receive sentry trace headers on outbound notification calls.
var emailAPIHosts = []string{
	"api.postmarkapp.com",
	"api.mailgun.net",
	"api.resend.com",
}

// NewHTTPClient returns a client whose requests are recorded as sentry spans.
// A zero timeout leaves the client without a deadline.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: sentryhttpclient.NewSentryRoundTripper(
			http.DefaultTransport,
			sentryhttpclient.WithTracePropagationTargets(emailAPIHosts),
		),
	}
}
