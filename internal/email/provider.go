// Package email sends order notifications through a transactional email provider.
package email

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gitshopapp/merchconfig/internal/observability"
)

type Provider interface {
	SendEmail(ctx context.Context, email *Email) error
	ValidateAPIKey(ctx context.Context) error
}

type Email struct {
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

type Config struct {
	Provider string
	APIKey   string
	From     string
	Domain   string // For Mailgun
}

const (
	sendTimeout     = 30 * time.Second
	validateTimeout = 10 * time.Second
)

func NewProvider(config Config) (Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("email API key is required")
	}
	switch config.Provider {
	case "postmark":
		return NewPostmarkProvider(config.APIKey, config.From), nil
	case "mailgun":
		if config.Domain == "" {
			return nil, fmt.Errorf("mailgun requires a sending domain")
		}
		return NewMailgunProvider(config.APIKey, config.Domain, config.From), nil
	case "resend":
		return NewResendProvider(config.APIKey, config.From), nil
	default:
		return nil, fmt.Errorf("EMAIL_PROVIDER must be either 'postmark', 'mailgun', or 'resend'")
	}
}

// readResponse drains and closes the response body.
func readResponse(resp *http.Response, provider string) ([]byte, error) {
	body, readErr := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", provider, readErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close %s response body: %w", provider, closeErr)
	}
	return body, nil
}

func defaultHTTPClient() *http.Client {
	return observability.NewHTTPClient(0)
}
