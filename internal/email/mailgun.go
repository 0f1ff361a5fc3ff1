package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const mailgunBaseURL = "https://api.mailgun.net/v3"

type MailgunProvider struct {
	apiKey  string
	from    string
	domain  string
	baseURL string
	client  *http.Client
}

// MailgunResponse is the body Mailgun returns for send and error calls.
type MailgunResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func NewMailgunProvider(apiKey, domain, from string) *MailgunProvider {
	return NewMailgunProviderWithBaseURL(apiKey, domain, from, mailgunBaseURL)
}

// NewMailgunProviderWithBaseURL targets another region, such as https://api.eu.mailgun.net/v3.
func NewMailgunProviderWithBaseURL(apiKey, domain, from, baseURL string) *MailgunProvider {
	return &MailgunProvider{
		apiKey:  apiKey,
		domain:  domain,
		from:    from,
		baseURL: baseURL,
		client:  defaultHTTPClient(),
	}
}

func (m *MailgunProvider) SendEmail(ctx context.Context, email *Email) error {
	if email == nil {
		return fmt.Errorf("email is required")
	}
	data := url.Values{}
	data.Set("from", m.from)
	data.Set("to", email.To)
	data.Set("subject", email.Subject)
	data.Set("o:tag", "order-notification")
	if email.ReplyTo != "" {
		data.Set("h:Reply-To", email.ReplyTo)
	}
	if email.Text != "" {
		data.Set("text", email.Text)
	}
	if email.HTML != "" {
		data.Set("html", email.HTML)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	apiURL := fmt.Sprintf("%s/%s/messages", m.baseURL, m.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, status, err := m.do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if status != http.StatusOK {
		var errResp MailgunResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
			return fmt.Errorf("mailgun error: %s", errResp.Message)
		}
		return fmt.Errorf("mailgun API returned status %d: %s", status, string(body))
	}
	return nil
}

func (m *MailgunProvider) ValidateAPIKey(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/domains/%s", m.baseURL, m.domain), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	body, status, err := m.do(req)
	if err != nil {
		return fmt.Errorf("failed to validate API key: %w", err)
	}
	if status != http.StatusOK {
		if len(body) > 0 {
			return fmt.Errorf("invalid API key: received status %d: %s", status, string(body))
		}
		return fmt.Errorf("invalid API key: received status %d", status)
	}
	return nil
}

func (m *MailgunProvider) do(req *http.Request) ([]byte, int, error) {
	req.SetBasicAuth("api", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	body, err := readResponse(resp, "mailgun")
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
