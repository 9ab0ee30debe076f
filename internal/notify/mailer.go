package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Mailer talks to a Mailgun-compatible messages endpoint. The engine needs
// exactly one call: deliver a single HTML message with tags.
type Mailer struct {
	hc      *http.Client
	baseURL string // https://api.mailgun.net/v3/<domain> or compatible
	apiKey  string
	from    string
}

func NewMailer(baseURL, apiKey, from string) *Mailer {
	return &Mailer{
		hc:      &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
	}
}

func (m *Mailer) Deliver(ctx context.Context, msg Message) (string, error) {
	form := url.Values{}
	form.Set("from", m.from)
	form.Set("to", msg.To)
	form.Set("subject", msg.Subject)
	form.Set("html", msg.HTML)
	for _, tag := range msg.Tags {
		form.Add("o:tag", tag)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/messages", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth("api", m.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := m.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("mail send: %w", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("mail send status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("mail send decode response: %w", err)
	}
	return out.ID, nil
}
