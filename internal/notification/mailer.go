package notification

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// EmailClient talks to the email service.
type EmailClient struct {
	http *resty.Client
}

func NewEmailClient(baseURL string, rt http.RoundTripper) *EmailClient {
	if rt == nil {
		rt = otelhttp.NewTransport(http.DefaultTransport)
	}
	return &EmailClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTransport(rt).
			SetTimeout(10 * time.Second),
	}
}

func (c *EmailClient) Send(ctx context.Context, to, subject, body string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"to": to, "subject": subject, "body": body}).
		Post("/send")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode())
	}
	return nil
}
