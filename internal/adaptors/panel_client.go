package adaptors

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"serv00_keepalive/internal/domain/models"
	"serv00_keepalive/internal/pkg/metrics"
)

const loginPath = "/login/"

// PanelClient logs in to a serv00-style panel over HTTP. Every Login call
// uses a fresh cookie jar so sessions never leak between accounts.
type PanelClient struct {
	transport http.RoundTripper
	timeout   time.Duration
	log       *log.Logger
}

func NewPanelClient(timeout time.Duration, logger *log.Logger) *PanelClient {
	rTripper := promhttp.InstrumentRoundTripperDuration(
		metrics.HTTPClientRequestDuration,
		promhttp.InstrumentRoundTripperCounter(metrics.HTTPClientRequestsTotal, http.DefaultTransport))

	return &PanelClient{
		transport: rTripper,
		timeout:   timeout,
		log:       logger,
	}
}

// Login performs the panel's two-step login: fetch the login page for the
// CSRF token, then submit the credential form. Transport problems are
// returned inside the LoginAttempt; this method never retries and never
// panics.
func (c *PanelClient) Login(ctx context.Context, account models.Account) *models.LoginAttempt {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return failedAttempt(models.FailureOther, err.Error())
	}
	client := &http.Client{
		Timeout:   c.timeout,
		Transport: c.transport,
		Jar:       jar,
	}

	loginURL := strings.TrimRight(account.PanelURL, "/") + loginPath

	token, attempt := c.fetchCSRFToken(ctx, client, loginURL)
	if attempt != nil {
		return attempt
	}

	form := url.Values{
		"csrfmiddlewaretoken": {token},
		"username":            {account.Username},
		"password":            {account.Password},
		"next":                {"/"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		c.log.WithError(err).Error(`failed to create login request`)
		return failedAttempt(models.FailureOther, err.Error())
	}
	setBrowserHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", loginURL)
	req.Header.Set("Origin", strings.TrimRight(account.PanelURL, "/"))

	resp, err := client.Do(req)
	if err != nil {
		return failureFromError(err)
	}
	defer resp.Body.Close()

	bodyByte, err := io.ReadAll(resp.Body)
	if err != nil {
		return failureFromError(err)
	}

	finalURL := loginURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &models.LoginAttempt{
		Response: &models.PanelResponse{
			StatusCode: resp.StatusCode,
			Body:       string(bodyByte),
			FinalURL:   finalURL,
		},
	}
}

// fetchCSRFToken loads the login page and extracts the Django CSRF token.
// On failure it returns a non-nil LoginAttempt describing the problem.
func (c *PanelClient) fetchCSRFToken(ctx context.Context, client *http.Client, loginURL string) (string, *models.LoginAttempt) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loginURL, nil)
	if err != nil {
		c.log.WithError(err).Error(`failed to create login page request`)
		return "", failedAttempt(models.FailureOther, err.Error())
	}
	setBrowserHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return "", failureFromError(err)
	}
	defer resp.Body.Close()

	bodyByte, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", failureFromError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", failedAttempt(models.FailureOther,
			"login page returned status "+resp.Status)
	}

	token := extractCSRFToken(bodyByte)
	if token == "" {
		return "", failedAttempt(models.FailureOther, "csrf token not found in login page")
	}
	return token, nil
}

// extractCSRFToken finds <input name="csrfmiddlewaretoken" value="..."> in
// the login page.
func extractCSRFToken(body []byte) string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}
	var token string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "input" {
			var name, value string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "name":
					name = attr.Val
				case "value":
					value = attr.Val
				}
			}
			if name == "csrfmiddlewaretoken" {
				token = value
				return
			}
		}
		for c := n.FirstChild; c != nil && token == ""; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return token
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

func failedAttempt(kind models.FailureKind, detail string) *models.LoginAttempt {
	return &models.LoginAttempt{
		Failure: &models.TransportFailure{Kind: kind, Detail: detail},
	}
}

// failureFromError maps a transport error to a failure kind. Timeouts are
// reported distinctly so the operator can tell slow panels from dead ones.
func failureFromError(err error) *models.LoginAttempt {
	kind := models.FailureOther

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = models.FailureTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = models.FailureTimeout
	default:
		var urlErr *url.Error
		var dnsErr *net.DNSError
		var opErr *net.OpError
		if errors.As(err, &urlErr) || errors.As(err, &dnsErr) || errors.As(err, &opErr) {
			kind = models.FailureConnection
		}
	}

	return failedAttempt(kind, err.Error())
}
