package service

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"serv00_keepalive/internal/domain/models"
)

// MarkerSet holds the panel-specific text markers used to classify a login
// response. Markers are configuration, not code: panel UI strings change
// without notice, so operators can override them in config.yaml.
type MarkerSet struct {
	Banned    []string
	Success   []string
	LoginPage []string
}

// DefaultMarkerSet matches the serv00 panel (Polish UI with English
// fallbacks).
func DefaultMarkerSet() MarkerSet {
	return MarkerSet{
		Banned:    []string{"Konto zablokowane", "Account blocked", "blocked"},
		Success:   []string{"Strona główna", "Zalogowany jako", "Dashboard"},
		LoginPage: []string{"Zaloguj się", "Login", "Sign in"},
	}
}

var (
	banReasonPattern = regexp.MustCompile(`Konto zablokowane[:\s]*([^<\n]+)`)
	validityPattern  = regexp.MustCompile(`Konto ważne do[:\s]*([^<\n]+)`)
	alertPattern     = regexp.MustCompile(`class="[^"]*alert[^"]*"[^>]*>([^<]+)`)
)

// Classify maps one login attempt to an account state plus a diagnostic
// detail. It is a total function: every input yields exactly one state and
// unrecognized responses become StateError, never a fault.
//
// Ban markers are checked first: a ban page can still carry login-form
// artifacts, so bans take precedence over everything else.
func (m MarkerSet) Classify(attempt *models.LoginAttempt) (models.AccountState, string) {
	if attempt == nil {
		return models.StateError, "no login attempt was made"
	}
	if attempt.Failed() {
		return models.StateError, fmt.Sprintf("%s: %s", attempt.Failure.Kind, attempt.Failure.Detail)
	}

	body := attempt.Response.Body

	if containsAny(body, m.Banned) {
		return models.StateBanned, extractBanReason(body)
	}

	if containsAny(body, m.Success) {
		return models.StateNormal, extractValidity(body)
	}

	if containsAny(body, m.LoginPage) || hasPasswordForm(body) {
		return models.StateLoginFailed, extractLoginError(body)
	}

	return models.StateError, fmt.Sprintf("unrecognized response (status %d) from %s",
		attempt.Response.StatusCode, attempt.Response.FinalURL)
}

func containsAny(body string, markers []string) bool {
	for _, marker := range markers {
		if marker != "" && strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

// extractBanReason pulls the reason out of "Konto zablokowane: <reason>".
func extractBanReason(body string) string {
	if match := banReasonPattern.FindStringSubmatch(body); match != nil {
		return strings.TrimSpace(match[1])
	}
	return "TOS violation"
}

// extractValidity pulls the expiry out of "Konto ważne do: <date>".
func extractValidity(body string) string {
	if match := validityPattern.FindStringSubmatch(body); match != nil {
		return "valid until " + strings.TrimSpace(match[1])
	}
	return ""
}

func extractLoginError(body string) string {
	if match := alertPattern.FindStringSubmatch(body); match != nil {
		if text := strings.TrimSpace(match[1]); text != "" {
			return text
		}
	}
	return "invalid username or password"
}

// hasPasswordForm reports whether the page contains a form with a password
// input, i.e. the login form was re-displayed.
func hasPasswordForm(body string) bool {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return false
	}
	var found bool
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "form" {
			if formHasPassword(n) {
				found = true
				return
			}
		}
		for c := n.FirstChild; c != nil && !found; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return found
}

func formHasPassword(form *html.Node) bool {
	var hasPassword bool
	var traverseForm func(*html.Node)
	traverseForm = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "input" {
			for _, attr := range n.Attr {
				if attr.Key == "type" && attr.Val == "password" {
					hasPassword = true
					return
				}
			}
		}
		for c := n.FirstChild; c != nil && !hasPassword; c = c.NextSibling {
			traverseForm(c)
		}
	}
	traverseForm(form)
	return hasPassword
}
