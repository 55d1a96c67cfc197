package models

import "strings"

// Account is one panel login to keep alive. It is built from configuration
// at startup and never mutated during a run.
type Account struct {
	PanelURL string
	Username string
	Password string
	// OnBanned is an optional shell command executed when the account
	// resolves to StateBanned.
	OnBanned string
}

// PanelID returns a short identifier for log lines, e.g. "panel12" for
// https://panel12.serv00.com.
func (a Account) PanelID() string {
	host := a.PanelURL
	if idx := strings.Index(host, "//"); idx != -1 {
		host = host[idx+2:]
	}
	if idx := strings.IndexAny(host, "./"); idx != -1 {
		host = host[:idx]
	}
	if host == "" {
		return a.PanelURL
	}
	return host
}
