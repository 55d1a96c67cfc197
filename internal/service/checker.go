package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"serv00_keepalive/internal/domain/adaptors"
	"serv00_keepalive/internal/domain/models"
	"serv00_keepalive/internal/pkg/metrics"
)

// retryDelay is the pause between attempts on a transient failure. It must
// stay above zero so retries never hammer a panel.
const retryDelay = 3 * time.Second

// Checker resolves one account to a terminal state, retrying transient
// failures up to the configured bound.
type Checker struct {
	log        *log.Logger
	client     adaptors.PanelClient
	markers    MarkerSet
	retryCount int
	delay      time.Duration
}

func NewChecker(logger *log.Logger, client adaptors.PanelClient, markers MarkerSet, retryCount int) *Checker {
	return &Checker{
		log:        logger,
		client:     client,
		markers:    markers,
		retryCount: retryCount,
		delay:      retryDelay,
	}
}

// CheckAccount performs up to retryCount+1 login attempts. The first
// normal/banned/login-failed classification is authoritative and returned
// immediately; only error-classified attempts are retried. If every attempt
// errors, the last error's detail is kept.
func (c *Checker) CheckAccount(ctx context.Context, account models.Account) models.AccountOutcome {
	var state models.AccountState
	var detail string

	attempts := 0
	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.log.WithFields(log.Fields{
				`panel`:   account.PanelID(),
				`user`:    account.Username,
				`attempt`: i + 1,
			}).Debugf(`retrying in %s`, c.delay)

			if ctx.Err() != nil {
				return models.AccountOutcome{
					Account:  account,
					State:    models.StateError,
					Detail:   ctx.Err().Error(),
					Attempts: attempts,
				}
			}
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return models.AccountOutcome{
					Account:  account,
					State:    models.StateError,
					Detail:   ctx.Err().Error(),
					Attempts: attempts,
				}
			}
		}

		attempts++
		attempt := c.client.Login(ctx, account)
		state, detail = c.markers.Classify(attempt)
		metrics.LoginAttemptsTotal.WithLabelValues(string(state)).Inc()

		if state.Terminal() {
			break
		}
		c.log.WithFields(log.Fields{
			`panel`: account.PanelID(),
			`user`:  account.Username,
		}).Debugf(`attempt %d failed: %s`, attempts, detail)
	}

	return models.AccountOutcome{
		Account:  account,
		State:    state,
		Detail:   detail,
		Attempts: attempts,
	}
}
