package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"serv00_keepalive/internal/domain/adaptors"
	"serv00_keepalive/internal/domain/models"
	"serv00_keepalive/internal/pkg/logging"
	"serv00_keepalive/internal/pkg/metrics"
)

// Runner walks the configured account list sequentially, resolves each
// account through the Checker and fires the banned callback when needed.
// One account's failure never blocks the accounts after it.
type Runner struct {
	log      *log.Logger
	checker  *Checker
	commands adaptors.CommandRunner
}

func NewRunner(logger *log.Logger, checker *Checker, commands adaptors.CommandRunner) *Runner {
	return &Runner{
		log:      logger,
		checker:  checker,
		commands: commands,
	}
}

// RunAll processes every account exactly once and returns the aggregated
// summary. Accounts are checked strictly one after another: panels may
// treat concurrent logins from one operator as abuse.
func (r *Runner) RunAll(ctx context.Context, accounts []models.Account) *models.RunSummary {
	entry := r.log.WithField(`run_id`, uuid.NewString())
	start := time.Now()

	entry.Info(strings.Repeat(`=`, 50))
	entry.Infof(`checking %d account(s)...`, len(accounts))
	entry.Info(strings.Repeat(`=`, 50))

	summary := &models.RunSummary{}
	for _, account := range accounts {
		outcome := r.checkOne(ctx, account)
		r.report(entry, outcome)
		r.invokeCallback(ctx, entry, outcome)
		metrics.AccountsTotal.WithLabelValues(string(outcome.State)).Inc()
		summary.Append(outcome)
	}

	metrics.RunDuration.Set(time.Since(start).Seconds())

	entry.Info(strings.Repeat(`=`, 50))
	entry.Infof(`done: %d normal, %d banned, %d failed`,
		summary.Count(models.StateNormal),
		summary.Count(models.StateBanned),
		summary.Count(models.StateLoginFailed)+summary.Count(models.StateError))
	entry.Info(strings.Repeat(`=`, 50))

	return summary
}

// checkOne isolates a single account: a panic inside the check becomes an
// error outcome instead of taking the run down.
func (r *Runner) checkOne(ctx context.Context, account models.Account) (outcome models.AccountOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithFields(log.Fields{
				`panel`: account.PanelID(),
				`user`:  account.Username,
				`error`: fmt.Sprintf(`%v`, rec),
			}).Error(`panic recovered while checking account`)
			outcome = models.AccountOutcome{
				Account: account,
				State:   models.StateError,
				Detail:  fmt.Sprintf(`panic: %v`, rec),
			}
		}
	}()

	r.log.Infof(`[%s] checking account %s...`, account.PanelID(), account.Username)
	return r.checker.CheckAccount(ctx, account)
}

func (r *Runner) report(entry *log.Entry, outcome models.AccountOutcome) {
	msg := fmt.Sprintf(`[%s] %s`, outcome.Account.PanelID(), outcome.Account.Username)
	if outcome.Detail != "" {
		msg += fmt.Sprintf(` (%s)`, outcome.Detail)
	}

	fields := entry.WithFields(log.Fields{
		`state`:    string(outcome.State),
		`attempts`: outcome.Attempts,
	})

	switch outcome.State {
	case models.StateNormal:
		fields.Info(logging.Success(msg + `: account active`))
	case models.StateBanned:
		fields.Warn(logging.Failure(msg + `: account banned`))
	case models.StateLoginFailed:
		fields.Warn(logging.Warning(msg + `: login rejected`))
	default:
		fields.Error(logging.Failure(msg + `: check failed`))
	}
}

// invokeCallback runs the operator's on_banned command. Callback problems
// are diagnostics only; they never propagate.
func (r *Runner) invokeCallback(ctx context.Context, entry *log.Entry, outcome models.AccountOutcome) {
	if outcome.State != models.StateBanned || outcome.Account.OnBanned == "" {
		return
	}

	entry.Infof(`running on_banned command: %s`, outcome.Account.OnBanned)
	output, err := r.commands.Run(ctx, outcome.Account.OnBanned)
	if err != nil {
		metrics.CallbacksTotal.WithLabelValues(`error`).Inc()
		entry.WithError(err).Warn(`on_banned command failed`)
		if strings.TrimSpace(output) != "" {
			entry.Warnf(`command output: %s`, strings.TrimSpace(output))
		}
		return
	}

	metrics.CallbacksTotal.WithLabelValues(`ok`).Inc()
	if strings.TrimSpace(output) != "" {
		entry.Debugf(`command output: %s`, strings.TrimSpace(output))
	}
}
