package service

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"serv00_keepalive/internal/domain/models"
)

// recordingRunner captures callback invocations instead of spawning
// processes.
type recordingRunner struct {
	commands []string
	err      error
}

func (r *recordingRunner) Run(_ context.Context, command string) (string, error) {
	r.commands = append(r.commands, command)
	return "", r.err
}

// panickingClient simulates a client fault for isolation tests.
type panickingClient struct {
	panicFor string
	attempt  *models.LoginAttempt
}

func (c *panickingClient) Login(_ context.Context, account models.Account) *models.LoginAttempt {
	if account.Username == c.panicFor {
		panic("client blew up")
	}
	return c.attempt
}

func newTestRunner(client *MockPanelClient, commands *recordingRunner) *Runner {
	logger := log.New()
	checker := NewChecker(logger, client, DefaultMarkerSet(), 0)
	return NewRunner(logger, checker, commands)
}

func TestRunAllNormalAndBanned(t *testing.T) {
	first := testAccount()
	second := models.Account{
		PanelURL: "https://panel3.serv00.com",
		Username: "user2",
		Password: "secret",
		OnBanned: "echo X",
	}

	client := new(MockPanelClient)
	client.On("Login", mock.Anything, first).Return(dashboardAttempt())
	client.On("Login", mock.Anything, second).Return(responseAttempt(`Konto zablokowane`))

	commands := &recordingRunner{}
	runner := newTestRunner(client, commands)

	summary := runner.RunAll(context.Background(), []models.Account{first, second})

	assert.Len(t, summary.Outcomes, 2)
	assert.Equal(t, models.StateNormal, summary.Outcomes[0].State)
	assert.Equal(t, models.StateBanned, summary.Outcomes[1].State)
	assert.Equal(t, []string{"echo X"}, commands.commands)
	assert.Equal(t, 1, summary.ExitCode())
}

func TestRunAllCallbackOnlyForBanned(t *testing.T) {
	accounts := []models.Account{
		{PanelURL: "https://panel1.serv00.com", Username: "ok", Password: "p", OnBanned: "echo ok"},
		{PanelURL: "https://panel2.serv00.com", Username: "rejected", Password: "p", OnBanned: "echo rejected"},
		{PanelURL: "https://panel3.serv00.com", Username: "down", Password: "p", OnBanned: "echo down"},
	}

	client := new(MockPanelClient)
	client.On("Login", mock.Anything, accounts[0]).Return(dashboardAttempt())
	client.On("Login", mock.Anything, accounts[1]).Return(responseAttempt(`Zaloguj się`))
	client.On("Login", mock.Anything, accounts[2]).Return(timeoutAttempt())

	commands := &recordingRunner{}
	runner := newTestRunner(client, commands)

	summary := runner.RunAll(context.Background(), accounts)

	assert.Len(t, summary.Outcomes, 3)
	assert.Empty(t, commands.commands, "callback must only fire for banned accounts")
	assert.Equal(t, 1, summary.ExitCode())
}

func TestRunAllNoCallbackWithoutCommand(t *testing.T) {
	account := testAccount() // no OnBanned configured

	client := new(MockPanelClient)
	client.On("Login", mock.Anything, account).Return(responseAttempt(`Konto zablokowane`))

	commands := &recordingRunner{}
	runner := newTestRunner(client, commands)

	summary := runner.RunAll(context.Background(), []models.Account{account})

	assert.Equal(t, models.StateBanned, summary.Outcomes[0].State)
	assert.Empty(t, commands.commands)
}

func TestRunAllCallbackFailureDoesNotStopRun(t *testing.T) {
	first := models.Account{PanelURL: "https://panel1.serv00.com", Username: "u1", Password: "p", OnBanned: "false"}
	second := models.Account{PanelURL: "https://panel2.serv00.com", Username: "u2", Password: "p"}

	client := new(MockPanelClient)
	client.On("Login", mock.Anything, first).Return(responseAttempt(`Konto zablokowane`))
	client.On("Login", mock.Anything, second).Return(dashboardAttempt())

	commands := &recordingRunner{err: assert.AnError}
	runner := newTestRunner(client, commands)

	summary := runner.RunAll(context.Background(), []models.Account{first, second})

	assert.Len(t, summary.Outcomes, 2)
	assert.Equal(t, models.StateNormal, summary.Outcomes[1].State)
	assert.Equal(t, []string{"false"}, commands.commands)
}

func TestRunAllIsolatesPanics(t *testing.T) {
	first := models.Account{PanelURL: "https://panel1.serv00.com", Username: "boom", Password: "p"}
	second := models.Account{PanelURL: "https://panel2.serv00.com", Username: "fine", Password: "p"}

	client := &panickingClient{panicFor: "boom", attempt: dashboardAttempt()}
	logger := log.New()
	checker := NewChecker(logger, client, DefaultMarkerSet(), 0)
	runner := NewRunner(logger, checker, &recordingRunner{})

	summary := runner.RunAll(context.Background(), []models.Account{first, second})

	assert.Len(t, summary.Outcomes, 2)
	assert.Equal(t, models.StateError, summary.Outcomes[0].State)
	assert.Contains(t, summary.Outcomes[0].Detail, "panic")
	assert.Equal(t, models.StateNormal, summary.Outcomes[1].State)
	assert.Equal(t, 0, summary.Count(models.StateBanned))
}

func TestRunSummaryExitCode(t *testing.T) {
	allNormal := &models.RunSummary{Outcomes: []models.AccountOutcome{
		{State: models.StateNormal},
		{State: models.StateNormal},
	}}
	assert.Equal(t, 0, allNormal.ExitCode())

	withError := &models.RunSummary{Outcomes: []models.AccountOutcome{
		{State: models.StateNormal},
		{State: models.StateError},
	}}
	assert.Equal(t, 1, withError.ExitCode())

	empty := &models.RunSummary{}
	assert.Equal(t, 0, empty.ExitCode())
}
