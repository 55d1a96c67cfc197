package adaptors

import (
	"context"

	"serv00_keepalive/internal/domain/models"
)

// PanelClient performs one login exchange against an account's panel.
// Transport failures are reported inside the LoginAttempt, not as errors.
type PanelClient interface {
	Login(ctx context.Context, account models.Account) *models.LoginAttempt
}
