package mail

import (
	"context"
	"errors"

	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
)

// ErrMailerDisabled is returned by the disabled mailer; layouts stay in the
// pending queue until delivery is configured.
var ErrMailerDisabled = errors.New("mail delivery is not configured")

type disabledMailer struct{}

// NewDisabledMailer returns a Mailer that rejects every send. Used when the
// Gmail credentials are absent so the rest of the pipeline still runs.
func NewDisabledMailer() portssvc.Mailer {
	return disabledMailer{}
}

func (disabledMailer) SendWithAttachment(context.Context, string, string, string, string, []byte) error {
	return ErrMailerDisabled
}
