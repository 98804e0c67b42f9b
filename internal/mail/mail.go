package mail

import "context"

// Notifier delivers account-lifecycle emails. Implementations report delivery
// failure through the returned error; callers decide whether a failure is
// fatal for the surrounding operation.
type Notifier interface {
	// SendEmailConfirmation delivers the double-opt-in confirmation email
	// carrying the confirmation token.
	SendEmailConfirmation(ctx context.Context, email, token string) error

	// SendPasswordReset delivers the password-reset email carrying the reset
	// token. The recipient has 15 minutes to act on it.
	SendPasswordReset(ctx context.Context, email, token string) error
}
