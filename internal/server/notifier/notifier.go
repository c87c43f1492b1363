// Package notifier delivers messages (OTP codes, confirmations) to
// user-supplied addresses. The server treats delivery as an external,
// best-effort collaborator.
package notifier

import "context"

// Notifier sends a message to an address. Implementations must honor the
// context deadline; callers apply a bounded timeout so a stuck delivery never
// pins a request.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
