package services

import (
	"context"

	"github.com/linkup-social/linkup/internal/common"
	"github.com/linkup-social/linkup/internal/logging"
	"github.com/linkup-social/linkup/internal/server/notifier"
)

// ContactService relays contact-form submissions to the site owner and
// acknowledges the sender. Unlike OTP mail, delivery failure here fails the
// operation: the submitter must know the message did not go through.
type ContactService struct {
	notifier notifier.Notifier
	owner    string
	logger   logging.Logger
}

func NewContactService(n notifier.Notifier, owner string, logger logging.Logger) *ContactService {
	return &ContactService{
		notifier: n,
		owner:    owner,
		logger:   logger.With("module", "contact_service"),
	}
}

// Relay forwards the message to the owner, then confirms receipt to the
// sender.
func (s *ContactService) Relay(ctx context.Context, name, email, message string) error {

	subject, body := notifier.ContactRelayMessage(name, email, message)
	if err := s.notifier.Send(ctx, s.owner, subject, body); err != nil {
		s.logger.Error(ctx, "contact relay failed", "error", err)
		return common.ErrInternal
	}

	subject, body = notifier.ContactConfirmationMessage(name)
	if err := s.notifier.Send(ctx, email, subject, body); err != nil {
		s.logger.Error(ctx, "contact confirmation failed", "error", err)
		return common.ErrInternal
	}

	return nil
}
