package notifier

import (
	"fmt"
	"time"
)

// OTPMessage builds the one-time-passcode mail. The stated lifetime comes
// from the caller's actual expiry policy, so the copy cannot contradict it.
func OTPMessage(code string, validity time.Duration) (subject, body string) {
	return "Your OTP Code",
		fmt.Sprintf("Your OTP code is %s. It will expire in %d minutes.", code, int(validity.Minutes()))
}

// ContactRelayMessage builds the mail relayed to the site owner from the
// contact form.
func ContactRelayMessage(name, email, message string) (subject, body string) {
	return "New Contact Us Message",
		fmt.Sprintf("Name: %s\nEmail: %s\nMessage: %s", name, email, message)
}

// ContactConfirmationMessage builds the acknowledgment sent back to the
// contact-form submitter.
func ContactConfirmationMessage(name string) (subject, body string) {
	return "Thank You for Contacting Us",
		fmt.Sprintf("Hi %s,\n\nThank you for contacting us! We have received your message and will get back to you soon.", name)
}
