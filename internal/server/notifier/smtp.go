package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// SMTPNotifier delivers mail over a plain SMTP connection, upgrading to TLS
// via STARTTLS when the server offers it. Port 465 connects over implicit TLS.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send delivers a single text message. The context deadline bounds the dial
// and every SMTP round-trip after it.
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {

	addr := net.JoinHostPort(n.host, strconv.Itoa(n.port))
	msg := buildMessage(n.from, to, subject, body)

	c, err := n.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer c.Close()

	if n.username != "" {
		auth := smtp.PlainAuth("", n.username, n.password, n.host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(n.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}

	return c.Quit()
}

func (n *SMTPNotifier) dial(ctx context.Context, addr string) (*smtp.Client, error) {
	d := &net.Dialer{}

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	// the deadline must cover the whole SMTP conversation, not just the dial
	if dl, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(dl); err != nil {
			conn.Close()
			return nil, err
		}
	}

	if n.port == 465 {
		conn = tls.Client(conn, &tls.Config{ServerName: n.host})
	}

	c, err := smtp.NewClient(conn, n.host)
	if err != nil {
		conn.Close()
		return nil, err
	}

	if n.port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: n.host}); err != nil {
				c.Close()
				return nil, err
			}
		}
	}

	return c, nil
}

func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return b.String()
}
