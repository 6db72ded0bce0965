// Package notification delivers confirmation e-mails.  The mailer is
// built once at startup and injected; a bad configuration fails New
// rather than the first send.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
	"golang.org/x/oauth2"

	"github.com/iliyamo/flight-seat-reservation/internal/config"
	"github.com/iliyamo/flight-seat-reservation/internal/service/ports"
)

var ErrMailConfig = errors.New("mail: invalid configuration")

// googleEndpoint is Google's OAuth2 endpoint, used for the Gmail
// refresh-token flow.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// New returns the mailer selected by cfg.Driver.
func New(cfg config.MailConfig, log logrus.FieldLogger) (ports.Mailer, error) {
	switch cfg.Driver {
	case "log":
		return &LogMailer{from: cfg.From, log: log}, nil
	case "smtp", "":
		return NewSMTPMailer(cfg, log)
	}
	return nil, fmt.Errorf("%w: unknown driver %q", ErrMailConfig, cfg.Driver)
}

// SMTPMailer sends through an SMTP relay, by default Gmail.  With
// xoauth2 auth the password is a short-lived access token minted from a
// stored refresh token.
type SMTPMailer struct {
	cfg    config.MailConfig
	tokens oauth2.TokenSource
	log    logrus.FieldLogger
}

func NewSMTPMailer(cfg config.MailConfig, log logrus.FieldLogger) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" || cfg.Port <= 0 {
		return nil, fmt.Errorf("%w: SMTP host and port are required", ErrMailConfig)
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: sender address is required", ErrMailConfig)
	}
	m := &SMTPMailer{cfg: cfg, log: log}
	switch cfg.Auth {
	case "plain", "":
		if cfg.Username == "" || cfg.Password == "" {
			return nil, fmt.Errorf("%w: SMTP_USER and SMTP_PASSWORD are required", ErrMailConfig)
		}
	case "xoauth2":
		if cfg.Username == "" || cfg.OAuthClientID == "" || cfg.OAuthClientSecret == "" || cfg.OAuthRefreshToken == "" {
			return nil, fmt.Errorf("%w: xoauth2 needs user, client id, client secret and refresh token", ErrMailConfig)
		}
		oc := &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			Endpoint:     googleEndpoint,
		}
		// ReuseTokenSource refreshes only when the cached token expires.
		m.tokens = oauth2.ReuseTokenSource(nil,
			oc.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.OAuthRefreshToken}))
	default:
		return nil, fmt.Errorf("%w: unknown SMTP auth %q", ErrMailConfig, cfg.Auth)
	}
	return m, nil
}

func (m *SMTPMailer) clientOptions() ([]mail.Option, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithUsername(m.cfg.Username),
	}
	if m.tokens != nil {
		tok, err := m.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("oauth2 token: %w", err)
		}
		return append(opts, mail.WithSMTPAuth(mail.SMTPAuthXOAUTH2), mail.WithPassword(tok.AccessToken)), nil
	}
	return append(opts, mail.WithSMTPAuth(mail.SMTPAuthPlain), mail.WithPassword(m.cfg.Password)), nil
}

// buildMsg turns a MailMessage into a go-mail message with an HTML body
// and a plain-text alternative.
func buildMsg(from string, in ports.MailMessage) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := msg.To(in.To); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	msg.Subject(in.Subject)
	msg.SetBodyString(mail.TypeTextHTML, in.HTML)
	if in.Text != "" {
		msg.AddAlternativeString(mail.TypeTextPlain, in.Text)
	}
	return msg, nil
}

// Send dials the relay and delivers one message.  ctx bounds the whole
// exchange.
func (m *SMTPMailer) Send(ctx context.Context, in ports.MailMessage) error {
	msg, err := buildMsg(m.cfg.From, in)
	if err != nil {
		return err
	}
	opts, err := m.clientOptions()
	if err != nil {
		return err
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	m.log.WithField("to", in.To).Debug("mail sent")
	return nil
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	from string
	log  logrus.FieldLogger
}

func (m *LogMailer) Send(ctx context.Context, in ports.MailMessage) error {
	if _, err := buildMsg(m.from, in); err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{
		"to":      in.To,
		"subject": in.Subject,
	}).Info("mail (log driver)\n" + in.Text)
	return nil
}
