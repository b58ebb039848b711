// Package email delivers notifications over SMTP.
package email

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/gosuda/coperto/internal/notify"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Timeout bounds one delivery from dial to QUIT. Zero means 10s.
	Timeout time.Duration
}

// sendFunc matches (*mail.Client).DialAndSendWithContext.
type sendFunc func(ctx context.Context, msgs ...*mail.Msg) error

type Sender struct {
	cfg  Config
	send sendFunc
	now  func() time.Time
}

var _ notify.Sender = (*Sender)(nil)

func New(cfg Config) (*Sender, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithDialContextFunc(deadlineDialer(cfg.Timeout)),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("email.New: %w", err)
	}
	return &Sender{cfg: cfg, send: client.DialAndSendWithContext, now: time.Now}, nil
}

// deadlineDialer puts a hard deadline on the whole SMTP conversation: the
// earlier of the dial context's deadline and now+timeout. It covers the
// greeting read, which go-mail performs without a deadline of its own.
func deadlineDialer(timeout time.Duration) mail.DialContextFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		deadline := time.Now().Add(timeout)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

func (s *Sender) Channel() string { return notify.ChannelEmail }

func (s *Sender) Send(ctx context.Context, to string, msg notify.Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("email.Sender.Send: %w", err)
	}
	if strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("email.Sender.Send: invalid recipient %q", to)
	}

	m, err := s.build(to, msg)
	if err != nil {
		return fmt.Errorf("email.Sender.Send: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if err := s.send(ctx, m); err != nil {
		return fmt.Errorf("email.Sender.Send: %w", err)
	}
	return nil
}

// build renders a plain-text UTF-8 message.
func (s *Sender) build(to string, msg notify.Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("from %q: %w", s.cfg.From, err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("to %q: %w", to, err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(s.now())
	m.SetBodyString(mail.TypeTextPlain, plainText(msg.Body))
	return m, nil
}

// plainText folds every line ending to "\n". The MIME writer emits CRLF
// itself, so a body that already carries "\r\n" must not be doubled.
func plainText(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.ReplaceAll(body, "\r", "\n")
}
