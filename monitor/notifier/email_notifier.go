// Copyright 2025 The Hostwatch Authors, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"hostwatch/monitor/alert"
	"hostwatch/pkg/log"
)

// ImplicitTLSPort is the SMTPS port; any other port upgrades with STARTTLS.
const ImplicitTLSPort = 465

var (
	_ Notifier = (*EmailNotifier)(nil)
	_ Prober   = (*EmailNotifier)(nil)
)

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Timeout  time.Duration
}

// EmailNotifier sends reports as plain-text mail over SMTP.
type EmailNotifier struct {
	cfg    EmailConfig
	now    func() time.Time
	logger *log.Logger
}

func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	if cfg.Username == "" {
		cfg.Username = cfg.From
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &EmailNotifier{cfg: cfg, now: time.Now, logger: log.GetLogger("email-notifier")}
}

func (n *EmailNotifier) Name() string {
	return "email"
}

func (n *EmailNotifier) addr() string {
	return net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
}

func (n *EmailNotifier) Deliver(ctx context.Context, r alert.Report) error {
	msg := BuildMessage(n.cfg.From, n.cfg.To, r, n.now())

	c, err := n.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, rcpt := range n.cfg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp end of data: %w", err)
	}
	if err := c.Quit(); err != nil {
		n.logger.Verbosef("smtp QUIT: %v", err)
	}

	n.logger.Infof("email sent: %s (%s)", r.Subject, r.ID)
	return nil
}

// Probe connects and authenticates without sending mail.
func (n *EmailNotifier) Probe(ctx context.Context) error {
	c, err := n.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Quit()
}

// dial returns an authenticated client. Port 465 speaks TLS from the first
// byte, anything else must offer STARTTLS.
func (n *EmailNotifier) dial(ctx context.Context) (*smtp.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	tlsConfig := &tls.Config{ServerName: n.cfg.Host}
	var (
		conn net.Conn
		err  error
	)
	if n.cfg.Port == ImplicitTLSPort {
		d := &tls.Dialer{Config: tlsConfig}
		conn, err = d.DialContext(ctx, "tcp", n.addr())
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", n.addr())
	}
	if err != nil {
		return nil, fmt.Errorf("dial smtp %s: %w", n.addr(), err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp handshake: %w", err)
	}

	if n.cfg.Port != ImplicitTLSPort {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			c.Close()
			return nil, fmt.Errorf("smtp server %s does not offer STARTTLS", n.addr())
		}
		if err := c.StartTLS(tlsConfig); err != nil {
			c.Close()
			return nil, fmt.Errorf("smtp STARTTLS: %w", err)
		}
	}

	if n.cfg.Password != "" {
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
		if err := c.Auth(auth); err != nil {
			c.Close()
			return nil, fmt.Errorf("smtp auth: %w", err)
		}
	}
	return c, nil
}

// BuildMessage renders r as an RFC 5322 message with a plain-text body.
func BuildMessage(from string, to []string, r alert.Report, date time.Time) []byte {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}

	var b bytes.Buffer
	header := func(k, v string) {
		fmt.Fprintf(&b, "%s: %s\r\n", k, v)
	}
	header("From", from)
	header("To", strings.Join(to, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", r.Subject))
	header("Date", date.Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", id, messageDomain(from)))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(r.Body, "\r\n", "\n")
	for _, line := range strings.Split(body, "\n") {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	return b.Bytes()
}

func messageDomain(from string) string {
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		return strings.TrimSuffix(from[i+1:], ">")
	}
	return "hostwatch"
}
