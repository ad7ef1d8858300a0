package mail

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const messageTemplate = `From: {{ .From }}
To: {{ .To }}
Reply-To: {{ .ReplyTo }}
Subject: Contact from {{ .Name | trim }}

{{ .Message | trim }}

--
sent {{ .SentAt }} via the contact form
`

// Config holds the SMTP connection and addressing parameters.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

// Message is one contact-form submission.
type Message struct {
	Name    string
	Email   string
	Message string
}

// Mailer renders and delivers contact-form messages over SMTP.
type Mailer struct {
	cfg  Config
	tpl  *template.Template
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg Config) (*Mailer, error) {
	tpl, err := template.New("contact").Funcs(sprig.TxtFuncMap()).Parse(messageTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse mail template")
	}

	return &Mailer{
		cfg:  cfg,
		tpl:  tpl,
		send: smtp.SendMail,
	}, nil
}

// Send renders the message and hands it to the configured SMTP host.
func (m *Mailer) Send(msg Message) error {
	body, err := m.render(msg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	log.WithFields(log.Fields{"host": addr, "to": m.cfg.To}).
		Info("sending contact mail")

	if err := m.send(addr, auth, m.cfg.From, []string{m.cfg.To}, body); err != nil {
		return errors.Wrapf(err, "failed to send mail via %q", addr)
	}
	return nil
}

func (m *Mailer) render(msg Message) ([]byte, error) {
	data := struct {
		From, To, ReplyTo, Name, Message, SentAt string
	}{
		From:    m.cfg.From,
		To:      m.cfg.To,
		ReplyTo: fmt.Sprintf("%s <%s>", sanitizeHeader(msg.Name), sanitizeHeader(msg.Email)),
		Name:    sanitizeHeader(msg.Name),
		Message: msg.Message,
		SentAt:  time.Now().Format(time.RFC3339),
	}

	buf := &bytes.Buffer{}
	if err := m.tpl.Execute(buf, data); err != nil {
		return nil, errors.Wrap(err, "failed to render mail body")
	}
	return buf.Bytes(), nil
}

// sanitizeHeader strips CR/LF so user input cannot inject mail headers.
func sanitizeHeader(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.ReplaceAll(value, "\n", " ")
}
