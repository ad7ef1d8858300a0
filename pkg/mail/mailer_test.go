package mail

import (
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Host: "mail.example.org",
		Port: 587,
		From: "noreply@example.org",
		To:   "me@example.org",
	}
}

func TestRenderContainsHeadersAndBody(t *testing.T) {
	m, err := NewMailer(testConfig())
	require.NoError(t, err)

	body, err := m.render(Message{
		Name:    "  Ada Lovelace ",
		Email:   "ada@example.org",
		Message: "Hello there!\n\nSecond paragraph.",
	})
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "From: noreply@example.org\n")
	assert.Contains(t, text, "To: me@example.org\n")
	assert.Contains(t, text, "Reply-To: Ada Lovelace <ada@example.org>\n")
	assert.Contains(t, text, "Subject: Contact from Ada Lovelace\n")
	assert.Contains(t, text, "Second paragraph.")
}

func TestRenderStripsHeaderInjection(t *testing.T) {
	m, err := NewMailer(testConfig())
	require.NoError(t, err)

	body, err := m.render(Message{
		Name:    "Eve\r\nBcc: everyone@example.org",
		Email:   "eve@example.org",
		Message: "hi",
	})
	require.NoError(t, err)

	assert.NotContains(t, string(body), "Bcc:")
}

func TestSendUsesPlainAuthOnlyWithUser(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotAuth smtp.Auth

	m, err := NewMailer(testConfig())
	require.NoError(t, err)
	m.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo = addr, auth, from, to
		return nil
	}

	require.NoError(t, m.Send(Message{Name: "Ada", Email: "ada@example.org", Message: "hi"}))

	assert.Equal(t, "mail.example.org:587", gotAddr)
	assert.Nil(t, gotAuth, "no credentials configured means no auth")
	assert.Equal(t, "noreply@example.org", gotFrom)
	assert.Equal(t, []string{"me@example.org"}, gotTo)

	m.cfg.User = "mailer"
	m.cfg.Password = "secret"
	require.NoError(t, m.Send(Message{Name: "Ada", Email: "ada@example.org", Message: "hi"}))
	assert.NotNil(t, gotAuth)
}
