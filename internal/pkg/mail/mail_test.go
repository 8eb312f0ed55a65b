package mail

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	t.Run("PlainText", func(t *testing.T) {
		// Act
		raw := string(compose("noreply@example.com", Message{
			To:       []string{"alice@example.com"},
			Bcc:      []string{"audit@example.com"},
			Subject:  "Your code",
			TextBody: "123456",
		}))

		// Assert
		assert.Contains(t, raw, "From: noreply@example.com\r\n")
		assert.Contains(t, raw, "To: alice@example.com\r\n")
		assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8")
		assert.NotContains(t, raw, "audit@example.com")
		assert.True(t, strings.HasSuffix(raw, "\r\n\r\n123456"))
	})

	t.Run("Multipart", func(t *testing.T) {
		raw := string(compose("a@example.com", Message{To: []string{"b@example.com"}, TextBody: "t", HTMLBody: "<b>h</b>"}))

		assert.Contains(t, raw, "multipart/alternative; boundary=otpauth-boundary-")
		assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8\r\n\r\n<b>h</b>")
	})
}

func TestSMTP(t *testing.T) {
	t.Run("RequiresHost", func(t *testing.T) {
		_, err := NewSMTP(SMTPConfig{})
		assert.ErrorIs(t, err, ErrSMTPHostPortRequired)
	})

	t.Run("NoRecipients", func(t *testing.T) {
		s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 25, From: "a@example.com"})
		require.NoError(t, err)

		assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrNoRecipients)
	})

	t.Run("NoSender", func(t *testing.T) {
		s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 25})
		require.NoError(t, err)

		assert.ErrorIs(t, s.Send(context.Background(), Message{To: []string{"b@example.com"}}), ErrNoSender)
	})

	t.Run("Delivers", func(t *testing.T) {
		// Arrange
		s, err := NewSMTP(SMTPConfig{Host: "mail.local", Port: 587, Username: "u", Password: "p", From: "otp@example.com"})
		require.NoError(t, err)

		var gotAddr, gotFrom string
		var gotTo []string
		var gotRaw []byte
		s.send = func(addr string, a smtp.Auth, from string, to []string, raw []byte) error {
			assert.NotNil(t, a)
			gotAddr, gotFrom, gotTo, gotRaw = addr, from, to, raw
			return nil
		}

		// Act
		err = s.Send(context.Background(), Message{To: []string{"b@example.com"}, Bcc: []string{"c@example.com"}, Subject: "Code", TextBody: "123456"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "mail.local:587", gotAddr)
		assert.Equal(t, "otp@example.com", gotFrom)
		assert.Equal(t, []string{"b@example.com", "c@example.com"}, gotTo)
		assert.NotContains(t, string(gotRaw), "c@example.com")
		assert.Contains(t, string(gotRaw), "Subject: Code")
	})
}

func TestNewGmail(t *testing.T) {
	_, err := NewGmail(context.Background(), GmailConfig{})
	assert.ErrorIs(t, err, ErrGmailFilesRequired)

	_, err = NewGmail(context.Background(), GmailConfig{CredentialsFile: "/nonexistent/c.json", TokenFile: "/nonexistent/t.json"})
	assert.Error(t, err)
}
