package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrGmailFilesRequired is returned when the credentials or token path is empty.
var ErrGmailFilesRequired = errors.New("gmail credentials and token files are required")

// GmailConfig points at an OAuth client file (as downloaded from the Google
// console) and a stored user token authorised for the gmail.send scope.
type GmailConfig struct {
	CredentialsFile string
	TokenFile       string
	// From is the default sender when Message.From is empty.
	From string
}

// Gmail is a Mail implementation backed by the Gmail REST API.
type Gmail struct {
	svc         *gmail.Service
	defaultFrom string
}

// NewGmail builds a Gmail sender. The stored token is refreshed automatically.
func NewGmail(ctx context.Context, cfg GmailConfig) (*Gmail, error) {
	if cfg.CredentialsFile == "" || cfg.TokenFile == "" {
		return nil, ErrGmailFilesRequired
	}

	creds, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(creds, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}

	raw, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail token: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("parse gmail token: %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, &tok)))
	if err != nil {
		return nil, err
	}

	return &Gmail{svc: svc, defaultFrom: cfg.From}, nil
}

// Send delivers a message as the authorised user.
func (g *Gmail) Send(ctx context.Context, msg Message) error {
	from, err := resolveSender(msg, g.defaultFrom)
	if err != nil {
		return err
	}

	_, err = g.svc.Users.Messages.
		Send("me", &gmail.Message{Raw: base64.RawURLEncoding.EncodeToString(compose(from, msg))}).
		Context(ctx).
		Do()

	return err
}

// Close implements io.Closer for interface compatibility.
func (g *Gmail) Close() error {
	return nil
}
