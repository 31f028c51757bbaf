package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	goption "google.golang.org/api/option"
)

// defaultQuery matches the transaction alert mails banks send. Callers can
// override it with GMAIL_QUERY when their bank words things differently.
const defaultQuery = `("debited" OR "credited" OR "transaction alert")`

// Message is a bank notification mail reduced to what ingestion needs.
type Message struct {
	ID       string
	Snippet  string
	Received time.Time
}

// Client reads bank notification mails over the Gmail API with a stored
// OAuth token.
type Client struct {
	oauthCfg  *oauth2.Config
	tokenFile string
	query     string
}

// NewFromEnv creates a Gmail client from environment variables.
// Required: GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE.
// Optional: GOOGLE_OAUTH_TOKEN_FILE (default "token.json"),
// GOOGLE_OAUTH_REDIRECT_URL, GMAIL_QUERY.
func NewFromEnv() (*Client, error) {
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))

	var b []byte
	var err error
	switch {
	case clientJSON != "":
		b = []byte(clientJSON)
	case clientFile != "":
		b, err = os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	default:
		return nil, errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
	}

	cfg, err := google.ConfigFromJSON(b, gmailapi.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	if redirect := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_REDIRECT_URL")); redirect != "" {
		cfg.RedirectURL = redirect
	}

	tokenFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"))
	if tokenFile == "" {
		tokenFile = "token.json"
	}

	query := strings.TrimSpace(os.Getenv("GMAIL_QUERY"))
	if query == "" {
		query = defaultQuery
	}

	return &Client{
		oauthCfg:  cfg,
		tokenFile: tokenFile,
		query:     query,
	}, nil
}

// AuthURL returns the consent URL to start the OAuth flow.
func (c *Client) AuthURL(state string) string {
	return c.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and persists it.
func (c *Client) Exchange(ctx context.Context, code string) error {
	tok, err := c.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}
	if err := saveToken(c.tokenFile, tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	slog.InfoContext(ctx, "Stored Gmail OAuth token", "file", c.tokenFile)
	return nil
}

// HasToken reports whether a stored token exists, so callers can tell an
// unauthorized setup apart from an API failure.
func (c *Client) HasToken() bool {
	_, err := loadToken(c.tokenFile)
	return err == nil
}

// ListBankMessages returns bank notification mails received after since,
// newest first as Gmail returns them.
func (c *Client) ListBankMessages(ctx context.Context, since time.Time) ([]Message, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	query := c.query
	if !since.IsZero() {
		// Gmail's after: operator is date-granular in the account timezone.
		query = fmt.Sprintf("%s after:%s", c.query, since.Format("2006/01/02"))
	}

	list, err := svc.Users.Messages.List("me").Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]Message, 0, len(list.Messages))
	for _, ref := range list.Messages {
		full, err := svc.Users.Messages.Get("me", ref.Id).Format("minimal").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("get message %s: %w", ref.Id, err)
		}

		received := time.UnixMilli(full.InternalDate)
		// after: is only date-granular, re-filter to the exact instant
		if !since.IsZero() && !received.After(since) {
			continue
		}

		messages = append(messages, Message{
			ID:       full.Id,
			Snippet:  full.Snippet,
			Received: received,
		})
	}

	slog.InfoContext(ctx, "Listed bank messages",
		"matched", len(list.Messages),
		"kept", len(messages))

	return messages, nil
}

func (c *Client) service(ctx context.Context) (*gmailapi.Service, error) {
	tok, err := loadToken(c.tokenFile)
	if err != nil {
		return nil, fmt.Errorf("load token (run oauth-init first): %w", err)
	}

	httpClient := c.oauthCfg.Client(ctx, tok)
	svc, err := gmailapi.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}
	return svc, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, err
	}
	return &tok, nil
}
