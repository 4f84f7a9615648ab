// Package notify forwards lead form submissions to a Telegram chat through the
// Bot API.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/go-resty/resty/v2"
)

// DefaultAPIURL is the public Telegram Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// ErrNotConfigured is returned when no bot token or chat is set.
var ErrNotConfigured = errors.New("telegram notifier not configured")

// Lead is one contact form submission.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Channel     string    `json:"channel"`
	Message     string    `json:"message,omitempty"`
	Followers   string    `json:"followers,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// APIError is a failed Bot API call.
type APIError struct {
	Description string
	StatusCode  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API %d: %s", e.StatusCode, e.Description)
}

// Notifier sends messages to one Telegram chat.
type Notifier struct {
	http    *resty.Client
	logger  *slog.Logger
	token   string
	chatID  string
	retries uint
	delay   time.Duration
}

// Option configures a Notifier.
type Option func(*config)

type config struct {
	logger  *slog.Logger
	apiURL  string
	timeout time.Duration
	retries uint
	delay   time.Duration
}

// WithAPIURL overrides the Bot API base URL.
func WithAPIURL(u string) Option {
	return func(c *config) { c.apiURL = u }
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithRetry sets the number of attempts and the base delay between them.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *config) {
		c.retries = attempts
		c.delay = delay
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// New creates a Notifier for the given bot token and chat ID.
func New(token, chatID string, opts ...Option) *Notifier {
	cfg := &config{
		logger:  slog.Default(),
		apiURL:  DefaultAPIURL,
		timeout: 10 * time.Second,
		retries: 3,
		delay:   300 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.retries == 0 {
		cfg.retries = 1
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.apiURL, "/")).
		SetTimeout(cfg.timeout).
		SetHeader("Content-Type", "application/json")

	return &Notifier{
		http:    client,
		logger:  cfg.logger,
		token:   token,
		chatID:  chatID,
		retries: cfg.retries,
		delay:   cfg.delay,
	}
}

// Configured reports whether the notifier has credentials to send with.
func (n *Notifier) Configured() bool {
	return n.token != "" && n.chatID != ""
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	Description string `json:"description"`
	OK          bool   `json:"ok"`
}

// SendLead posts a formatted lead to the chat. Network errors, 429 and 5xx
// responses are retried; other failures are returned immediately.
func (n *Notifier) SendLead(ctx context.Context, lead Lead) error {
	if !n.Configured() {
		return ErrNotConfigured
	}

	body := sendMessageRequest{
		ChatID:                n.chatID,
		Text:                  FormatLead(lead),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}

	var lastErr error
	err := retry.Do(
		func() error {
			lastErr = n.send(ctx, body)
			return lastErr
		},
		retry.Context(ctx),
		retry.Attempts(n.retries),
		retry.Delay(n.delay),
		retry.MaxJitter(n.delay/2),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(attempt uint, err error) {
			n.logger.DebugContext(ctx, "retrying telegram send", "attempt", attempt+1, "lead", lead.ID, "error", err)
		}),
	)
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		n.logger.WarnContext(ctx, "lead notification failed", "lead", lead.ID, "error", lastErr)
		return lastErr
	}

	n.logger.InfoContext(ctx, "lead notification sent", "lead", lead.ID)
	return nil
}

func (n *Notifier) send(ctx context.Context, body sendMessageRequest) error {
	var result apiResponse
	resp, err := n.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post("/bot" + n.token + "/sendMessage")
	if err != nil {
		// The request URL embeds the token; keep it out of the error.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("telegram send: %w", err)
	}
	if resp.IsError() || !result.OK {
		return &APIError{StatusCode: resp.StatusCode(), Description: result.Description}
	}
	return nil
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// FormatLead renders a lead as Telegram HTML.
func FormatLead(lead Lead) string {
	var b strings.Builder
	b.WriteString("<b>New lead</b>\n")
	line := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "<b>%s:</b> %s\n", label, html.EscapeString(value))
	}
	line("ID", lead.ID)
	line("Name", lead.Name)
	line("Email", lead.Email)
	line("Channel", lead.Channel)
	line("Followers", lead.Followers)
	line("Message", lead.Message)
	if !lead.SubmittedAt.IsZero() {
		line("Submitted", lead.SubmittedAt.UTC().Format(time.RFC3339))
	}
	return strings.TrimRight(b.String(), "\n")
}
