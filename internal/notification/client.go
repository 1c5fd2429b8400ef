package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	source    = "maintenance-tracker-api"
	userAgent = "maintenance-tracker-api/1.0"

	maxMessageLength = 1000
	maxSubjectLength = 200
)

// NotificationLevel represents the severity level of a notification
type NotificationLevel string

const (
	LevelInfo     NotificationLevel = "info"
	LevelWarning  NotificationLevel = "warning"
	LevelError    NotificationLevel = "error"
	LevelCritical NotificationLevel = "critical"
)

// Notifier is an interface for sending notifications with context support
type Notifier interface {
	SendNotification(notification Notification) error
	SendNotificationWithContext(ctx context.Context, notification Notification) error
	IsHealthy(ctx context.Context) bool
}

// NotificationConfig holds configuration for the notification client
type NotificationConfig struct {
	URL            string
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	MaxPayloadSize int64
}

// DefaultConfig returns a default configuration for the notification client
func DefaultConfig(url string) NotificationConfig {
	return NotificationConfig{
		URL:            url,
		Timeout:        10 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
		MaxPayloadSize: 1024 * 1024, // 1MB
	}
}

// Notification represents the payload for the notification service
type Notification struct {
	Level     NotificationLevel `json:"level"`
	Subject   string            `json:"subject,omitempty"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp,omitempty"`
	Source    string            `json:"source,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the notification is valid
func (n *Notification) Validate() error {
	if n.Level == "" {
		return fmt.Errorf("notification level is required")
	}
	if n.Message == "" {
		return fmt.Errorf("notification message is required")
	}
	if len(n.Message) > maxMessageLength {
		return fmt.Errorf("notification message too long (max %d characters)", maxMessageLength)
	}
	if len(n.Subject) > maxSubjectLength {
		return fmt.Errorf("notification subject too long (max %d characters)", maxSubjectLength)
	}

	switch n.Level {
	case LevelInfo, LevelWarning, LevelError, LevelCritical:
		return nil
	default:
		return fmt.Errorf("invalid notification level: %s", n.Level)
	}
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(format string, args ...any) error {
	return &permanentError{err: fmt.Errorf(format, args...)}
}

// notificationClient is the webhook implementation of the Notifier interface
type notificationClient struct {
	config NotificationConfig
	client *http.Client
	logger *zap.Logger
}

// NewNotifier creates a new Notifier with default configuration
func NewNotifier(url string, logger *zap.Logger) Notifier {
	return NewNotifierWithConfig(DefaultConfig(url), logger)
}

// NewNotifierWithConfig creates a new Notifier with custom configuration
func NewNotifierWithConfig(config NotificationConfig, logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxPayloadSize <= 0 {
		config.MaxPayloadSize = DefaultConfig(config.URL).MaxPayloadSize
	}

	return &notificationClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.Named("notifier"),
	}
}

// SendNotification sends a notification to the notification service
func (c *notificationClient) SendNotification(notification Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()
	return c.SendNotificationWithContext(ctx, notification)
}

// SendNotificationWithContext posts the notification, retrying transient failures with a linear backoff.
func (c *notificationClient) SendNotificationWithContext(ctx context.Context, notification Notification) error {
	if err := notification.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}

	if notification.Timestamp.IsZero() {
		notification.Timestamp = time.Now().UTC()
	}
	if notification.Source == "" {
		notification.Source = source
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if int64(len(payload)) > c.config.MaxPayloadSize {
		return fmt.Errorf("notification payload too large: %d bytes (max %d)", len(payload), c.config.MaxPayloadSize)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
			c.logger.Debug("retrying notification",
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", c.config.RetryAttempts+1))
		}

		err := c.post(ctx, payload)
		if err == nil {
			return nil
		}
		lastErr = err
		c.logger.Warn("notification attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))

		var perm *permanentError
		if errors.As(err, &perm) || ctx.Err() != nil {
			return err
		}
	}

	return fmt.Errorf("failed to send notification after %d attempts: %w", c.config.RetryAttempts+1, lastErr)
}

func (c *notificationClient) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return permanent("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("notification service returned error status %d: %s", resp.StatusCode, string(body))
	case resp.StatusCode >= 400:
		return permanent("notification service rejected request with status %d: %s", resp.StatusCode, string(body))
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusNoContent:
		c.logger.Warn("unexpected status code from notification service", zap.Int("status", resp.StatusCode))
	}

	return nil
}

// IsHealthy checks if the notification service is reachable and not failing
func (c *notificationClient) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.URL+"/health", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}

type noopNotifier struct {
	logger *zap.Logger
}

// NewNoopNotifier returns a Notifier that only logs; it is used when no webhook URL is configured.
func NewNoopNotifier(logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &noopNotifier{logger: logger.Named("notifier")}
}

func (n *noopNotifier) SendNotification(notification Notification) error {
	return n.SendNotificationWithContext(context.Background(), notification)
}

func (n *noopNotifier) SendNotificationWithContext(_ context.Context, notification Notification) error {
	if err := notification.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}
	n.logger.Debug("notification dropped, no webhook configured",
		zap.String("level", string(notification.Level)),
		zap.String("subject", notification.Subject))
	return nil
}

func (n *noopNotifier) IsHealthy(context.Context) bool { return true }
