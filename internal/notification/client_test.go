package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fastConfig(url string) NotificationConfig {
	config := DefaultConfig(url)
	config.RetryDelay = 10 * time.Millisecond
	return config
}

func TestNotification_Validate(t *testing.T) {
	tests := []struct {
		name          string
		notification  Notification
		errorContains string
	}{
		{
			name: "valid notification",
			notification: Notification{
				Level:   LevelWarning,
				Subject: "PC-0042",
				Message: "Maintenance overdue",
			},
		},
		{
			name:          "missing level",
			notification:  Notification{Message: "Test message"},
			errorContains: "level is required",
		},
		{
			name:          "missing message",
			notification:  Notification{Level: LevelWarning},
			errorContains: "message is required",
		},
		{
			name:          "message too long",
			notification:  Notification{Level: LevelWarning, Message: strings.Repeat("a", 1001)},
			errorContains: "message too long",
		},
		{
			name:          "subject too long",
			notification:  Notification{Level: LevelInfo, Subject: strings.Repeat("s", 201), Message: "m"},
			errorContains: "subject too long",
		},
		{
			name:          "invalid level",
			notification:  Notification{Level: "invalid", Message: "Test message"},
			errorContains: "invalid notification level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.notification.Validate()
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestNotificationClient_SendNotification_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "maintenance-tracker-api/1.0", r.Header.Get("User-Agent"))

		var notification Notification
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&notification))
		assert.Equal(t, LevelWarning, notification.Level)
		assert.Equal(t, "PC-0042", notification.Subject)
		assert.Equal(t, "Test message", notification.Message)
		assert.Equal(t, "maintenance-tracker-api", notification.Source)
		assert.False(t, notification.Timestamp.IsZero())

		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewNotifier(server.URL, nil)
	err := client.SendNotification(Notification{
		Level:   LevelWarning,
		Subject: "PC-0042",
		Message: "Test message",
	})
	assert.NoError(t, err)
}

func TestNotificationClient_SendNotification_ServerError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal server error"))
	}))
	defer server.Close()

	client := NewNotifierWithConfig(fastConfig(server.URL), nil)
	err := client.SendNotification(Notification{Level: LevelWarning, Message: "Test message"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "after 4 attempts")
	assert.Equal(t, int32(4), attempts.Load())
}

func TestNotificationClient_ClientErrorIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewNotifierWithConfig(fastConfig(server.URL), nil)
	err := client.SendNotification(Notification{Level: LevelInfo, Message: "Test message"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestNotificationClient_SendNotification_ValidationError(t *testing.T) {
	client := NewNotifier("http://localhost:8080", nil)

	err := client.SendNotification(Notification{Subject: "PC-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid notification")
}

func TestNotificationClient_SendNotificationWithContext_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewNotifier(server.URL, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.SendNotificationWithContext(ctx, Notification{Level: LevelWarning, Message: "Test message"})
	assert.Error(t, err)
}

func TestNotificationClient_Retry_Mechanism(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewNotifierWithConfig(fastConfig(server.URL), nil)

	err := client.SendNotification(Notification{Level: LevelWarning, Message: "Test message"})
	assert.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestNotificationClient_IsHealthy(t *testing.T) {
	tests := []struct {
		name           string
		serverStatus   int
		expectedHealth bool
	}{
		{name: "healthy service", serverStatus: http.StatusOK, expectedHealth: true},
		{name: "client error still healthy", serverStatus: http.StatusBadRequest, expectedHealth: true},
		{name: "server error unhealthy", serverStatus: http.StatusInternalServerError, expectedHealth: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/health", r.URL.Path)
				w.WriteHeader(tt.serverStatus)
			}))
			defer server.Close()

			client := NewNotifier(server.URL, nil)
			assert.Equal(t, tt.expectedHealth, client.IsHealthy(context.Background()))
		})
	}
}

func TestNotificationClient_PayloadSizeLimit(t *testing.T) {
	config := DefaultConfig("http://127.0.0.1:1")
	config.MaxPayloadSize = 100
	client := NewNotifierWithConfig(config, nil)

	err := client.SendNotification(Notification{Level: LevelWarning, Message: strings.Repeat("a", 200)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload too large")
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("http://example.com")

	assert.Equal(t, "http://example.com", config.URL)
	assert.Equal(t, 10*time.Second, config.Timeout)
	assert.Equal(t, 3, config.RetryAttempts)
	assert.Equal(t, time.Second, config.RetryDelay)
	assert.Equal(t, int64(1024*1024), config.MaxPayloadSize)
}

func TestNoopNotifier(t *testing.T) {
	n := NewNoopNotifier(nil)

	assert.NoError(t, n.SendNotification(Notification{Level: LevelInfo, Message: "dropped"}))
	assert.Error(t, n.SendNotification(Notification{Level: LevelInfo}))
	assert.True(t, n.IsHealthy(context.Background()))
}
