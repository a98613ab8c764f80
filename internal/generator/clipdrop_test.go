package generator

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/config"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/logging"
)

const testKey = "test-key-that-is-long-enough"

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	logger, err := logging.NewDefaultLogger()
	require.NoError(t, err)
	return NewClient(config.ProviderConfig{
		APIKey:   testKey,
		Endpoint: endpoint,
		Timeout:  5 * time.Second,
	}, logger)
}

func TestIsUsableKey(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		usable bool
	}{
		{"empty", "", false},
		{"too short", "short-key", false},
		{"contains space", "key with spaces that is long", false},
		{"contains newline", "key-with-newline-long\nenough", false},
		{"valid", testKey, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.usable, isUsableKey(tt.key))
		})
	}
}

func TestGenerateImage(t *testing.T) {
	payload := bytes.Repeat([]byte{0x89}, 512)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, testKey, r.Header.Get("x-api-key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "a cat", r.FormValue("prompt"))

		w.Write(payload)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	data, err := client.GenerateImage(context.Background(), "a cat")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestGenerateImageErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.GenerateImage(context.Background(), "a cat")
	assert.ErrorContains(t, err, "status 402")
}

func TestGenerateImageUndersizedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tiny"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.GenerateImage(context.Background(), "a cat")
	assert.ErrorContains(t, err, "empty or invalid response")
}

func TestGenerateImageTransportError(t *testing.T) {
	// Point at a closed server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.GenerateImage(context.Background(), "a cat")
	assert.Error(t, err)
}
