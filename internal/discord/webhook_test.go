package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookClient_SendNoContent(t *testing.T) {
	var got Payload
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewWebhookClient(srv.URL, srv.Client())
	err := client.Send(context.Background(), Payload{Embeds: []Embed{{
		Title:       "Backend Developer",
		URL:         "https://example.com/1",
		Color:       0x0066cc,
		Description: "**Company:** Acme",
		Footer:      &Footer{Text: "Halifax Jobs - Digital Nova Scotia (1-1 of 1)"},
	}}})

	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "Backend Developer", got.Embeds[0].Title)
	assert.Equal(t, 0x0066cc, got.Embeds[0].Color)
	assert.Equal(t, "Halifax Jobs - Digital Nova Scotia (1-1 of 1)", got.Embeds[0].Footer.Text)
}

func TestWebhookClient_SendRejectsOtherStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "200 is not success", status: http.StatusOK, body: "ok"},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"retry_after":1.5}`},
		{name: "bad request", status: http.StatusBadRequest, body: `{"embeds":["0"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewWebhookClient(srv.URL, srv.Client()).Send(context.Background(), Payload{})

			var delivery *DeliveryError
			require.True(t, errors.As(err, &delivery))
			assert.Equal(t, tt.status, delivery.Status)
			assert.Equal(t, tt.body, delivery.Body)
		})
	}
}

func TestWebhookClient_SendTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewWebhookClient(url, nil).Send(context.Background(), Payload{})

	require.Error(t, err)
	var delivery *DeliveryError
	assert.False(t, errors.As(err, &delivery))
}
