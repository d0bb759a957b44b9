package messenger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendText(t *testing.T) {
	var gotPath, gotToken, gotChat string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("access_token")
		gotChat = r.URL.Query().Get("chat_id")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(&Config{Token: "secret", BaseURL: server.URL})
	err := client.SendText(context.Background(), 42, "привет")
	require.NoError(t, err)

	assert.Equal(t, "/messages", gotPath)
	assert.Equal(t, "secret", gotToken)
	assert.Equal(t, "42", gotChat)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "привет", payload["text"])
}

func TestSendTextDevMode(t *testing.T) {
	// No token: nothing is sent, nothing fails.
	client := NewClient(&Config{})
	assert.NoError(t, client.SendText(context.Background(), 1, "hi"))
}

func TestSendTextAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(&Config{Token: "bad", BaseURL: server.URL})
	err := client.SendText(context.Background(), 1, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestVoiceURL(t *testing.T) {
	raw := `{
		"update_type": "message_created",
		"message": {
			"sender": {"user_id": 123},
			"recipient": {"chat_id": 456},
			"body": {
				"text": "",
				"attachments": [
					{"type": "sticker", "payload": {"url": "https://cdn.example/sticker"}},
					{"type": "audio", "payload": {"url": "https://cdn.example/voice.oga"}}
				]
			}
		}
	}`

	var update Update
	require.NoError(t, json.Unmarshal([]byte(raw), &update))
	assert.Equal(t, "https://cdn.example/voice.oga", update.Message.VoiceURL())

	textOnly := &Message{Body: Body{Text: "привет"}}
	assert.Empty(t, textOnly.VoiceURL())
}

func TestDownloadAttachment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OggS audio bytes"))
	}))
	defer server.Close()

	client := NewClient(&Config{})
	body, err := client.DownloadAttachment(context.Background(), server.URL+"/voice.oga")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "OggS audio bytes", string(data))
}

func TestDownloadAttachmentNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(&Config{})
	_, err := client.DownloadAttachment(context.Background(), server.URL+"/voice.oga")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestUpdateUnmarshal(t *testing.T) {
	raw := `{
		"update_type": "message_created",
		"timestamp": 1767000000,
		"message": {
			"sender": {"user_id": 123, "name": "Ира"},
			"recipient": {"chat_id": 456},
			"body": {"text": "созвон завтра в 10"}
		}
	}`

	var update Update
	require.NoError(t, json.Unmarshal([]byte(raw), &update))
	assert.Equal(t, int64(123), update.Message.Sender.UserID)
	assert.Equal(t, int64(456), update.Message.Recipient.ChatID)
	assert.Equal(t, "созвон завтра в 10", update.Message.Body.Text)
}
