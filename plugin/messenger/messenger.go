// Package messenger is a minimal client for the Max bot API: receiving
// webhook updates and sending text replies.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Update is an incoming webhook payload. Only message updates are
// handled; everything else unmarshals to a zero Message and is ignored
// upstream.
type Update struct {
	UpdateType string  `json:"update_type"`
	Timestamp  int64   `json:"timestamp"`
	Message    Message `json:"message"`
}

type Message struct {
	Sender    Sender    `json:"sender"`
	Recipient Recipient `json:"recipient"`
	Body      Body      `json:"body"`
}

type Sender struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

type Recipient struct {
	ChatID int64 `json:"chat_id"`
}

type Body struct {
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment is a media item carried by a message. Voice messages
// arrive as type "audio" with a downloadable payload URL.
type Attachment struct {
	Type    string            `json:"type"`
	Payload AttachmentPayload `json:"payload"`
}

type AttachmentPayload struct {
	URL string `json:"url"`
}

// VoiceURL returns the download URL of the message's voice recording,
// or empty when the message carries none.
func (m *Message) VoiceURL() string {
	for _, attachment := range m.Body.Attachments {
		if attachment.Type == "audio" && attachment.Payload.URL != "" {
			return attachment.Payload.URL
		}
	}
	return ""
}

// Config holds the bot client configuration.
type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// Client sends messages through the bot API. With an empty token it
// runs in dev mode: outgoing messages are logged instead of sent.
type Client struct {
	config     *Config
	httpClient *http.Client
}

func NewClient(config *Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://botapi.max.ru"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// SendText delivers a plain-text message to a chat.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	if c.config.Token == "" {
		slog.Info("dev mode, skipping message send", "chat", chatID, "text", text)
		return nil
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}

	q := url.Values{}
	q.Set("access_token", c.config.Token)
	q.Set("chat_id", strconv.FormatInt(chatID, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/messages?"+q.Encode(), bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("bot API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// DownloadAttachment fetches an attachment payload from the bot CDN.
// The caller closes the returned reader.
func (c *Client) DownloadAttachment(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "download request failed")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("attachment download returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
