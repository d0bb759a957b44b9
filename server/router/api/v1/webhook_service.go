package v1

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/notemind/notemind/internal/util"
	"github.com/notemind/notemind/plugin/messenger"
)

const webhookSecretHeader = "X-Webhook-Secret"

// handleWebhook receives a messenger update, runs the extraction and
// scheduling pipeline, and replies in the originating chat. The HTTP
// response only acknowledges receipt; the user-facing result travels
// through the messenger.
func (s *APIV1Service) handleWebhook(c echo.Context) error {
	if s.Secret != "" && c.Request().Header.Get(webhookSecretHeader) != s.Secret {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook secret")
	}

	var update messenger.Update
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed update").SetInternal(err)
	}

	senderID := update.Message.Sender.UserID
	text := update.Message.Body.Text
	voiceURL := update.Message.VoiceURL()
	if senderID == 0 || (text == "" && voiceURL == "") {
		// Service updates (bot added to chat, callbacks) are acknowledged
		// and dropped.
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	}

	if !s.limiter.Allow(strconv.FormatInt(senderID, 10)) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
	}

	// Short trace id ties the webhook, extraction and reply log lines
	// of one delivery together.
	traceID := util.GenShortID()

	ctx := c.Request().Context()
	if err := s.webhookSemaphore.Acquire(ctx, 1); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "server busy").SetInternal(err)
	}
	defer s.webhookSemaphore.Release(1)

	user, err := s.Store.GetOrCreateUserByMessengerID(ctx,
		strconv.FormatInt(senderID, 10), update.Message.Sender.Name)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve user").SetInternal(err)
	}

	chatID := update.Message.Recipient.ChatID
	if s.Extractor == nil {
		s.reply(c, chatID, "The assistant is not configured yet. Ask the operator to enable it.")
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	}

	if text == "" {
		text, err = s.transcribeVoice(ctx, voiceURL)
		if err != nil {
			slog.Error("voice transcription failed", "trace", traceID, "user", user.ID, "err", err)
			s.reply(c, chatID, "I could not make out that voice message, please try again or type it out.")
			return c.JSON(http.StatusOK, map[string]bool{"ok": true})
		}
	}

	now := time.Now()
	extraction, err := s.Extractor.Extract(ctx, text, now)
	if err != nil {
		slog.Error("extraction failed", "trace", traceID, "user", user.ID, "err", err)
		s.reply(c, chatID, "I could not understand that, please try again.")
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	}

	report := s.Planner.Process(ctx, user.ID, extraction.ToBatch(), now)
	slog.Info("webhook processed",
		"trace", traceID,
		"user", user.ID,
		"events", len(report.Events),
		"scheduled", len(report.Scheduled),
		"failures", len(report.Failures))
	s.reply(c, chatID, report.Summary())

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// transcribeVoice downloads a voice recording and turns it into text
// so the message joins the regular extraction pipeline.
func (s *APIV1Service) transcribeVoice(ctx context.Context, url string) (string, error) {
	if s.Transcriber == nil || s.Downloader == nil {
		return "", fmt.Errorf("voice transcription is not configured")
	}

	audio, err := s.Downloader.DownloadAttachment(ctx, url)
	if err != nil {
		return "", fmt.Errorf("download voice attachment: %w", err)
	}
	defer audio.Close()

	text, err := s.Transcriber.Transcribe(ctx, "voice.oga", audio)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("empty transcript")
	}
	return text, nil
}

func (s *APIV1Service) reply(c echo.Context, chatID int64, text string) {
	if s.Messenger == nil || chatID == 0 {
		return
	}
	if err := s.Messenger.SendText(c.Request().Context(), chatID, text); err != nil {
		slog.Error("failed to send reply", "chat", chatID, "err", err)
	}
}
