// Package digest sends each user a morning agenda of the day's events.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/notemind/notemind/store"
)

// Sender delivers the agenda message to a chat.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Runner schedules the daily digest on a cron spec.
type Runner struct {
	store  *store.Store
	sender Sender
	cron   *cron.Cron
}

func NewRunner(st *store.Store, sender Sender, spec string) (*Runner, error) {
	r := &Runner{
		store:  st,
		sender: sender,
		cron:   cron.New(),
	}
	if _, err := r.cron.AddFunc(spec, r.runOnce); err != nil {
		return nil, fmt.Errorf("invalid digest cron spec %q: %w", spec, err)
	}
	return r, nil
}

func (r *Runner) Start() {
	r.cron.Start()
	slog.Info("digest runner started")
}

func (r *Runner) Stop() {
	r.cron.Stop()
}

func (r *Runner) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	users, err := r.store.ListUsers(ctx, &store.FindUser{})
	if err != nil {
		slog.Error("digest: failed to list users", "err", err)
		return
	}

	now := time.Now()
	for _, user := range users {
		if err := r.sendAgenda(ctx, user, now); err != nil {
			slog.Error("digest: failed to send agenda", "user", user.ID, "err", err)
		}
	}
}

func (r *Runner) sendAgenda(ctx context.Context, user *store.User, now time.Time) error {
	// Direct chats in the bot API share the user's messenger id.
	chatID, err := strconv.ParseInt(user.MessengerID, 10, 64)
	if err != nil {
		return fmt.Errorf("unusable messenger id %q: %w", user.MessengerID, err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startTs := dayStart.Unix()
	endTs := dayStart.AddDate(0, 0, 1).Unix()
	events, err := r.store.ListEvents(ctx, &store.FindEvent{
		CreatorID:     &user.ID,
		StartTsAfter:  &startTs,
		StartTsBefore: &endTs,
	})
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	return r.sender.SendText(ctx, chatID, FormatAgenda(events, dayStart))
}

// FormatAgenda renders the day's events as a message, one line per
// event in start order.
func FormatAgenda(events []*store.Event, day time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your agenda for %s:\n", day.Format("Monday, 2 January"))
	for _, event := range events {
		b.WriteString("• ")
		b.WriteString(event.ParseStartTime().In(day.Location()).Format("15:04"))
		if end := event.ParseEndTime(); end != nil {
			b.WriteString("–")
			b.WriteString(end.In(day.Location()).Format("15:04"))
		}
		b.WriteString(" ")
		b.WriteString(event.Title)
		if event.Location != "" {
			fmt.Fprintf(&b, " (%s)", event.Location)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
