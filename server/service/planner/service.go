package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/notemind/notemind/internal/util"
	"github.com/notemind/notemind/store"
)

// Store is the persistence surface the planner needs.
type Store interface {
	GetUser(ctx context.Context, find *store.FindUser) (*store.User, error)
	CreateTask(ctx context.Context, create *store.Task) (*store.Task, error)
	CreateEvent(ctx context.Context, create *store.Event) (*store.Event, error)
	ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error)
	CreateHealthMetric(ctx context.Context, create *store.HealthMetric) (*store.HealthMetric, error)
}

// TravelResolver computes door-to-door travel time between two
// free-text addresses.
type TravelResolver interface {
	TravelMinutes(ctx context.Context, origin, destination string) (int, error)
}

// Service turns extracted drafts into persisted calendar state. One
// draft failing never aborts the rest of a batch.
type Service struct {
	store  Store
	travel TravelResolver // nil when no maps backend is configured
	finder *Finder
}

func NewService(st Store, travel TravelResolver, opts Options) *Service {
	return &Service{
		store:  st,
		travel: travel,
		finder: NewFinder(opts),
	}
}

// TaskDraft is a duration-bound item extracted from a user message.
type TaskDraft struct {
	Title    string
	Duration string
	Deadline *time.Time
}

// EventDraft is a fixed-time item extracted from a user message.
type EventDraft struct {
	Title    string
	Start    time.Time
	End      *time.Time
	Location string
}

// HealthDraft is a health observation extracted from a user message.
type HealthDraft struct {
	Metric string
	Value  string
}

// Batch groups everything extracted from a single message.
type Batch struct {
	Events []EventDraft
	Tasks  []TaskDraft
	Health []HealthDraft
}

// OutcomeKind names the result of scheduling one task.
type OutcomeKind string

const (
	OutcomeScheduled OutcomeKind = "SCHEDULED"
	OutcomeNoSlot    OutcomeKind = "NO_SLOT"
)

// TaskOutcome reports what happened to a single task draft. The task
// record is persisted in either case.
type TaskOutcome struct {
	Kind  OutcomeKind
	Task  *store.Task
	Event *store.Event // set when Kind == OutcomeScheduled
}

// EventOutcome reports a placed event together with any derived travel
// brackets and human-readable notices about them.
type EventOutcome struct {
	Event    *store.Event
	Brackets []*store.Event
	Notices  []string
}

// ScheduleTask persists the task, then searches the user's calendar for
// the earliest slot fitting its parsed duration. When a slot is found a
// calendar event is created for it; when none exists before the
// deadline or horizon, the task stays recorded as unscheduled.
func (s *Service) ScheduleTask(ctx context.Context, userID int32, draft TaskDraft, now time.Time) (*TaskOutcome, error) {
	task := &store.Task{
		UID:       util.GenUUID(),
		CreatorID: userID,
		Title:     draft.Title,
		Duration:  draft.Duration,
	}
	if draft.Deadline != nil {
		ts := draft.Deadline.Unix()
		task.DeadlineTs = &ts
	}
	task, err := s.store.CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	events, err := s.store.ListEvents(ctx, &store.FindEvent{CreatorID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	d := ParseDuration(draft.Duration)
	slot, ok := s.finder.FindSlot(d, draft.Deadline, BusyIntervals(events), now)
	if !ok {
		slog.Info("no free slot for task", "user", userID, "title", draft.Title)
		return &TaskOutcome{Kind: OutcomeNoSlot, Task: task}, nil
	}

	endTs := slot.End.Unix()
	event := &store.Event{
		UID:       util.GenUUID(),
		CreatorID: userID,
		Title:     task.Title,
		StartTs:   slot.Start.Unix(),
		EndTs:     &endTs,
		Kind:      store.EventKindOrdinary,
	}
	event, err = s.store.CreateEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to create event for task: %w", err)
	}

	return &TaskOutcome{Kind: OutcomeScheduled, Task: task, Event: event}, nil
}

// PlaceEvent persists a fixed-time event and, when it has a location
// and the user a known home address, brackets it with travel events.
// Travel trouble (unknown address, no maps backend, routing failure)
// degrades to a notice; the event itself is always kept.
func (s *Service) PlaceEvent(ctx context.Context, userID int32, draft EventDraft) (*EventOutcome, error) {
	event := &store.Event{
		UID:       util.GenUUID(),
		CreatorID: userID,
		Title:     draft.Title,
		StartTs:   draft.Start.Unix(),
		Location:  draft.Location,
		Kind:      store.EventKindOrdinary,
	}
	if draft.End != nil {
		ts := draft.End.Unix()
		event.EndTs = &ts
	}
	event, err := s.store.CreateEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	outcome := &EventOutcome{Event: event}
	if draft.Location == "" {
		return outcome, nil
	}

	user, err := s.store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil || user == nil || user.HomeAddress == "" {
		outcome.Notices = append(outcome.Notices,
			fmt.Sprintf("Set your home address to get travel time for %q.", draft.Title))
		return outcome, nil
	}

	if s.travel == nil {
		outcome.Notices = append(outcome.Notices,
			fmt.Sprintf("Could not determine travel time for %q.", draft.Title))
		return outcome, nil
	}
	minutes, err := s.travel.TravelMinutes(ctx, user.HomeAddress, draft.Location)
	if err != nil || minutes <= 0 {
		slog.Warn("travel time lookup failed", "user", userID, "destination", draft.Location, "err", err)
		outcome.Notices = append(outcome.Notices,
			fmt.Sprintf("Could not determine travel time for %q.", draft.Title))
		return outcome, nil
	}

	outbound, inbound := Bracket(event, minutes, user.HomeAddress)
	for _, leg := range []*store.Event{outbound, inbound} {
		leg.UID = util.GenUUID()
		created, err := s.store.CreateEvent(ctx, leg)
		if err != nil {
			slog.Error("failed to save travel event", "user", userID, "title", leg.Title, "err", err)
			outcome.Notices = append(outcome.Notices,
				fmt.Sprintf("Failed to save %q.", leg.Title))
			continue
		}
		outcome.Brackets = append(outcome.Brackets, created)
		outcome.Notices = append(outcome.Notices,
			fmt.Sprintf("%s: %s–%s.", created.Title,
				created.ParseStartTime().Format("15:04"),
				created.ParseEndTime().Format("15:04")))
	}

	return outcome, nil
}

// RecordHealth persists a single health observation.
func (s *Service) RecordHealth(ctx context.Context, userID int32, draft HealthDraft) (*store.HealthMetric, error) {
	metric, err := s.store.CreateHealthMetric(ctx, &store.HealthMetric{
		CreatorID: userID,
		Metric:    draft.Metric,
		Value:     draft.Value,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create health metric: %w", err)
	}
	return metric, nil
}

// Report summarizes what a batch produced, for rendering back to the
// user.
type Report struct {
	Events      []string
	Scheduled   []string
	Unscheduled []string
	Health      []string
	Logistics   []string
	Failures    []string
}

// Summary renders the report as a reply message. Empty sections are
// omitted; an entirely empty report produces a fallback hint.
func (r *Report) Summary() string {
	var parts []string
	if len(r.Events) > 0 {
		parts = append(parts, "Added events: "+strings.Join(r.Events, ", "))
	}
	if len(r.Scheduled) > 0 {
		parts = append(parts, "Scheduled: "+strings.Join(r.Scheduled, ", "))
	}
	if len(r.Unscheduled) > 0 {
		parts = append(parts, "No free slot found for: "+strings.Join(r.Unscheduled, ", "))
	}
	if len(r.Health) > 0 {
		parts = append(parts, "Recorded: "+strings.Join(r.Health, ", "))
	}
	if len(r.Logistics) > 0 {
		parts = append(parts, strings.Join(r.Logistics, "\n"))
	}
	if len(r.Failures) > 0 {
		parts = append(parts, "Could not save: "+strings.Join(r.Failures, ", "))
	}
	if len(parts) == 0 {
		return "I could not find anything to schedule in that. Try rephrasing."
	}
	return strings.Join(parts, "\n")
}

// Process runs a full extracted batch: events first (so their busy
// intervals constrain subsequent task placement), then tasks, then
// health metrics. A failing item is reported and skipped; the rest of
// the batch proceeds.
func (s *Service) Process(ctx context.Context, userID int32, batch *Batch, now time.Time) *Report {
	report := &Report{}

	for _, draft := range batch.Events {
		outcome, err := s.PlaceEvent(ctx, userID, draft)
		if err != nil {
			slog.Error("failed to place event", "user", userID, "title", draft.Title, "err", err)
			report.Failures = append(report.Failures, draft.Title)
			continue
		}
		report.Events = append(report.Events, draft.Title)
		report.Logistics = append(report.Logistics, outcome.Notices...)
	}

	for _, draft := range batch.Tasks {
		outcome, err := s.ScheduleTask(ctx, userID, draft, now)
		if err != nil {
			slog.Error("failed to schedule task", "user", userID, "title", draft.Title, "err", err)
			report.Failures = append(report.Failures, draft.Title)
			continue
		}
		if outcome.Kind == OutcomeScheduled {
			report.Scheduled = append(report.Scheduled,
				fmt.Sprintf("%s (%s)", draft.Title,
					outcome.Event.ParseStartTime().Format("2006-01-02 15:04")))
		} else {
			report.Unscheduled = append(report.Unscheduled, draft.Title)
		}
	}

	for _, draft := range batch.Health {
		if _, err := s.RecordHealth(ctx, userID, draft); err != nil {
			slog.Error("failed to record health metric", "user", userID, "metric", draft.Metric, "err", err)
			report.Failures = append(report.Failures, draft.Metric)
			continue
		}
		report.Health = append(report.Health, fmt.Sprintf("%s: %s", draft.Metric, draft.Value))
	}

	return report
}
