package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/notemind/notemind/server/service/planner"
	"github.com/notemind/notemind/store"
)

type createTaskRequest struct {
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Deadline string `json:"deadline"` // RFC 3339, optional
}

type taskResponse struct {
	Outcome string        `json:"outcome"`
	Task    *taskPayload  `json:"task"`
	Event   *eventPayload `json:"event,omitempty"`
}

type taskPayload struct {
	ID       int32  `json:"id"`
	UID      string `json:"uid"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Deadline string `json:"deadline,omitempty"`
}

type eventPayload struct {
	ID       int32  `json:"id"`
	UID      string `json:"uid"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end,omitempty"`
	Location string `json:"location,omitempty"`
	Kind     string `json:"kind"`
}

// createTask schedules a duration-bound task onto the user's calendar.
func (s *APIV1Service) createTask(c echo.Context) error {
	userID, err := s.pathUserID(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	draft := planner.TaskDraft{Title: req.Title, Duration: req.Duration}
	if req.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "deadline must be RFC 3339")
		}
		draft.Deadline = &deadline
	}

	outcome, err := s.Planner.ScheduleTask(c.Request().Context(), userID, draft, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to schedule task").SetInternal(err)
	}

	resp := &taskResponse{
		Outcome: string(outcome.Kind),
		Task:    toTaskPayload(outcome.Task),
	}
	if outcome.Event != nil {
		resp.Event = toEventPayload(outcome.Event)
	}
	return c.JSON(http.StatusOK, resp)
}

type createEventRequest struct {
	Title    string `json:"title"`
	Start    string `json:"start"` // RFC 3339
	End      string `json:"end"`   // RFC 3339, optional
	Location string `json:"location"`
}

type eventOutcomeResponse struct {
	Event    *eventPayload   `json:"event"`
	Brackets []*eventPayload `json:"brackets,omitempty"`
	Notices  []string        `json:"notices,omitempty"`
}

// createEvent places a fixed-time event, with travel bracketing when a
// location is given.
func (s *APIV1Service) createEvent(c echo.Context) error {
	userID, err := s.pathUserID(c)
	if err != nil {
		return err
	}

	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start must be RFC 3339")
	}

	draft := planner.EventDraft{Title: req.Title, Start: start, Location: req.Location}
	if req.End != "" {
		end, err := time.Parse(time.RFC3339, req.End)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "end must be RFC 3339")
		}
		if !end.After(start) {
			return echo.NewHTTPError(http.StatusBadRequest, "end must be after start")
		}
		draft.End = &end
	}

	outcome, err := s.Planner.PlaceEvent(c.Request().Context(), userID, draft)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create event").SetInternal(err)
	}

	resp := &eventOutcomeResponse{Event: toEventPayload(outcome.Event), Notices: outcome.Notices}
	for _, bracket := range outcome.Brackets {
		resp.Brackets = append(resp.Brackets, toEventPayload(bracket))
	}
	return c.JSON(http.StatusOK, resp)
}

// listEvents returns the user's events ordered by start time. Optional
// from/to query parameters (RFC 3339) narrow the range.
func (s *APIV1Service) listEvents(c echo.Context) error {
	userID, err := s.pathUserID(c)
	if err != nil {
		return err
	}

	find := &store.FindEvent{CreatorID: &userID}
	if v := c.QueryParam("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be RFC 3339")
		}
		ts := from.Unix()
		find.StartTsAfter = &ts
	}
	if v := c.QueryParam("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be RFC 3339")
		}
		ts := to.Unix()
		find.StartTsBefore = &ts
	}

	events, err := s.Store.ListEvents(c.Request().Context(), find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list events").SetInternal(err)
	}

	payload := make([]*eventPayload, 0, len(events))
	for _, event := range events {
		payload = append(payload, toEventPayload(event))
	}
	return c.JSON(http.StatusOK, map[string]any{"events": payload})
}

// deleteEvent removes one of the user's events.
func (s *APIV1Service) deleteEvent(c echo.Context) error {
	userID, err := s.pathUserID(c)
	if err != nil {
		return err
	}
	eventID, err := strconv.ParseInt(c.Param("eventID"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	ctx := c.Request().Context()
	id := int32(eventID)
	events, err := s.Store.ListEvents(ctx, &store.FindEvent{ID: &id, CreatorID: &userID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to find event").SetInternal(err)
	}
	if len(events) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	}

	if err := s.Store.DeleteEvent(ctx, &store.DeleteEvent{ID: id}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete event").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type updateAddressRequest struct {
	HomeAddress string `json:"home_address"`
}

// updateAddress sets the user's home address used as travel origin.
func (s *APIV1Service) updateAddress(c echo.Context) error {
	userID, err := s.pathUserID(c)
	if err != nil {
		return err
	}

	var req updateAddressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if req.HomeAddress == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "home_address is required")
	}

	user, err := s.Store.UpdateUser(c.Request().Context(), &store.UpdateUser{
		ID:          userID,
		HomeAddress: &req.HomeAddress,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update user").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":           user.ID,
		"home_address": user.HomeAddress,
	})
}

// listHealthMetrics returns the user's recorded health observations.
func (s *APIV1Service) listHealthMetrics(c echo.Context) error {
	userID, err := s.pathUserID(c)
	if err != nil {
		return err
	}

	metrics, err := s.Store.ListHealthMetrics(c.Request().Context(), &store.FindHealthMetric{CreatorID: &userID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list health metrics").SetInternal(err)
	}

	type metricPayload struct {
		ID        int32  `json:"id"`
		Metric    string `json:"metric"`
		Value     string `json:"value"`
		CreatedTs int64  `json:"created_ts"`
	}
	payload := make([]metricPayload, 0, len(metrics))
	for _, m := range metrics {
		payload = append(payload, metricPayload{ID: m.ID, Metric: m.Metric, Value: m.Value, CreatedTs: m.CreatedTs})
	}
	return c.JSON(http.StatusOK, map[string]any{"health_metrics": payload})
}

func (s *APIV1Service) pathUserID(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return int32(id), nil
}

func toTaskPayload(task *store.Task) *taskPayload {
	payload := &taskPayload{
		ID:       task.ID,
		UID:      task.UID,
		Title:    task.Title,
		Duration: task.Duration,
	}
	if deadline := task.Deadline(); deadline != nil {
		payload.Deadline = deadline.Format(time.RFC3339)
	}
	return payload
}

func toEventPayload(event *store.Event) *eventPayload {
	payload := &eventPayload{
		ID:       event.ID,
		UID:      event.UID,
		Title:    event.Title,
		Start:    event.ParseStartTime().Format(time.RFC3339),
		Location: event.Location,
		Kind:     event.Kind.String(),
	}
	if end := event.ParseEndTime(); end != nil {
		payload.End = end.Format(time.RFC3339)
	}
	return payload
}
