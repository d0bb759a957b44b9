package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notemind/notemind/internal/profile"
	"github.com/notemind/notemind/server/service/planner"
	"github.com/notemind/notemind/store"
	"github.com/notemind/notemind/store/db/sqlite"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	testProfile := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}
	driver, err := sqlite.NewDB(testProfile)
	require.NoError(t, err)
	st := store.New(driver, testProfile)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newTestService(t *testing.T, st *store.Store) (*APIV1Service, *echo.Echo) {
	t.Helper()
	plannerService := planner.NewService(st, nil, planner.DefaultOptions())
	service := NewAPIV1Service("", &profile.Profile{Mode: "dev"}, st, plannerService, nil, nil)
	e := echo.New()
	service.Register(e.Group("/api/v1"))
	return service, e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateTaskSchedules(t *testing.T) {
	st := newTestStore(t)
	_, e := newTestService(t, st)

	rec := doJSON(e, http.MethodPost, "/api/v1/users/1/tasks",
		`{"title": "лаба", "duration": "2 часа"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Outcome string `json:"outcome"`
		Task    struct {
			Title string `json:"title"`
		} `json:"task"`
		Event struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SCHEDULED", resp.Outcome)
	assert.Equal(t, "лаба", resp.Task.Title)

	start, err := time.Parse(time.RFC3339, resp.Event.Start)
	require.NoError(t, err)
	end, err := time.Parse(time.RFC3339, resp.Event.End)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, end.Sub(start))
}

func TestCreateTaskPastDeadline(t *testing.T) {
	st := newTestStore(t)
	_, e := newTestService(t, st)

	rec := doJSON(e, http.MethodPost, "/api/v1/users/1/tasks",
		`{"title": "опоздал", "duration": "1 час", "deadline": "2020-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_SLOT")

	// The task record survives the failed placement.
	tasks, err := st.ListTasks(context.Background(), &store.FindTask{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestCreateTaskValidation(t *testing.T) {
	st := newTestStore(t)
	_, e := newTestService(t, st)

	rec := doJSON(e, http.MethodPost, "/api/v1/users/1/tasks", `{"duration": "1 час"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/users/abc/tasks", `{"title": "x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/users/1/tasks",
		`{"title": "x", "deadline": "tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAndListEvents(t *testing.T) {
	st := newTestStore(t)
	_, e := newTestService(t, st)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	body, _ := json.Marshal(map[string]string{
		"title": "созвон",
		"start": start.Format(time.RFC3339),
		"end":   start.Add(time.Hour).Format(time.RFC3339),
	})
	rec := doJSON(e, http.MethodPost, "/api/v1/users/1/events", string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/users/1/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "созвон")

	// Another user sees nothing.
	rec = doJSON(e, http.MethodGet, "/api/v1/users/2/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "созвон")
}

func TestCreateEventRejectsInvertedRange(t *testing.T) {
	st := newTestStore(t)
	_, e := newTestService(t, st)

	rec := doJSON(e, http.MethodPost, "/api/v1/users/1/events",
		`{"title": "x", "start": "2026-03-02T10:00:00Z", "end": "2026-03-02T09:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteEvent(t *testing.T) {
	st := newTestStore(t)
	_, e := newTestService(t, st)

	rec := doJSON(e, http.MethodPost, "/api/v1/users/1/events",
		`{"title": "удалить", "start": "2026-03-02T10:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Event struct {
			ID int32 `json:"id"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	path := "/api/v1/users/1/events/" + strconv.Itoa(int(resp.Event.ID))
	rec = doJSON(e, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteEventOwnershipEnforced(t *testing.T) {
	st := newTestStore(t)
	_, e := newTestService(t, st)

	rec := doJSON(e, http.MethodPost, "/api/v1/users/1/events",
		`{"title": "чужое", "start": "2026-03-02T10:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Event struct {
			ID int32 `json:"id"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = doJSON(e, http.MethodDelete, "/api/v1/users/2/events/"+strconv.Itoa(int(resp.Event.ID)), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAddress(t *testing.T) {
	st := newTestStore(t)
	_, e := newTestService(t, st)

	user, err := st.CreateUser(context.Background(), &store.User{MessengerID: "123", Nickname: "Ира"})
	require.NoError(t, err)

	rec := doJSON(e, http.MethodPatch,
		"/api/v1/users/"+strconv.Itoa(int(user.ID))+"/address",
		`{"home_address": "Тверская 1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := st.GetUser(context.Background(), &store.FindUser{ID: &user.ID})
	require.NoError(t, err)
	assert.Equal(t, "Тверская 1", updated.HomeAddress)
}

func TestPlanningRoutesRateLimitPerIP(t *testing.T) {
	st := newTestStore(t)
	_, e := newTestService(t, st)

	limited := false
	for i := 0; i < 20; i++ {
		rec := doJSON(e, http.MethodGet, "/api/v1/users/1/events", "")
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited)
}

func TestListHealthMetrics(t *testing.T) {
	st := newTestStore(t)
	_, e := newTestService(t, st)

	_, err := st.CreateHealthMetric(context.Background(), &store.HealthMetric{
		CreatorID: 1, Metric: "sleep", Value: "7h",
	})
	require.NoError(t, err)

	rec := doJSON(e, http.MethodGet, "/api/v1/users/1/health-metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sleep")
}
