package v1

import (
	"context"
	"io"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/notemind/notemind/internal/profile"
	"github.com/notemind/notemind/plugin/ai"
	"github.com/notemind/notemind/server/middleware"
	"github.com/notemind/notemind/server/service/planner"
	"github.com/notemind/notemind/store"
)

// IntentExtractor pulls structured scheduling items out of a message.
type IntentExtractor interface {
	Extract(ctx context.Context, message string, now time.Time) (*ai.Extraction, error)
}

// Sender delivers replies back to the messenger.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Transcriber turns a voice recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// AttachmentDownloader fetches message attachments from the messenger.
type AttachmentDownloader interface {
	DownloadAttachment(ctx context.Context, url string) (io.ReadCloser, error)
}

type APIV1Service struct {
	Secret    string
	Profile   *profile.Profile
	Store     *store.Store
	Planner   *planner.Service
	Extractor IntentExtractor // nil when AI is not configured
	Messenger Sender

	// Transcriber and Downloader enable the voice message path; both
	// are optional and assigned after construction.
	Transcriber Transcriber
	Downloader  AttachmentDownloader

	limiter *middleware.RateLimiter
	// webhookSemaphore caps concurrent extraction pipelines; LLM calls
	// are slow and unbounded fan-out would exhaust the API quota.
	webhookSemaphore *semaphore.Weighted
}

func NewAPIV1Service(secret string, profile *profile.Profile, store *store.Store, plannerService *planner.Service, extractor IntentExtractor, sender Sender) *APIV1Service {
	return &APIV1Service{
		Secret:           secret,
		Profile:          profile,
		Store:            store,
		Planner:          plannerService,
		Extractor:        extractor,
		Messenger:        sender,
		limiter:          middleware.NewRateLimiter(time.Second, 5),
		webhookSemaphore: semaphore.NewWeighted(3),
	}
}

// Register mounts all v1 routes on the given group.
func (s *APIV1Service) Register(group *echo.Group) {
	// The webhook handler rate-limits per sender itself; the REST
	// surface is limited per client IP.
	group.POST("/webhook", s.handleWebhook)

	users := group.Group("/users", s.limiter.Middleware(func(c echo.Context) string {
		return "ip:" + c.RealIP()
	}))
	users.POST("/:id/tasks", s.createTask)
	users.GET("/:id/events", s.listEvents)
	users.POST("/:id/events", s.createEvent)
	users.DELETE("/:id/events/:eventID", s.deleteEvent)
	users.PATCH("/:id/address", s.updateAddress)
	users.GET("/:id/health-metrics", s.listHealthMetrics)
}
