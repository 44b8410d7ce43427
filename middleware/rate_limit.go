package middleware

import (
	stdcontext "context"
	"fmt"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/services"
	"github.com/lac-hong-legacy/learnhub/shared"
)

// WindowCounter is a shared fixed-window counter store.
type WindowCounter interface {
	IncrementWindow(ctx stdcontext.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimitMiddleware limits requests per user (or IP when anonymous) and
// endpoint type. It lets everything through when redis is unavailable.
type RateLimitMiddleware struct {
	context.DefaultService

	configs map[string]*model.RateLimitConfig
	counter WindowCounter
	now     func() time.Time
}

func (svc RateLimitMiddleware) Id() string {
	return services.RATE_LIMIT_MIDDLEWARE_SVC
}

func (svc *RateLimitMiddleware) Configure(ctx *context.Context) error {
	svc.configs = DefaultRateLimitConfigs()
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitMiddleware) Start() error {
	if r, ok := svc.Service(services.REDIS_SVC).(*services.RedisService); ok && r.Enabled() {
		svc.counter = r
	}
	return nil
}

// NewRateLimitMiddleware wires the middleware without the service container.
func NewRateLimitMiddleware(counter WindowCounter, configs map[string]*model.RateLimitConfig) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		configs: configs,
		counter: counter,
		now:     time.Now,
	}
}

func DefaultRateLimitConfigs() map[string]*model.RateLimitConfig {
	return map[string]*model.RateLimitConfig{
		// Lesson completion - prevent rapid fire completions
		shared.EndpointLessonComplete: {
			EndpointType: shared.EndpointLessonComplete,
			MaxRequests:  60,
			WindowSize:   time.Hour,
			Description:  "Lesson completion rate limit",
		},

		// Submissions hit the judge, which is the expensive collaborator
		shared.EndpointSubmission: {
			EndpointType: shared.EndpointSubmission,
			MaxRequests:  30,
			WindowSize:   time.Minute * 10,
			Description:  "Solution submission rate limit",
		},

		shared.EndpointCheckIn: {
			EndpointType: shared.EndpointCheckIn,
			MaxRequests:  10,
			WindowSize:   time.Hour,
			Description:  "Daily check-in rate limit",
		},

		shared.EndpointGeneral: {
			EndpointType: shared.EndpointGeneral,
			MaxRequests:  1000,
			WindowSize:   time.Hour,
			Description:  "General API rate limit",
		},
	}
}

func (svc *RateLimitMiddleware) IsAllowed(ctx stdcontext.Context, identifier, endpointType string) (*dto.RateLimitInfo, error) {
	config, exists := svc.configs[endpointType]
	if !exists || svc.counter == nil {
		return &dto.RateLimitInfo{Allowed: true, Remaining: -1}, nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s", endpointType, identifier)
	count, ttl, err := svc.counter.IncrementWindow(ctx, key, config.WindowSize)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = config.WindowSize
	}
	resetTime := svc.now().Add(ttl)

	remaining := config.MaxRequests - int(count)
	if remaining < 0 {
		return &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &resetTime,
			BlockedUntil: &resetTime,
		}, nil
	}
	return &dto.RateLimitInfo{
		Allowed:   true,
		Remaining: remaining,
		ResetTime: &resetTime,
	}, nil
}

func (svc *RateLimitMiddleware) Limit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := "ip:" + c.IP()
		if userID, ok := c.Locals(shared.UserID).(string); ok && userID != "" {
			identifier = "user:" + userID
		}

		info, err := svc.IsAllowed(c.UserContext(), identifier, endpointType)
		if err != nil {
			// Continue with request on error to avoid blocking users due to system issues
			log.WithError(err).WithFields(log.Fields{
				"identifier":    identifier,
				"endpoint_type": endpointType,
			}).Warn("Rate limit check failed")
			return c.Next()
		}

		if info.ResetTime != nil {
			c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		if info.Remaining >= 0 {
			c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		}

		if !info.Allowed {
			retryAfter := int(info.BlockedUntil.Sub(svc.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return shared.NewTooManyRequestsError("Rate limit exceeded")
		}

		return c.Next()
	}
}
