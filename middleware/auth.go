package middleware

import (
	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"

	"github.com/lac-hong-legacy/learnhub/services"
	"github.com/lac-hong-legacy/learnhub/shared"
)

type TokenVerifier interface {
	ExtractTokenFromHeader(authHeader string) (string, error)
	VerifyJWTToken(token string) (string, error)
}

type AuthMiddleware struct {
	context.DefaultService

	jwtSvc TokenVerifier
}

func (svc AuthMiddleware) Id() string {
	return services.AUTH_MIDDLEWARE_SVC
}

func (svc *AuthMiddleware) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthMiddleware) Start() error {
	svc.jwtSvc = svc.Service(services.JWT_SVC).(*services.JWTService)
	return nil
}

// NewAuthMiddleware wires the middleware without the service container.
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwtSvc: verifier}
}

func (svc *AuthMiddleware) authenticate(c *fiber.Ctx) (string, error) {
	token, err := svc.jwtSvc.ExtractTokenFromHeader(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return "", shared.NewUnauthorizedError(err, "Unauthorized")
	}

	userID, err := svc.jwtSvc.VerifyJWTToken(token)
	if err != nil {
		return "", shared.NewUnauthorizedError(err, "Invalid JWT token")
	}

	if userID == "" {
		return "", shared.NewUnauthorizedError(nil, "Invalid user ID in token")
	}
	return userID, nil
}

func (svc *AuthMiddleware) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := svc.authenticate(c)
		if err != nil {
			return err
		}

		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}

// OptionalAuth sets the user when a valid token is present and lets anonymous requests through.
func (svc *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != "" {
			if userID, err := svc.authenticate(c); err == nil {
				c.Locals(shared.UserID, userID)
			}
		}
		return c.Next()
	}
}
