package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/oagate"
	"github.com/lborres/oagate/services"
)

const (
	localsClient = "oagate.client"
	localsToken  = "oagate.token"
)

// requireAuth resolves the client token and stores the client's
// SessionContext in the context for downstream handlers.
func (a *Adapter) requireAuth(c fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return a.handleError(c, oagate.ErrMissingAuthHeader)
	}

	sc, err := a.gate.Clients.Get(token)
	if err != nil {
		return a.handleError(c, err)
	}

	c.Locals(localsClient, sc)
	c.Locals(localsToken, token)

	return c.Next()
}

// Protected is the same middleware for application routes mounted outside
// the console group.
func (a *Adapter) Protected(c fiber.Ctx) error {
	return a.requireAuth(c)
}

// Client returns the SessionContext stored by the auth middleware, or nil.
func Client(c fiber.Ctx) *services.SessionContext {
	sc, _ := c.Locals(localsClient).(*services.SessionContext)
	return sc
}

// RequireDestination guards an application route behind a console
// destination. Denied requests get the same body as GET /navigate.
func (a *Adapter) RequireDestination(destinationID string) fiber.Handler {
	return func(c fiber.Ctx) error {
		sc := Client(c)
		if sc == nil {
			return a.handleError(c, oagate.ErrMissingAuthHeader)
		}

		outcome, err := sc.Navigate(destinationID)
		if err != nil {
			return a.handleError(c, err)
		}
		if !outcome.Allowed {
			return c.Status(fiber.StatusForbidden).JSON(a.navigationResponse(outcome))
		}
		return c.Next()
	}
}
