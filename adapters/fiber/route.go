package fiber

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/oagate"
	"github.com/lborres/oagate/services"
)

// UserResolver returns the id of the user the upstream identity provider
// authenticated for a login request.
type UserResolver func(c fiber.Ctx) (string, error)

type Adapter struct {
	app          *fiber.App
	gate         *oagate.Gate
	resolveUser  UserResolver
	secureCookie bool
}

var _ oagate.HTTPAdapter = (*Adapter)(nil)

type Option func(*Adapter)

// WithUserResolver replaces the default resolver, which reads "userId" from
// the login body. Use it to trust a header set by an authenticating proxy.
func WithUserResolver(fn UserResolver) Option {
	return func(a *Adapter) { a.resolveUser = fn }
}

// WithSecureCookie marks the console_token cookie Secure.
func WithSecureCookie() Option {
	return func(a *Adapter) { a.secureCookie = true }
}

func New(app *fiber.App, opts ...Option) *Adapter {
	a := &Adapter{app: app, resolveUser: userFromBody}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) RegisterRoutes(g *oagate.Gate) error {
	a.gate = g

	handlers := map[string]fiber.Handler{
		services.OpLogin:               a.login,
		services.OpLogout:              a.logout,
		services.OpGetSession:          a.session,
		services.OpListAccounts:        a.listAccounts,
		services.OpCreateAccount:       a.createAccount,
		services.OpSwitchAccount:       a.switchAccount,
		services.OpLeaveAccount:        a.leaveAccount,
		services.OpAddMember:           a.addMember,
		services.OpAdvanceVerification: a.requestVerification,
		services.OpCapabilities:        a.capabilities,
		services.OpNavigate:            a.navigate,
	}

	api := a.app.Group(g.BasePath)

	for _, ep := range g.Endpoints.Endpoints() {
		h, ok := handlers[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("no fiber handler for operation %q", ep.Metadata.OperationID)
		}

		if ep.Protected {
			api.Add([]string{ep.Method}, ep.Path, a.requireAuth, h)
		} else {
			api.Add([]string{ep.Method}, ep.Path, h)
		}
	}

	return nil
}
