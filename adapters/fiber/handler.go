package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/oagate"
	"github.com/lborres/oagate/core"
	"github.com/lborres/oagate/services"
)

const cookieName = "console_token"

var errInvalidBody = errors.New("invalid request body")

type loginInput struct {
	UserID string `json:"userId"`
}

type addMemberInput struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type sessionResponse struct {
	UserID  string        `json:"userId"`
	Session *core.Session `json:"session"`
}

type capabilitiesResponse struct {
	Destinations []core.MenuItem `json:"destinations"`
	Allowed      []string        `json:"allowed"`
}

// navigationResponse hides the difference between an unknown destination and
// one the account may not see.
type navigationResponse struct {
	DestinationID string `json:"destinationId"`
	Allowed       bool   `json:"allowed"`
	Reason        string `json:"reason,omitempty"`
	Redirect      string `json:"redirect,omitempty"`
}

func userFromBody(c fiber.Ctx) (string, error) {
	var input loginInput
	if err := c.Bind().Body(&input); err != nil {
		return "", errInvalidBody
	}
	return input.UserID, nil
}

func (a *Adapter) login(c fiber.Ctx) error {
	userID, err := a.resolveUser(c)
	if err != nil {
		return a.handleError(c, err)
	}

	result, err := a.gate.Clients.OnLoginSucceeded(c.Context(), userID)
	if err != nil {
		return a.handleError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    result.Token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   a.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(http.StatusOK).JSON(result)
}

func (a *Adapter) logout(c fiber.Ctx) error {
	token, _ := c.Locals(localsToken).(string)

	if err := a.gate.Clients.Logout(token); err != nil {
		return a.handleError(c, err)
	}

	c.ClearCookie(cookieName)
	return c.Status(http.StatusOK).JSON(map[string]string{
		"message": "signed out of console",
	})
}

func (a *Adapter) session(c fiber.Ctx) error {
	sc := Client(c)
	return c.Status(http.StatusOK).JSON(sessionResponse{
		UserID:  sc.UserID(),
		Session: sc.Current(),
	})
}

func (a *Adapter) listAccounts(c fiber.Ctx) error {
	sc := Client(c)

	accounts, err := a.gate.Directory.ListAccounts(c.Context(), sc.UserID())
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(accounts)
}

func (a *Adapter) createAccount(c fiber.Ctx) error {
	sc := Client(c)

	var input services.CreateAccountInput
	if err := c.Bind().Body(&input); err != nil {
		return a.handleError(c, errInvalidBody)
	}

	result, err := a.gate.Accounts.CreateAccount(c.Context(), sc.UserID(), input)
	if err != nil {
		return a.handleError(c, err)
	}

	// a user's first account becomes the active one
	if sc.Current() == nil {
		if _, err := sc.SwitchAccount(c.Context(), result.Account.ID); err != nil {
			return a.handleError(c, err)
		}
	}

	return c.Status(http.StatusCreated).JSON(result)
}

func (a *Adapter) switchAccount(c fiber.Ctx) error {
	sc := Client(c)

	session, err := sc.SwitchAccount(c.Context(), c.Params("id"))
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(session)
}

func (a *Adapter) leaveAccount(c fiber.Ctx) error {
	sc := Client(c)
	accountID := c.Params("id")

	if err := a.gate.Accounts.LeaveAccount(c.Context(), sc.UserID(), accountID); err != nil {
		return a.handleError(c, err)
	}

	// the gate has already moved this client, and the user's other clients,
	// off the account
	return c.Status(http.StatusOK).JSON(sessionResponse{
		UserID:  sc.UserID(),
		Session: sc.Current(),
	})
}

func (a *Adapter) addMember(c fiber.Ctx) error {
	sc := Client(c)

	var input addMemberInput
	if err := c.Bind().Body(&input); err != nil {
		return a.handleError(c, errInvalidBody)
	}

	m, err := a.gate.Accounts.AddMember(c.Context(), sc.UserID(), c.Params("id"), input.UserID, core.Role(input.Role))
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(m)
}

func (a *Adapter) requestVerification(c fiber.Ctx) error {
	sc := Client(c)

	account, err := a.gate.Accounts.RequestVerification(c.Context(), sc.UserID(), c.Params("id"))
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(account)
}

func (a *Adapter) capabilities(c fiber.Ctx) error {
	sc := Client(c)

	menu, err := sc.Menu()
	if err != nil {
		return a.handleError(c, err)
	}
	allowed, err := sc.CurrentCapabilities()
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(capabilitiesResponse{
		Destinations: menu,
		Allowed:      allowed,
	})
}

func (a *Adapter) navigate(c fiber.Ctx) error {
	sc := Client(c)

	outcome, err := sc.Navigate(c.Params("destination"))
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(a.navigationResponse(outcome))
}

func (a *Adapter) navigationResponse(o core.Outcome) navigationResponse {
	if o.Allowed {
		return navigationResponse{DestinationID: o.DestinationID, Allowed: true}
	}

	reason := "unavailable"
	if o.Reason == core.DenyLocked {
		reason = string(core.DenyLocked)
	}

	return navigationResponse{
		DestinationID: o.DestinationID,
		Reason:        reason,
		Redirect:      a.gate.Router.DefaultDestination(),
	}
}

// extractToken extracts the client token from the request.
// Checks Authorization header (Bearer token) first, then falls back to cookie.
func extractToken(c fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}

	return c.Cookies(cookieName)
}

// handleError maps gate errors to HTTP responses. Internal failures are
// logged and answered without detail.
func (a *Adapter) handleError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		a.gate.Logger.Error("console request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		message = http.StatusText(status)
	}

	return c.Status(status).JSON(core.ErrorResponse{
		Error: message,
		Code:  status,
	})
}

// mapErrorToStatus maps oagate error types to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, oagate.ErrMissingAuthHeader),
		errors.Is(err, oagate.ErrInvalidToken),
		errors.Is(err, oagate.ErrSessionExpired):
		return http.StatusUnauthorized

	case errors.Is(err, errInvalidBody),
		errors.Is(err, oagate.ErrUserRequired),
		errors.Is(err, oagate.ErrAccountNameRequired),
		errors.Is(err, oagate.ErrInvalidAccountType):
		return http.StatusBadRequest

	case errors.Is(err, oagate.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, oagate.ErrAccountNotFound),
		errors.Is(err, oagate.ErrMembershipNotFound):
		return http.StatusNotFound

	case errors.Is(err, oagate.ErrMembershipExists),
		errors.Is(err, oagate.ErrOwnerCannotLeave),
		errors.Is(err, oagate.ErrOwnerAlreadyAssigned),
		errors.Is(err, oagate.ErrInvalidTransition),
		errors.Is(err, oagate.ErrNoActiveSession):
		return http.StatusConflict

	// an invalid role in a request body is a client error; one already
	// stored on a session is not
	case errors.Is(err, oagate.ErrMalformedSession):
		return http.StatusInternalServerError

	case errors.Is(err, oagate.ErrInvalidRole):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
