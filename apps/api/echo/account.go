package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rollcallhq/rollcall/core/account"
)

type accountApi struct {
	deps *ServerDeps
}

func registerAccountAPI(g *echo.Group, deps *ServerDeps) {
	api := accountApi{deps: deps}

	g.POST("/create", api.create)
	g.POST("/login", api.login)
}

// Handlers

func (api *accountApi) create(ctx echo.Context) error {
	var data account.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	acct, err := api.deps.AccountSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == account.ErrEmailExists {
			return errEmailTaken
		}
		return errors.Wrap(err, "creating account")
	}

	return ctx.JSON(http.StatusOK, SessionResponse{
		SessionID: acct.ID,
		Email:     acct.Email,
	})
}

func (api *accountApi) login(ctx echo.Context) error {
	var data account.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	acct, err := api.deps.AccountSvc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		// unknown email and wrong password both land here; one message
		if errors.Cause(err) == account.ErrInvalidCredentials {
			return errInvalidCredentials
		}
		return errors.Wrap(err, "authenticating")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		SessionResponse: SessionResponse{
			SessionID: acct.ID,
			Email:     acct.Email,
		},
		Roster:     acct.Document.Roster,
		Attendance: acct.Document.Attendance,
	})
}
