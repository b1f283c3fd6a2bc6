package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/teayouth/portal/core"
	"github.com/teayouth/portal/core/auth"
	"github.com/teayouth/portal/core/user"
)

const (
	contextPrincipalKey = "principal"
	tokenCookieName     = "token"
)

// credentialMiddleware decodes the bearer token or the "token" cookie into
// the request principal. When required, a missing or invalid credential stops
// the request; otherwise the request proceeds anonymously.
func credentialMiddleware(authority *auth.Authority, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := extractToken(ctx)
			if token == "" {
				if required {
					return errUnauthorized
				}
				return next(ctx)
			}

			principal, err := authority.Verify(token)
			if err != nil {
				if required {
					return errUnauthorized
				}
				return next(ctx)
			}

			ctx.Set(contextPrincipalKey, principal)
			ctx.Set(tokenCookieName, token)
			return next(ctx)
		}
	}
}

func extractToken(ctx echo.Context) string {
	if header := ctx.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	if cookie, err := ctx.Cookie(tokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func getContextPrincipal(ctx echo.Context) (auth.Principal, error) {
	if p, ok := ctx.Get(contextPrincipalKey).(auth.Principal); ok {
		return p, nil
	}
	return auth.Principal{}, errUnauthorized
}

func contextPrincipalPtr(ctx echo.Context) *auth.Principal {
	if p, ok := ctx.Get(contextPrincipalKey).(auth.Principal); ok {
		return &p
	}
	return nil
}

type authApi struct {
	svc     *auth.Service
	userSvc *user.Service
	conf    *core.Config
}

func registerAuthAPI(g *echo.Group, cred echo.MiddlewareFunc, svc *auth.Service, userSvc *user.Service, conf *core.Config) {
	api := authApi{svc: svc, userSvc: userSvc, conf: conf}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)

	// authed endpoints
	ag.GET("/me", api.me, cred)
	ag.POST("/token-refresh", api.refreshToken, cred)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	token, principal, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == auth.ErrInvalidCredential {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}

	ctx.SetCookie(api.tokenCookie(token, int(api.conf.Server.JWTExpirationDelta.Seconds())))
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Principal: principal})
}

func (api *authApi) logout(ctx echo.Context) error {
	ctx.SetCookie(api.tokenCookie("", -1))
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "logged out"})
}

func (api *authApi) me(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	usr, err := api.userSvc.GetByID(ctx.Request().Context(), principal.ID)
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, ok := ctx.Get(tokenCookieName).(string)
	if !ok {
		return errUnauthorized
	}

	newToken, err := api.svc.Refresh(ctx.Request().Context(), token)
	if err != nil {
		if errors.Cause(err) == auth.ErrInvalidCredential {
			return errRefreshExpired
		}
		return errors.Wrap(err, "refreshing token")
	}

	ctx.SetCookie(api.tokenCookie(newToken, int(api.conf.Server.JWTExpirationDelta.Seconds())))
	return ctx.JSON(http.StatusOK, LoginResponse{Token: newToken})
}

func (api *authApi) tokenCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !api.conf.Debug,
		SameSite: http.SameSiteLaxMode,
	}
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token     string         `json:"token"`
		Principal auth.Principal `json:"principal"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.TranslateValidationErrors(core.Validate.Struct(lr))
}
