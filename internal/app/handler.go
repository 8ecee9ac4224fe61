package app

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datapad-dev/datapad/internal/record"
	"github.com/datapad-dev/datapad/internal/sec"
	"github.com/datapad-dev/datapad/internal/storage"
)

var (
	loginPage   = mustStatic("static/login.html")
	landingPage = mustStatic("static/index.html")
)

func mustStatic(name string) []byte {
	data, err := staticFiles.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return data
}

type handler struct {
	store  storage.Store
	secret []byte
	logger *slog.Logger
	secure bool
}

// Route classes: protected API routes answer 401 with a JSON body, protected
// page routes redirect the browser to the login form instead. This is a UX
// distinction, not a security one.
const (
	apiRoute  = true
	pageRoute = false
)

func (h handler) register(e *echo.Echo) {
	e.GET("/login", h.loginForm)
	e.POST("/login", h.login)
	e.GET("/logout", h.logout)

	e.GET("/", h.landing, h.requireSession(pageRoute))

	data := e.Group("/data", h.requireSession(apiRoute))
	data.GET("", h.getData)
	data.POST("", h.putData)
}

// requireSession resolves the session cookie to a user before the wrapped
// handler runs. Storage failures are not treated as "not authenticated".
func (h handler) requireSession(api bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			user, err := sec.Authenticate(req.Context(), req, h.secret, h.store)
			if errors.Is(err, sec.ErrUnauthenticated) {
				if api {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authenticated"})
				}
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			if err != nil {
				return h.storageFailure(c, "session lookup failed", err)
			}
			c.SetRequest(req.WithContext(sec.SetAuthenticatedUser(req.Context(), user)))
			return next(c)
		}
	}
}

func (h handler) loginForm(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, loginPage)
}

func (h handler) login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	session, err := sec.Login(c.Request().Context(), h.store, username, password)
	if errors.Is(err, sec.ErrInvalidCredentials) {
		// same outcome for unknown user and wrong password
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	if err != nil {
		return h.storageFailure(c, "login failed", err)
	}

	token := sec.SignToken(session.ID, h.secret)
	c.SetCookie(sec.NewSessionCookie(token, session.ExpiresAt, h.secure))
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h handler) logout(c echo.Context) error {
	err := sec.Logout(c.Request().Context(), c.Request(), h.secret, h.store)
	if err != nil {
		return h.storageFailure(c, "logout failed", err)
	}
	c.SetCookie(sec.ClearSessionCookie(h.secure))
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h handler) landing(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, landingPage)
}

func (h handler) getData(c echo.Context) error {
	data, err := h.store.GetRecord(c.Request().Context())
	if err != nil {
		return h.storageFailure(c, "record read failed", err)
	}
	return c.JSONBlob(http.StatusOK, data)
}

func (h handler) putData(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read request body"})
	}

	payload, err := record.Normalize(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "data must be valid JSON"})
	}

	if err := h.store.PutRecord(c.Request().Context(), payload); err != nil {
		return h.storageFailure(c, "record write failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "data updated successfully"})
}

// storageFailure logs the underlying error and surfaces an opaque 500.
func (h handler) storageFailure(c echo.Context, msg string, err error) error {
	h.logger.ErrorContext(c.Request().Context(), msg,
		slog.String("uri", c.Request().RequestURI),
		slog.Any("error", err),
	)
	return echo.NewHTTPError(http.StatusInternalServerError, "storage failure")
}
