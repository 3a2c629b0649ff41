package httpapi

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/authctx"
	"github.com/kbukum/authkit/authn"
	apperrors "github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/extract"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/server"
	"github.com/kbukum/authkit/settings"
	"github.com/kbukum/authkit/token"
	"github.com/kbukum/authkit/user"
	"github.com/kbukum/authkit/validation"
)

// Authenticator is the flow set the router drives.
type Authenticator interface {
	Register(ctx context.Context, email, username, password string) (*authn.Registration, error)
	Authenticate(ctx context.Context, identity, password string) (token.Pair, error)
	Refresh(ctx context.Context, refreshToken string) (token.Pair, error)
	IdentifyCurrent(ctx context.Context, accessToken string) (*user.Principal, error)
	Logout(ctx context.Context, refreshToken string) error
}

var (
	_ Authenticator = (*authn.Service)(nil)
	_ Authenticator = (*authn.Blocking)(nil)
)

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.log = l.WithComponent("httpapi")
		}
	}
}

// Router serves register, login, refresh, logout and me.
type Router struct {
	auth      Authenticator
	settings  settings.Settings
	extractor *extract.Extractor
	log       *logger.Logger
}

// New creates a Router over auth. s must be the settings auth was built with.
func New(auth Authenticator, s settings.Settings, opts ...Option) *Router {
	r := &Router{
		auth:      auth,
		settings:  s,
		extractor: extract.New(s),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register mounts the routes on g.
func (r *Router) Register(g gin.IRoutes) {
	g.POST("/register", r.register)
	g.POST("/login", r.login)
	g.POST("/refresh", r.refresh)
	g.POST("/logout", r.logout)
	g.GET("/me", r.RequireAuth(), r.me)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=1024"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// registerResponse carries the pair fields only when tokens were issued.
type registerResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsActive bool   `json:"is_active"`
	IsStaff  bool   `json:"is_staff"`
	*token.Pair
}

type meResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

type logoutResponse struct {
	Logout string `json:"logout"`
	OK     bool   `json:"ok"`
}

func (r *Router) register(c *gin.Context) {
	var req registerRequest
	if !r.bind(c, &req, true) {
		return
	}
	reg, err := r.auth.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		r.fail(c, err)
		return
	}
	p := reg.Principal
	if reg.Tokens != nil && r.settings.SetCookieOnLogin {
		r.setCookies(c, *reg.Tokens)
	}
	server.RespondCreated(c, registerResponse{
		ID:       p.ID,
		Email:    p.Email,
		Username: p.Username,
		IsActive: p.IsActive,
		IsStaff:  p.IsStaff,
		Pair:     reg.Tokens,
	})
}

func (r *Router) login(c *gin.Context) {
	var req loginRequest
	if !r.bind(c, &req, true) {
		return
	}
	pair, err := r.auth.Authenticate(c.Request.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		r.fail(c, err)
		return
	}
	if r.settings.SetCookieOnLogin {
		r.setCookies(c, pair)
	}
	server.RespondOK(c, pair)
}

func (r *Router) refresh(c *gin.Context) {
	var req refreshRequest
	if !r.bind(c, &req, false) {
		return
	}
	cand, err := r.extractor.Refresh(extract.FromHTTP(c.Request, req.RefreshToken))
	if err != nil {
		r.fail(c, err)
		return
	}
	pair, err := r.auth.Refresh(c.Request.Context(), cand.Value)
	if err != nil {
		r.fail(c, err)
		return
	}
	if r.settings.SetCookieOnLogin {
		r.setCookies(c, pair)
	}
	server.RespondOK(c, pair)
}

// logout always succeeds for the caller. A presented refresh token is revoked
// when the service has a denylist; a revocation failure is logged only.
func (r *Router) logout(c *gin.Context) {
	var req refreshRequest
	_ = r.decode(c, &req)
	if cand, err := r.extractor.Refresh(extract.FromHTTP(c.Request, req.RefreshToken)); err == nil {
		if err := r.auth.Logout(c.Request.Context(), cand.Value); err != nil {
			r.log.WithContext(c.Request.Context()).Warn("Logout revocation failed", logger.ErrorFields("logout", err))
		}
	}
	r.clearCookies(c)
	server.RespondOK(c, logoutResponse{Logout: "success", OK: true})
}

func (r *Router) me(c *gin.Context) {
	p := authctx.MustPrincipal(c.Request.Context())
	server.RespondOK(c, meResponse{
		ID:          p.ID,
		Email:       p.Email,
		Username:    p.Username,
		IsStaff:     p.IsStaff,
		IsSuperuser: p.IsSuperuser,
	})
}

// bind decodes the JSON body into dst and validates it. An empty body is
// accepted when required is false.
func (r *Router) bind(c *gin.Context, dst any, required bool) bool {
	if err := r.decode(c, dst); err != nil {
		if required || !stderrors.Is(err, io.EOF) {
			r.fail(c, apperrors.InvalidInput("body", "request body must be a JSON object").WithCause(err))
			return false
		}
	}
	if err := validation.Validate(dst); err != nil {
		r.fail(c, err)
		return false
	}
	return true
}

func (r *Router) decode(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return io.EOF
	}
	return c.ShouldBindJSON(dst)
}

func (r *Router) fail(c *gin.Context, err error) {
	appErr := apperrors.Normalize(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		r.log.WithContext(c.Request.Context()).Error("Request failed", map[string]interface{}{
			logger.FieldError: err.Error(),
			"path":            c.FullPath(),
		})
	}
	server.RespondWithError(c, err)
}
