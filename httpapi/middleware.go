package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/authctx"
	apperrors "github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/extract"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/user"
)

// RequireAuth resolves the access token of the request to an active principal
// and stores it through authctx. Requests without a valid token are rejected
// with the error's status.
func (r *Router) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		cand, err := r.extractor.Access(extract.FromHTTP(c.Request, ""))
		if err != nil {
			r.fail(c, err)
			return
		}
		p, err := r.auth.IdentifyCurrent(c.Request.Context(), cand.Value)
		if err != nil {
			r.fail(c, err)
			return
		}
		ctx := authctx.WithPrincipal(c.Request.Context(), p)
		ctx = logger.ContextWithUserID(ctx, p.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireStaff admits staff and superusers. It must run after RequireAuth.
func (r *Router) RequireStaff() gin.HandlerFunc {
	return r.requireRole("staff", func(p *user.Principal) bool { return p.IsStaff || p.IsSuperuser })
}

// RequireSuperuser admits superusers only. It must run after RequireAuth.
func (r *Router) RequireSuperuser() gin.HandlerFunc {
	return r.requireRole("superuser", func(p *user.Principal) bool { return p.IsSuperuser })
}

func (r *Router) requireRole(role string, allowed func(*user.Principal) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := authctx.Principal(c.Request.Context())
		if !ok {
			r.fail(c, apperrors.NoTokenCandidate("access"))
			return
		}
		if !allowed(p) {
			r.fail(c, apperrors.Forbidden("").WithDetail("required_role", role))
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by RequireAuth.
func PrincipalFrom(c *gin.Context) (*user.Principal, bool) {
	return authctx.Principal(c.Request.Context())
}
