package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ladle/internal/core/apperror"
	appctx "ladle/internal/core/context"
)

const (
	// TenantHeader is the HTTP header for tenant identification.
	TenantHeader = "X-Tenant-ID"

	// UserHeader carries the acting user resolved by the upstream
	// gateway. Authentication itself happens there, not here.
	UserHeader = "X-User-ID"
)

// Actor middleware resolves the acting tenant and user from headers and
// injects the ActorContext every tenant-scoped query depends on.
// It MUST run before any handler touching storage.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawTenantID := c.GetHeader(TenantHeader)
		if rawTenantID == "" {
			_ = c.Error(
				apperror.NewValidation("tenant is required").
					WithDetail("header", TenantHeader),
			)
			c.Abort()
			return
		}

		tenantUUID, err := uuid.Parse(rawTenantID)
		if err != nil {
			_ = c.Error(
				apperror.NewValidation("invalid tenant id").
					WithDetail("header", TenantHeader).
					WithDetail("value", rawTenantID),
			)
			c.Abort()
			return
		}

		actor := &appctx.ActorContext{
			TenantID: tenantUUID.String(),
			UserID:   c.GetHeader(UserHeader),
		}

		ctx := appctx.WithActor(c.Request.Context(), actor)
		c.Request = c.Request.WithContext(ctx)
		c.Set("tenant_id", actor.TenantID)

		c.Next()
	}
}
