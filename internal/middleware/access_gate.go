package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace_v1_202610/internal/access"
	"marketplace_v1_202610/internal/model"
	"marketplace_v1_202610/pkg/metrics"
)

// RoleLookup 角色查询能力
type RoleLookup interface {
	LookupRole(ctx context.Context, identityID string) (model.Role, error)
}

// AccessGate 页面门禁
// 需挂在 Session 之后；角色查询失败时按未知角色处理，由判定规则送往错误页
func AccessGate(roles RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		role := model.RoleUnknown
		if identity != nil {
			r, err := roles.LookupRole(c.Request.Context(), identity.ID)
			if err != nil {
				zap.S().Warnf("[AccessGate] 查询角色失败: identity=%s, err=%v", identity.ID, err)
			} else {
				role = r
			}
		}

		decision := access.Evaluate(identity, role, c.Request.URL.Path)
		if decision.Allow {
			metrics.AccessDecisions.WithLabelValues("allow").Inc()
			c.Next()
			return
		}

		metrics.AccessDecisions.WithLabelValues("redirect").Inc()
		c.Redirect(redirectStatus(c.Request.Method), decision.Target)
		c.Abort()
	}
}

// redirectStatus GET/HEAD 保留方法用 307，表单提交改为 303 避免重复提交到目标页
func redirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusTemporaryRedirect
	}
	return http.StatusSeeOther
}
