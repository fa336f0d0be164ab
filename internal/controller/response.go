package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace_v1_202610/internal/access"
	"marketplace_v1_202610/internal/api/dto"
	"marketplace_v1_202610/internal/service"
)

// ==================== 统一响应 ====================

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": data})
}

func fail(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"code": status, "message": message, "data": data})
}

// respondError 业务错误 → HTTP 状态码
func respondError(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		profileErr    *service.ProfileLookupError
		authErr       *service.AuthError
		uploadErr     *service.UploadError
		metadataErr   *service.MetadataWriteError
	)

	switch {
	case errors.As(err, &validationErr):
		fail(c, http.StatusBadRequest, validationErr.Message, nil)
	case errors.As(err, &profileErr):
		zap.S().Warnf("[Controller] %v", profileErr)
		fail(c, http.StatusForbidden, service.MsgRoleLookupFailed, gin.H{"redirect": access.RouteError})
	case errors.Is(err, service.ErrUnauthenticated):
		fail(c, http.StatusUnauthorized, service.ErrUnauthenticated.Error(), gin.H{"redirect": access.RouteSignIn})
	case errors.As(err, &authErr):
		fail(c, http.StatusForbidden, authErr.Error(), nil)
	case errors.As(err, &uploadErr):
		fail(c, http.StatusBadGateway, "Image upload failed, please try again", nil)
	case errors.As(err, &metadataErr):
		fail(c, http.StatusInternalServerError, "Saving product details failed", dto.UploadFailure{
			ProductID: metadataErr.ProductID,
			ObjectKey: metadataErr.ObjectKey,
		})
	case errors.Is(err, service.ErrProductNotFound):
		fail(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrNotProductOwner):
		fail(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrCatalogFetch):
		fail(c, http.StatusInternalServerError, service.ErrCatalogFetch.Error(), nil)
	default:
		zap.S().Errorf("[Controller] 未处理的错误: %v", err)
		fail(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// redirect 表单动作统一 303，浏览器改用 GET 访问目标页
func redirect(c *gin.Context, result service.Result) {
	c.Redirect(http.StatusSeeOther, result.RedirectURL())
}

// flash 读取重定向带回的提示
func flash(c *gin.Context) dto.Flash {
	return dto.Flash{
		Success: c.Query("success"),
		Error:   c.Query("error"),
	}
}
