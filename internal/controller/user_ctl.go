package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace_v1_202610/internal/api/dto"
	"marketplace_v1_202610/internal/middleware"
	"marketplace_v1_202610/internal/model"
	"marketplace_v1_202610/internal/service"
)

// ==================== UserController 角色首页 ====================

// UserController 各角色首页
type UserController struct {
	roleDirectory  *service.RoleDirectory
	catalogService *service.CatalogService
}

// NewUserController 创建用户控制器
func NewUserController(roles *service.RoleDirectory, catalog *service.CatalogService) *UserController {
	return &UserController{roleDirectory: roles, catalogService: catalog}
}

// CustomerHome 顾客首页：全部上架商品
// @Summary 顾客首页
// @Tags Customer
// @Produce json
// @Success 200 {object} dto.ProductListResp
// @Router /customer [get]
func (c *UserController) CustomerHome(ctx *gin.Context) {
	products, err := c.catalogService.ListAll(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	success(ctx, dto.ProductListResp{List: products, Total: len(products)})
}

// VendorHome 商家首页：档案信息
// @Summary 商家首页
// @Tags Vendor
// @Produce json
// @Success 200 {object} dto.ProfileInfo
// @Failure 403 {object} map[string]interface{}
// @Router /vendor [get]
func (c *UserController) VendorHome(ctx *gin.Context) {
	c.profile(ctx)
}

// AdminHome 管理后台概览：各角色用户数与上架商品数
// @Summary 管理后台概览
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.AdminSummary
// @Router /admin [get]
func (c *UserController) AdminHome(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	counts, err := c.roleDirectory.CountByRole(reqCtx)
	if err != nil {
		respondError(ctx, err)
		return
	}
	active, err := c.catalogService.CountActive(reqCtx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	users := make(map[string]int64, len(counts))
	for role, n := range counts {
		users[role.String()] += n
	}
	success(ctx, dto.AdminSummary{Users: users, ActiveProducts: active})
}

// AssignRole 指定用户角色
// @Summary 指定用户角色
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "用户ID"
// @Param request body dto.AssignRoleRequest true "角色"
// @Success 200 {object} dto.ProfileInfo
// @Failure 400 {object} map[string]interface{}
// @Router /admin/users/{id}/role [put]
func (c *UserController) AssignRole(ctx *gin.Context) {
	var req dto.AssignRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, http.StatusBadRequest, "role is required", nil)
		return
	}

	profile, err := c.roleDirectory.AssignRole(ctx.Request.Context(), ctx.Param("id"), model.ParseRole(req.Role))
	if err != nil {
		respondError(ctx, err)
		return
	}
	success(ctx, toProfileInfo(&model.Identity{ID: profile.ID}, profile))
}

func (c *UserController) profile(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)
	if identity == nil {
		respondError(ctx, service.ErrUnauthenticated)
		return
	}

	profile, err := c.roleDirectory.Profile(ctx.Request.Context(), identity.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	success(ctx, toProfileInfo(identity, profile))
}

func toProfileInfo(identity *model.Identity, p *model.Profile) dto.ProfileInfo {
	email := p.Email
	if email == "" {
		email = identity.Email
	}
	return dto.ProfileInfo{
		ID:        p.ID,
		Email:     email,
		Role:      p.Role.String(),
		Username:  p.Username,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
	}
}
