package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"marketplace_v1_202610/internal/access"
	"marketplace_v1_202610/internal/controller"
	"marketplace_v1_202610/internal/middleware"

	_ "marketplace_v1_202610/docs"
)

// Controllers 路由依赖的控制器
type Controllers struct {
	Auth    *controller.AuthController
	User    *controller.UserController
	Product *controller.ProductController
	Task    *controller.TaskController // 为空时不挂载任务管理路由
}

// Options 路由中间件依赖
type Options struct {
	Sessions    middleware.SessionResolver
	Roles       middleware.RoleLookup
	Cookies     middleware.CookieConfig
	Limiter     *middleware.KeyedLimiter
	UploadsRoot string // 本地存储根目录，为空时不挂载静态文件
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctl Controllers, opts Options) {
	// 1. 运维路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.UploadsRoot != "" {
		r.Static("/uploads", opts.UploadsRoot)
	}

	limiter := opts.Limiter
	if limiter == nil {
		limiter = middleware.NewCredentialLimiter()
	}

	// 2. 会话解析对以下所有路由生效
	app := r.Group("", middleware.Session(opts.Sessions, opts.Cookies))

	// 门禁之外：错误页、表单动作、邮件回调、重置密码页
	app.GET(access.RouteError, ctl.Auth.ErrorPage)
	app.GET(access.RouteResetPassword, ctl.Auth.ResetPasswordPage)

	auth := app.Group("/auth")
	{
		auth.POST("/sign-up", middleware.CredentialLimiter(limiter, access.RouteSignUp), ctl.Auth.SignUp)
		auth.POST("/sign-in", middleware.CredentialLimiter(limiter, access.RouteSignIn), ctl.Auth.SignIn)
		auth.POST("/forgot-password", middleware.CredentialLimiter(limiter, access.RouteForgotPassword), ctl.Auth.ForgotPassword)
		auth.POST("/reset-password", middleware.CredentialLimiter(limiter, access.RouteResetPassword), ctl.Auth.ResetPassword)
		auth.POST("/sign-out", ctl.Auth.SignOut)
		auth.GET("/callback", ctl.Auth.Callback)
	}

	// 3. 门禁内页面
	gated := app.Group("", middleware.AccessGate(opts.Roles))
	{
		// 根路径总会被门禁重定向到登录页或角色首页
		gated.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, access.RouteSignIn)
		})
		gated.GET(access.RouteSignIn, ctl.Auth.SignInPage)
		gated.GET(access.RouteSignUp, ctl.Auth.SignUpPage)
		gated.GET(access.RouteForgotPassword, ctl.Auth.ForgotPasswordPage)

		customer := gated.Group("/customer")
		{
			customer.GET("", ctl.User.CustomerHome)
			customer.GET("/products", ctl.Product.ListAll)
		}

		vendor := gated.Group("/vendor")
		{
			vendor.GET("", ctl.User.VendorHome)
			vendor.GET("/products", ctl.Product.ListMine)
			vendor.POST("/products", ctl.Product.Upload)
			vendor.PATCH("/products/:id", ctl.Product.SetActive)
		}

		admin := gated.Group("/admin")
		{
			admin.GET("", ctl.User.AdminHome)
			admin.GET("/products", ctl.Product.ListAll)
			admin.GET("/vendors/:vendor_id/products", ctl.Product.ListByVendor)
			admin.PUT("/users/:id/role", ctl.User.AssignRole)
			if ctl.Task != nil {
				admin.GET("/tasks", ctl.Task.Status)
				admin.POST("/orphan-sweep", ctl.Task.SweepOrphans)
			}
		}
	}
}
