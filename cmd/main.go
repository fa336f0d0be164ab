package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketplace_v1_202610/internal/config"
	"marketplace_v1_202610/internal/controller"
	"marketplace_v1_202610/internal/middleware"
	"marketplace_v1_202610/internal/model"
	"marketplace_v1_202610/internal/repository"
	"marketplace_v1_202610/internal/router"
	"marketplace_v1_202610/internal/service"
	"marketplace_v1_202610/internal/task"
	"marketplace_v1_202610/pkg/database"
	"marketplace_v1_202610/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "marketplace",
		Usage: "多角色商城服务",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "启动 HTTP 服务",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "建表并执行 SQL 迁移",
				Action: runMigrate,
			},
			{
				Name:  "sweep-orphans",
				Usage: "清理没有商品行引用的图片",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dry-run", Usage: "只列出孤儿对象，不删除"},
				},
				Action: runSweep,
			},
		},
		// 不带子命令时直接启动服务
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		os.Exit(1)
	}
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	Config      *config.Config
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers router.Controllers
	Limiter     *middleware.KeyedLimiter
	Cookies     middleware.CookieConfig
}

// Repositories 仓库集合
type Repositories struct {
	Profile  repository.ProfileRepository
	Product  repository.ProductRepository
	AuthUser repository.AuthUserRepository
}

// Services 服务集合
type Services struct {
	Auth       service.AuthProvider
	Storage    service.StorageProvider
	Roles      *service.RoleDirectory
	Sessions   *service.SessionResolver
	Credential *service.CredentialService
	Upload     *service.UploadService
	Catalog    *service.CatalogService
}

// models 需要 AutoMigrate 的表
var models = []interface{}{
	&model.Profile{},
	&model.Product{},
	&model.AuthUser{},
}

// ==================== 命令 ====================

func runServe(_ *cli.Context) error {
	cfg, cleanup, err := initBase()
	if err != nil {
		return err
	}
	defer cleanup()

	// 1. 初始化数据库
	db, err := database.InitDB(cfg.DatabaseDSN, cfg.IsDevelopment())
	if err != nil {
		return err
	}
	defer database.Close(db)

	// 开发环境启动时自动建表和迁移，生产环境需先执行 migrate
	if cfg.IsDevelopment() {
		if err := database.QuickInit(db, models); err != nil {
			return err
		}
	}

	// 2. 初始化依赖
	deps, err := initDependencies(cfg, db)
	if err != nil {
		return err
	}

	// 3. 启动后台任务
	tm := task.NewTaskManager(&task.TaskManagerDeps{
		ProductRepo: deps.Repos.Product,
		Storage:     deps.Services.Storage,
		Limiter:     deps.Limiter,
	}, &task.TaskManagerConfig{
		OrphanEnabled: true,
		OrphanTTL:     cfg.OrphanTTL,
		OrphanSpec:    cfg.OrphanSweepCron,
		LimiterIdle:   10 * time.Minute,
		LimiterSpec:   task.DefaultConfig().LimiterSpec,
	})
	if err := tm.Start(); err != nil {
		return err
	}
	defer tm.Stop()
	deps.Controllers.Task = controller.NewTaskController(tm)

	// 4. 初始化路由
	r := setupRouter(deps)

	// 5. 启动服务
	return startServer(r, cfg.ServerPort)
}

func runMigrate(c *cli.Context) error {
	cfg, cleanup, err := initBase()
	if err != nil {
		return err
	}
	defer cleanup()

	db, err := database.InitDB(cfg.DatabaseDSN, cfg.IsDevelopment())
	if err != nil {
		return err
	}
	defer database.Close(db)

	return database.NewInitializer(db, database.InitOptions{Models: models}).Initialize(c.Context)
}

func runSweep(c *cli.Context) error {
	cfg, cleanup, err := initBase()
	if err != nil {
		return err
	}
	defer cleanup()

	db, err := database.InitDB(cfg.DatabaseDSN, cfg.IsDevelopment())
	if err != nil {
		return err
	}
	defer database.Close(db)

	storage, err := initStorage(cfg)
	if err != nil {
		return err
	}

	sweeper := task.NewOrphanSweepTask(repository.NewProductRepository(db), storage, cfg.OrphanTTL, cfg.OrphanSweepCron)
	report, err := sweeper.Sweep(c.Context, c.Bool("dry-run"))
	if err != nil {
		return err
	}

	for _, key := range report.Orphans {
		fmt.Println(key)
	}
	zap.S().Infof("[Sweep] 扫描 %d, 跳过 %d, 未过期 %d, 孤儿 %d, 删除 %d, 失败 %d (dry-run=%v)",
		report.Scanned, report.Skipped, report.Fresh, len(report.Orphans), report.Deleted, report.Failed, report.DryRun)
	return nil
}

// ==================== 初始化 ====================

// initBase 加载配置并安装全局日志
func initBase() (*config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	flush, err := logger.Init(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, flush, nil
}

func initDependencies(cfg *config.Config, db *gorm.DB) (*Dependencies, error) {
	repos := initRepositories(db)

	storage, err := initStorage(cfg)
	if err != nil {
		return nil, err
	}

	auth := initAuthProvider(cfg, repos)
	roles := service.NewRoleDirectory(repos.Profile)
	catalog := service.NewCatalogService(repos.Product, storage)

	svc := &Services{
		Auth:       auth,
		Storage:    storage,
		Roles:      roles,
		Sessions:   service.NewSessionResolver(auth),
		Credential: service.NewCredentialService(auth, roles, cfg.SiteURL),
		Upload:     service.NewUploadService(repos.Product, roles, storage),
		Catalog:    catalog,
	}

	cookies := middleware.DefaultCookieConfig()
	cookies.Secure = cfg.CookieSecure

	return &Dependencies{
		Config:      cfg,
		DB:          db,
		Repos:       repos,
		Services:    svc,
		Controllers: initControllers(svc, cookies),
		Limiter:     middleware.NewCredentialLimiter(),
		Cookies:     cookies,
	}, nil
}

func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Profile:  repository.NewProfileRepository(db),
		Product:  repository.NewProductRepository(db),
		AuthUser: repository.NewAuthUserRepository(db),
	}
}

func initStorage(cfg *config.Config) (service.StorageProvider, error) {
	storage, err := service.NewStorageProvider(&service.StorageConfig{
		Provider:   cfg.Storage.Provider,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		PublicBase: cfg.Storage.PublicBase,
		BasePath:   cfg.Storage.BasePath,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化存储失败: %w", err)
	}
	return storage, nil
}

func initAuthProvider(cfg *config.Config, repos *Repositories) service.AuthProvider {
	if cfg.AuthProvider == "local" {
		jwtCfg := middleware.DefaultJWTConfig()
		if cfg.JWTSecret != "" {
			jwtCfg.SecretKey = cfg.JWTSecret
		} else {
			zap.S().Warn("[Auth] 未配置 JWT_SECRET，使用默认密钥")
		}
		zap.S().Info("[Auth] 使用本地认证")
		return service.NewLocalAuthProvider(repos.AuthUser, middleware.NewJWTManager(jwtCfg))
	}

	zap.S().Infof("[Auth] 使用托管认证: %s", cfg.SupabaseURL)
	return service.NewSupabaseAuthProvider(&service.SupabaseAuthConfig{
		BaseURL: cfg.SupabaseURL,
		AnonKey: cfg.SupabaseAnonKey,
	})
}

func initControllers(svc *Services, cookies middleware.CookieConfig) router.Controllers {
	return router.Controllers{
		Auth:    controller.NewAuthController(svc.Credential, cookies),
		User:    controller.NewUserController(svc.Roles, svc.Catalog),
		Product: controller.NewProductController(svc.Upload, svc.Catalog),
	}
}

func setupRouter(deps *Dependencies) *gin.Engine {
	if !deps.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.MaxMultipartMemory = 8 << 20

	opts := router.Options{
		Sessions: deps.Services.Sessions,
		Roles:    deps.Services.Roles,
		Cookies:  deps.Cookies,
		Limiter:  deps.Limiter,
	}
	if local, ok := deps.Services.Storage.(*service.LocalStorage); ok {
		opts.UploadsRoot = local.Root()
	}

	router.InitRoutes(r, deps.Controllers, opts)
	return r
}

// ==================== 服务启动 ====================

// startServer 启动服务，收到 SIGINT/SIGTERM 后优雅关闭
func startServer(r *gin.Engine, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("服务启动失败: %w", err)
	case <-quit:
	}

	zap.S().Info("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("服务强制关闭: %w", err)
	}

	zap.S().Info("服务已退出")
	return nil
}
