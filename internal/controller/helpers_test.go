package controller

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketplace_v1_202610/internal/middleware"
	"marketplace_v1_202610/internal/model"
	"marketplace_v1_202610/internal/repository"
	"marketplace_v1_202610/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv 真实服务 + sqlite + 本地存储
type testEnv struct {
	db      *gorm.DB
	auth    *service.LocalAuthProvider
	storage *service.LocalStorage
	router  *gin.Engine
	links   []string
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// asIdentity 测试用：通过请求头指定当前身份
const asIdentity = "X-Test-Identity"

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Profile{}, &model.Product{}, &model.AuthUser{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	storage, err := service.NewLocalStorage(&service.StorageConfig{
		Provider:   "local",
		BasePath:   t.TempDir(),
		PublicBase: "http://localhost:8080/uploads",
	})
	if err != nil {
		t.Fatalf("初始化存储失败: %v", err)
	}

	env := &testEnv{db: db, storage: storage}

	products := repository.NewProductRepository(db)
	roles := service.NewRoleDirectory(repository.NewProfileRepository(db))
	env.auth = service.NewLocalAuthProvider(repository.NewAuthUserRepository(db), middleware.NewJWTManager(nil))
	env.auth.SetLinkSender(func(_ string, _ service.VerifyType, link string) {
		env.links = append(env.links, link)
	})

	catalog := service.NewCatalogService(products, storage)
	authCtl := NewAuthController(service.NewCredentialService(env.auth, roles, "http://shop.test"), middleware.DefaultCookieConfig())
	userCtl := NewUserController(roles, catalog)
	productCtl := NewProductController(service.NewUploadService(products, roles, storage), catalog)

	r := gin.New()
	r.Use(middleware.Session(service.NewSessionResolver(env.auth), middleware.DefaultCookieConfig()), injectIdentity)

	r.GET("/error", authCtl.ErrorPage)
	r.GET("/sign-in", authCtl.SignInPage)
	r.GET("/protected/reset-password", authCtl.ResetPasswordPage)
	r.POST("/auth/sign-up", authCtl.SignUp)
	r.POST("/auth/sign-in", authCtl.SignIn)
	r.POST("/auth/forgot-password", authCtl.ForgotPassword)
	r.POST("/auth/reset-password", authCtl.ResetPassword)
	r.POST("/auth/sign-out", authCtl.SignOut)
	r.GET("/auth/callback", authCtl.Callback)

	r.GET("/customer", userCtl.CustomerHome)
	r.GET("/vendor", userCtl.VendorHome)
	r.GET("/admin", userCtl.AdminHome)
	r.PUT("/admin/users/:id/role", userCtl.AssignRole)

	r.GET("/vendor/products", productCtl.ListMine)
	r.POST("/vendor/products", productCtl.Upload)
	r.PATCH("/vendor/products/:id", productCtl.SetActive)
	r.GET("/admin/vendors/:vendor_id/products", productCtl.ListByVendor)

	env.router = r
	return env
}

// injectIdentity 没有会话时，允许测试直接指定身份
func injectIdentity(c *gin.Context) {
	if id := c.GetHeader(asIdentity); id != "" && middleware.GetIdentity(c) == nil {
		c.Set(middleware.ContextKeyIdentity, &model.Identity{ID: id})
	}
	c.Next()
}

func (e *testEnv) createProfile(t *testing.T, id string, role model.Role) {
	t.Helper()
	p := &model.Profile{Role: role, Email: id + "@example.com"}
	p.ID = id
	if err := e.db.Create(p).Error; err != nil {
		t.Fatalf("创建档案失败: %v", err)
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func multipartUpload(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	for name, data := range files {
		part, err := w.CreateFormFile(ImageField, name)
		if err != nil {
			t.Fatalf("构造上传表单失败: %v", err)
		}
		_, _ = part.Write(data)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/vendor/products", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v, body=%s", err, rec.Body.String())
	}
	return resp
}

func cookieValue(rec *httptest.ResponseRecorder, name string) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func linkToken(t *testing.T, link string) (tokenHash string, query url.Values) {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("解析验证链接失败: %v", err)
	}
	return u.Query().Get("token_hash"), u.Query()
}
