package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketplace_v1_202610/internal/model"
	"marketplace_v1_202610/internal/repository"
)

// ==================== 测试数据库 ====================

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Profile{}, &model.Product{}, &model.AuthUser{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

func createProfile(t *testing.T, db *gorm.DB, id string, role model.Role) {
	t.Helper()
	p := &model.Profile{Role: role, Email: id + "@example.com"}
	p.ID = id
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("创建档案失败: %v", err)
	}
}

// ==================== 内存存储 ====================

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

type memStorage struct {
	mu        sync.Mutex
	objects   map[string]memObject
	uploadErr error
	deleteErr error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string]memObject)}
}

func (s *memStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memObject{data: data, contentType: contentType, modified: time.Now()}
	return nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStorage) PublicURL(key string) string {
	return "https://cdn.example.com/product-images/" + key
}

func (s *memStorage) List(ctx context.Context, prefix string, fn func(ObjectInfo) error) error {
	s.mu.Lock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	infos := make([]ObjectInfo, 0, len(keys))
	for _, k := range keys {
		o := s.objects[k]
		infos = append(infos, ObjectInfo{Key: k, Size: int64(len(o.data)), LastModified: o.modified})
	}
	s.mu.Unlock()

	for _, info := range infos {
		if err := fn(info); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStorage) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *memStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// ==================== 故障注入 ====================

var errStoreDown = errors.New("store unavailable")

// failingProductRepo 在真实仓库外包一层，按需让写入或读取失败
type failingProductRepo struct {
	repository.ProductRepository
	failUpsert bool
	failList   bool
	failGet    bool
}

func (r *failingProductRepo) Upsert(ctx context.Context, p *model.Product) error {
	if r.failUpsert {
		return errStoreDown
	}
	return r.ProductRepository.Upsert(ctx, p)
}

func (r *failingProductRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if r.failGet {
		return nil, errStoreDown
	}
	return r.ProductRepository.GetByID(ctx, id)
}

func (r *failingProductRepo) ListActive(ctx context.Context) ([]model.Product, error) {
	if r.failList {
		return nil, errStoreDown
	}
	return r.ProductRepository.ListActive(ctx)
}

func (r *failingProductRepo) ListByVendor(ctx context.Context, vendorID string) ([]model.Product, error) {
	if r.failList {
		return nil, errStoreDown
	}
	return r.ProductRepository.ListByVendor(ctx, vendorID)
}

// ==================== 伪认证服务 ====================

type fakeAuthProvider struct {
	signUpErr error
	signInErr error
	resetErr  error
	updateErr error
	verifyErr error
	session   *model.Session
	users     map[string]*model.Identity // access token -> identity
	refreshed map[string]*model.Session  // refresh token -> session

	calls         []string
	lastRedirect  string
	lastMetadata  map[string]interface{}
	signedOut     []string
	updatedPasswd string
}

func (f *fakeAuthProvider) SignUp(ctx context.Context, email, password, redirectTo string, metadata map[string]interface{}) (*model.Identity, error) {
	f.calls = append(f.calls, "SignUp")
	f.lastRedirect = redirectTo
	f.lastMetadata = metadata
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &model.Identity{ID: "new-user", Email: email}, nil
}

func (f *fakeAuthProvider) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error) {
	f.calls = append(f.calls, "SignInWithPassword")
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.session, nil
}

func (f *fakeAuthProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	f.calls = append(f.calls, "ResetPasswordForEmail")
	f.lastRedirect = redirectTo
	return f.resetErr
}

func (f *fakeAuthProvider) UpdateUser(ctx context.Context, accessToken, password string) error {
	f.calls = append(f.calls, "UpdateUser")
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedPasswd = password
	return nil
}

func (f *fakeAuthProvider) SignOut(ctx context.Context, accessToken string) error {
	f.calls = append(f.calls, "SignOut")
	f.signedOut = append(f.signedOut, accessToken)
	return nil
}

func (f *fakeAuthProvider) GetUser(ctx context.Context, accessToken string) (*model.Identity, error) {
	f.calls = append(f.calls, "GetUser")
	if u, ok := f.users[accessToken]; ok {
		return u, nil
	}
	return nil, &AuthError{Message: ErrInvalidSession.Error(), Err: ErrInvalidSession}
}

func (f *fakeAuthProvider) GetSession(ctx context.Context, accessToken string) (*model.Session, error) {
	u, err := f.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &model.Session{AccessToken: accessToken, User: u}, nil
}

func (f *fakeAuthProvider) RefreshSession(ctx context.Context, refreshToken string) (*model.Session, error) {
	f.calls = append(f.calls, "RefreshSession")
	if s, ok := f.refreshed[refreshToken]; ok {
		return s, nil
	}
	return nil, &AuthError{Message: ErrInvalidSession.Error(), Err: ErrInvalidSession}
}

func (f *fakeAuthProvider) VerifyOTP(ctx context.Context, tokenHash string, verifyType VerifyType) (*model.Session, error) {
	f.calls = append(f.calls, "VerifyOTP")
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.session, nil
}

func (f *fakeAuthProvider) called(name string) bool {
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

// fakeRoles 固定返回的角色查询
type fakeRoles struct {
	roles map[string]model.Role
	err   error
}

func (r *fakeRoles) LookupRole(ctx context.Context, id string) (model.Role, error) {
	if r.err != nil {
		return model.RoleUnknown, &ProfileLookupError{IdentityID: id, Err: r.err}
	}
	role, ok := r.roles[id]
	if !ok {
		return model.RoleUnknown, &ProfileLookupError{IdentityID: id}
	}
	return role, nil
}

func imageBody(n int) *bytes.Reader {
	return bytes.NewReader(bytes.Repeat([]byte{0xFF}, n))
}
