package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace_v1_202610/internal/model"
)

func newCredentialFixture(roles map[string]model.Role) (*CredentialService, *fakeAuthProvider, *fakeRoles) {
	provider := &fakeAuthProvider{}
	lookup := &fakeRoles{roles: roles}
	return NewCredentialService(provider, lookup, "https://shop.example.com/"), provider, lookup
}

// ==================== Result ====================

func TestResult_RedirectURL(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{"错误提示", errorResult("/sign-in", MsgCredentialsRequired), "/sign-in?error=Email+and+password+are+required"},
		{"成功提示", successResult("/forgot-password", MsgResetEmailSent), "/forgot-password?success=Check+your+email+for+a+link+to+reset+your+password."},
		{"无提示", Result{Kind: ResultSuccess, Destination: "/vendor"}, "/vendor"},
		{"已有查询参数", errorResult("/sign-in?next=1", "x"), "/sign-in?next=1&error=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.RedirectURL())
		})
	}
}

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"/protected/reset-password", true},
		{"/vendor/products?tab=1", true},
		{"", false},
		{"https://evil.example.com", false},
		{"//evil.example.com/x", false},
		{"/\\evil.example.com", false},
		{"vendor", false},
	}
	for _, tt := range tests {
		_, ok := SafeRedirectPath(tt.in)
		if ok != tt.ok {
			t.Errorf("SafeRedirectPath(%q) ok = %v, 期望 %v", tt.in, ok, tt.ok)
		}
	}
}

// ==================== SignUp ====================

func TestSignUp_MissingFields(t *testing.T) {
	svc, provider, _ := newCredentialFixture(nil)

	for _, in := range []SignUpInput{
		{Email: "", Password: "secret1"},
		{Email: "a@b.com", Password: ""},
		{Email: "   ", Password: "secret1"},
	} {
		r := svc.SignUp(context.Background(), in)
		assert.Equal(t, ResultError, r.Kind)
		assert.Equal(t, "/sign-up", r.Destination)
		assert.Equal(t, MsgCredentialsRequired, r.Message)
	}
	assert.Empty(t, provider.calls, "缺少字段时不应调用认证服务")
}

func TestSignUp_ProviderRejects(t *testing.T) {
	svc, provider, _ := newCredentialFixture(nil)
	provider.signUpErr = &AuthError{Message: "User already registered"}

	r := svc.SignUp(context.Background(), SignUpInput{Email: "a@b.com", Password: "secret1"})
	assert.Equal(t, errorResult("/sign-up", "User already registered"), r)
}

func TestSignUp_ProviderUnavailable(t *testing.T) {
	svc, provider, _ := newCredentialFixture(nil)
	provider.signUpErr = errors.New("dial tcp: connection refused")

	r := svc.SignUp(context.Background(), SignUpInput{Email: "a@b.com", Password: "secret1"})
	assert.Equal(t, ResultError, r.Kind)
	assert.Equal(t, MsgAuthUnavailable, r.Message)
}

func TestSignUp_Success(t *testing.T) {
	svc, provider, _ := newCredentialFixture(nil)

	r := svc.SignUp(context.Background(), SignUpInput{
		Email:    "vendor@example.com",
		Password: "secret1",
		Role:     "vendor",
		Origin:   "http://localhost:3000",
	})

	assert.Equal(t, successResult("/sign-up", MsgSignUpSuccess), r)
	assert.Equal(t, "http://localhost:3000/auth/callback", provider.lastRedirect)
	assert.Equal(t, map[string]interface{}{"role": "vendor"}, provider.lastMetadata)
}

func TestSignUp_AdminHintIgnored(t *testing.T) {
	svc, provider, _ := newCredentialFixture(nil)

	r := svc.SignUp(context.Background(), SignUpInput{Email: "a@b.com", Password: "secret1", Role: "admin"})
	assert.True(t, r.OK())
	assert.Nil(t, provider.lastMetadata)
	assert.Equal(t, "https://shop.example.com/auth/callback", provider.lastRedirect)
}

// ==================== SignIn ====================

func TestSignIn_MissingFields(t *testing.T) {
	svc, provider, _ := newCredentialFixture(nil)

	r, session := svc.SignIn(context.Background(), "", "")
	assert.Equal(t, errorResult("/sign-in", MsgCredentialsRequired), r)
	assert.Nil(t, session)
	assert.Empty(t, provider.calls)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	svc, provider, _ := newCredentialFixture(nil)
	provider.signInErr = &AuthError{Message: ErrInvalidCredentials.Error(), Err: ErrInvalidCredentials}

	r, session := svc.SignIn(context.Background(), "a@b.com", "wrong")
	assert.Equal(t, errorResult("/sign-in", "Invalid login credentials"), r)
	assert.Nil(t, session)
}

func TestSignIn_RoutesByRole(t *testing.T) {
	tests := []struct {
		role model.Role
		dest string
	}{
		{model.RoleCustomer, "/customer"},
		{model.RoleVendor, "/vendor"},
		{model.RoleAdmin, "/admin"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			svc, provider, _ := newCredentialFixture(map[string]model.Role{"u1": tt.role})
			provider.session = &model.Session{AccessToken: "at", RefreshToken: "rt", User: &model.Identity{ID: "u1"}}

			r, session := svc.SignIn(context.Background(), "a@b.com", "secret1")
			require.NotNil(t, session)
			assert.Equal(t, ResultSuccess, r.Kind)
			assert.Equal(t, tt.dest, r.Destination)
			assert.Empty(t, r.Message)
			assert.Equal(t, tt.dest, r.RedirectURL())
		})
	}
}

func TestSignIn_RoleLookupFailed(t *testing.T) {
	svc, provider, roles := newCredentialFixture(nil)
	roles.err = errStoreDown
	provider.session = &model.Session{AccessToken: "at", User: &model.Identity{ID: "u1"}}

	r, session := svc.SignIn(context.Background(), "a@b.com", "secret1")
	assert.Equal(t, errorResult("/sign-in", MsgRoleLookupFailed), r)
	assert.Nil(t, session)
	assert.Equal(t, []string{"at"}, provider.signedOut, "角色查询失败时应注销刚拿到的会话")
}

func TestSignIn_ProfileMissing(t *testing.T) {
	svc, provider, _ := newCredentialFixture(map[string]model.Role{})
	provider.session = &model.Session{AccessToken: "at", User: &model.Identity{ID: "u1"}}

	r, session := svc.SignIn(context.Background(), "a@b.com", "secret1")
	assert.Equal(t, MsgRoleLookupFailed, r.Message)
	assert.Nil(t, session)
}

func TestSignIn_UnknownRole(t *testing.T) {
	svc, provider, _ := newCredentialFixture(map[string]model.Role{"u1": model.RoleUnknown})
	provider.session = &model.Session{AccessToken: "at", User: &model.Identity{ID: "u1"}}

	r, session := svc.SignIn(context.Background(), "a@b.com", "secret1")
	assert.Equal(t, errorResult("/sign-in", MsgUnknownRole), r)
	assert.Nil(t, session)
}

// ==================== 找回密码 ====================

func TestRequestPasswordReset_EmptyEmail(t *testing.T) {
	svc, provider, _ := newCredentialFixture(nil)

	r := svc.RequestPasswordReset(context.Background(), "", "", "")
	assert.Equal(t, errorResult("/forgot-password", MsgEmailRequired), r)
	assert.False(t, provider.called("ResetPasswordForEmail"))
}

func TestRequestPasswordReset_AlwaysGeneric(t *testing.T) {
	for _, providerErr := range []error{nil, &AuthError{Message: "User not found"}, errors.New("timeout")} {
		svc, provider, _ := newCredentialFixture(nil)
		provider.resetErr = providerErr

		r := svc.RequestPasswordReset(context.Background(), "a@b.com", "http://localhost:3000", "")
		assert.Equal(t, successResult("/forgot-password", MsgResetEmailSent), r)
		assert.Equal(t, "http://localhost:3000/auth/callback?redirect_to=/protected/reset-password", provider.lastRedirect)
	}
}

func TestRequestPasswordReset_CallbackURL(t *testing.T) {
	svc, _, _ := newCredentialFixture(nil)

	r := svc.RequestPasswordReset(context.Background(), "a@b.com", "", "/customer")
	assert.Equal(t, "/customer", r.RedirectURL())

	r = svc.RequestPasswordReset(context.Background(), "a@b.com", "", "https://evil.example.com")
	assert.Equal(t, "/forgot-password", r.Destination)
	assert.Equal(t, MsgResetEmailSent, r.Message)
}

// ==================== 重置密码 ====================

func TestConfirmPasswordReset(t *testing.T) {
	session := &model.Session{AccessToken: "at", User: &model.Identity{ID: "u1"}}

	tests := []struct {
		name      string
		session   *model.Session
		password  string
		confirm   string
		updateErr error
		want      Result
	}{
		{"缺少密码", session, "", "x", nil, errorResult("/protected/reset-password", MsgPasswordsRequired)},
		{"缺少确认", session, "x", "", nil, errorResult("/protected/reset-password", MsgPasswordsRequired)},
		{"不一致", session, "secret1", "secret2", nil, errorResult("/protected/reset-password", MsgPasswordsMismatch)},
		{"无会话", nil, "secret1", "secret1", nil, errorResult("/protected/reset-password", MsgPasswordUpdateFailed)},
		{"认证服务拒绝", session, "secret1", "secret1", &AuthError{Message: "weak"}, errorResult("/protected/reset-password", MsgPasswordUpdateFailed)},
		{"成功", session, "secret1", "secret1", nil, successResult("/protected/reset-password", MsgPasswordUpdated)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, provider, _ := newCredentialFixture(nil)
			provider.updateErr = tt.updateErr

			got := svc.ConfirmPasswordReset(context.Background(), tt.session, tt.password, tt.confirm)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ==================== 退出 / 邮件链接 ====================

func TestSignOut(t *testing.T) {
	svc, provider, _ := newCredentialFixture(nil)

	r := svc.SignOut(context.Background(), &model.Session{AccessToken: "at"})
	assert.Equal(t, "/sign-in", r.RedirectURL())
	assert.Equal(t, []string{"at"}, provider.signedOut)

	r = svc.SignOut(context.Background(), nil)
	assert.Equal(t, "/sign-in", r.RedirectURL())
}

func TestVerifyEmailLink(t *testing.T) {
	svc, provider, _ := newCredentialFixture(nil)
	provider.session = &model.Session{AccessToken: "at", User: &model.Identity{ID: "u1"}}

	r, session := svc.VerifyEmailLink(context.Background(), "tok", "recovery", "")
	require.NotNil(t, session)
	assert.Equal(t, "/protected/reset-password", r.RedirectURL())

	r, _ = svc.VerifyEmailLink(context.Background(), "tok", "signup", "")
	assert.Equal(t, "/", r.RedirectURL())

	r, _ = svc.VerifyEmailLink(context.Background(), "tok", "signup", "https://evil.example.com")
	assert.Equal(t, "/", r.RedirectURL())

	r, session = svc.VerifyEmailLink(context.Background(), "", "signup", "")
	assert.Nil(t, session)
	assert.Equal(t, ResultError, r.Kind)

	r, session = svc.VerifyEmailLink(context.Background(), "tok", "magic", "")
	assert.Nil(t, session)
	assert.Equal(t, "/sign-in", r.Destination)
}
