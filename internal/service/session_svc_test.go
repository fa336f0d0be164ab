package service

import (
	"context"
	"errors"
	"testing"

	"marketplace_v1_202610/internal/model"
	"marketplace_v1_202610/internal/repository"
)

func TestSessionResolver_Resolve(t *testing.T) {
	alice := &model.Identity{ID: "alice"}
	provider := &fakeAuthProvider{
		users: map[string]*model.Identity{"valid": alice},
		refreshed: map[string]*model.Session{
			"good-refresh": {AccessToken: "new-access", RefreshToken: "new-refresh", User: alice},
		},
	}
	r := NewSessionResolver(provider)
	ctx := context.Background()

	// 无 Token
	if id, s := r.Resolve(ctx, "", ""); id != nil || s != nil {
		t.Errorf("无 Token 应为匿名")
	}

	// 有效 Access Token
	id, s := r.Resolve(ctx, "valid", "good-refresh")
	if id == nil || id.ID != "alice" || s != nil {
		t.Errorf("有效 Token 应直接解析，无需刷新: id=%v session=%v", id, s)
	}

	// 过期 Access Token，刷新成功
	id, s = r.Resolve(ctx, "expired", "good-refresh")
	if id == nil || id.ID != "alice" {
		t.Fatalf("刷新后应解析出身份")
	}
	if s == nil || s.AccessToken != "new-access" {
		t.Errorf("刷新后应返回新会话供回写 Cookie")
	}

	// 刷新失败
	if id, s := r.Resolve(ctx, "expired", "bad-refresh"); id != nil || s != nil {
		t.Errorf("刷新失败应为匿名")
	}

	// 只有 Refresh Token
	if id, _ := r.Resolve(ctx, "", "good-refresh"); id == nil {
		t.Errorf("只有 Refresh Token 时也应尝试刷新")
	}
}

func TestRoleDirectory_LookupRole(t *testing.T) {
	db := setupServiceTestDB(t)
	createProfile(t, db, "v1", model.RoleVendor)
	createProfile(t, db, "odd", model.Role("superuser"))
	dir := NewRoleDirectory(repository.NewProfileRepository(db))
	ctx := context.Background()

	role, err := dir.LookupRole(ctx, "v1")
	if err != nil || role != model.RoleVendor {
		t.Errorf("LookupRole(v1) = %v, %v", role, err)
	}

	role, err = dir.LookupRole(ctx, "odd")
	if err != nil || role != model.RoleUnknown {
		t.Errorf("无法识别的角色应解析为 unknown: %v, %v", role, err)
	}

	_, err = dir.LookupRole(ctx, "missing")
	var lookupErr *ProfileLookupError
	if !errors.As(err, &lookupErr) || lookupErr.IdentityID != "missing" {
		t.Errorf("档案不存在应返回 ProfileLookupError，实际 %v", err)
	}

	counts, err := dir.CountByRole(ctx)
	if err != nil {
		t.Fatalf("CountByRole: %v", err)
	}
	if counts[model.RoleVendor] != 1 || counts[model.RoleUnknown] != 1 {
		t.Errorf("CountByRole = %v", counts)
	}
}

func TestRoleDirectory_AssignRole(t *testing.T) {
	db := setupServiceTestDB(t)
	dir := NewRoleDirectory(repository.NewProfileRepository(db))
	ctx := context.Background()

	const existing = "11111111-1111-4111-8111-111111111111"
	const missing = "22222222-2222-4222-8222-222222222222"
	createProfile(t, db, existing, model.RoleCustomer)

	// 修改已有档案
	if _, err := dir.AssignRole(ctx, existing, model.RoleVendor); err != nil {
		t.Fatalf("AssignRole 失败: %v", err)
	}
	if role, err := dir.LookupRole(ctx, existing); err != nil || role != model.RoleVendor {
		t.Errorf("LookupRole = %v, %v, 期望 vendor", role, err)
	}
	if _, err := dir.AssignRole(ctx, existing, model.RoleVendor); err != nil {
		t.Errorf("相同角色不应报错: %v", err)
	}

	// 没有档案时补建
	profile, err := dir.AssignRole(ctx, missing, model.RoleAdmin)
	if err != nil || profile.ID != missing {
		t.Fatalf("补建档案失败: %v", err)
	}
	if role, err := dir.LookupRole(ctx, missing); err != nil || role != model.RoleAdmin {
		t.Errorf("LookupRole = %v, %v, 期望 admin", role, err)
	}

	// 非法输入
	var validationErr *ValidationError
	if _, err := dir.AssignRole(ctx, "not-a-uuid", model.RoleVendor); !errors.As(err, &validationErr) {
		t.Errorf("非 UUID 应返回 ValidationError, 实际 %v", err)
	}
	if _, err := dir.AssignRole(ctx, existing, model.RoleUnknown); !errors.As(err, &validationErr) {
		t.Errorf("未知角色应返回 ValidationError, 实际 %v", err)
	}
}
