package resource

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"student-portal/client/internal/api"
	"student-portal/client/internal/dto"
	"student-portal/client/internal/session"
)

// ── 认证模块业务错误 ──

var (
	ErrRoleMismatch = errors.New("账号角色与所选登录身份不符")
)

// AuthResource 认证资源适配器
// 登录与注册是仅有的两个不携带认证头的调用（登录前尚无会话）
type AuthResource struct {
	client *api.Client
	logger *zap.Logger
}

// Login 登录并构建会话
//
// wantRole 是用户在界面上选择的身份；后端按账号实际角色返回，
// 两者不符时拒绝建立会话，避免学生误入管理端
func (r *AuthResource) Login(ctx context.Context, identifier, password, wantRole string) (*session.Session, error) {
	req := dto.LoginRequest{Identifier: identifier, Password: password}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var resp dto.LoginResponse
	if err := r.client.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}

	if resp.User.Role != wantRole {
		r.logger.Warn("登录角色不符",
			zap.String("selected", wantRole),
			zap.String("actual", resp.User.Role),
		)
		return nil, fmt.Errorf("%w: 请以 %s 身份登录", ErrRoleMismatch, resp.User.Role)
	}

	return &session.Session{
		Token: resp.Token,
		Role:  resp.User.Role,
		Identity: session.Identity{
			UserID:    resp.User.ID,
			StudentID: resp.User.StudentID,
			Email:     resp.User.Email,
			Name:      resp.User.Name,
		},
	}, nil
}

// Register 注册新学生账号
func (r *AuthResource) Register(ctx context.Context, req dto.RegisterRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}

	var resp dto.RegisterResponse
	if err := r.client.Post(ctx, "/auth/register", req, &resp); err != nil {
		return err
	}

	r.logger.Info("注册成功", zap.String("student_id", req.StudentID))
	return nil
}
