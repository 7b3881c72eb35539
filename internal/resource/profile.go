package resource

import (
	"context"

	"go.uber.org/zap"

	"student-portal/client/internal/api"
	"student-portal/client/internal/dto"
)

// ProfileResource 个人资料资源适配器
// 资料页需要准确区分 "加载失败" 与 "资料为空"，读失败不降级
type ProfileResource struct {
	client *api.Client
	logger *zap.Logger
}

// Get 拉取当前登录用户的资料
func (r *ProfileResource) Get(ctx context.Context) (*dto.Profile, error) {
	var profile dto.Profile
	if err := r.client.Get(ctx, "/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update 更新当前用户资料，发送前做字段校验
func (r *ProfileResource) Update(ctx context.Context, req dto.ProfileUpdate) (*dto.Profile, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var resp dto.ProfileUpdateResponse
	if err := r.client.Put(ctx, "/profile", req, &resp); err != nil {
		return nil, err
	}

	r.logger.Info("资料已更新", zap.String("email", resp.User.Email))
	return &resp.User, nil
}
