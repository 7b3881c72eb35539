package resource

import (
	"context"

	"go.uber.org/zap"

	"student-portal/client/internal/api"
	"student-portal/client/internal/dto"
)

// StudentsResource 学生档案资源适配器（管理员）
type StudentsResource struct {
	client *api.Client
	logger *zap.Logger
}

// List 拉取全部学生，读失败降级为空列表
func (r *StudentsResource) List(ctx context.Context) []dto.Student {
	var students []dto.Student
	if err := r.client.Get(ctx, "/user/students", nil, &students); err != nil {
		r.logger.Warn("拉取学生列表失败", zap.Error(err))
		return []dto.Student{}
	}
	if students == nil {
		students = []dto.Student{}
	}
	return students
}

// Get 按 ID 拉取单个学生，失败降级为 nil
func (r *StudentsResource) Get(ctx context.Context, id string) *dto.Student {
	var student dto.Student
	if err := r.client.Get(ctx, "/user/students/"+id, nil, &student); err != nil {
		r.logger.Warn("拉取学生档案失败", zap.String("id", id), zap.Error(err))
		return nil
	}
	return &student
}

// Update 更新学生档案，发送前做字段校验；写失败原样上抛
func (r *StudentsResource) Update(ctx context.Context, id string, req dto.StudentUpdate) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	return r.client.Put(ctx, "/user/students/"+id, req, nil)
}

// Delete 删除学生档案
func (r *StudentsResource) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, "/user/students/"+id, nil)
}
