package resource

import (
	"context"

	"go.uber.org/zap"

	"student-portal/client/internal/api"
	"student-portal/client/internal/collection"
	"student-portal/client/internal/dto"
)

// ── 课程行字段名 ──

const (
	FieldCourseID    = "courseId"
	FieldCourseName  = "courseName"
	FieldFacultyName = "facultyName"
	FieldDescription = "description"
)

// CoursesSchema 课程行结构：全部为文本字段，无派生
func CoursesSchema() collection.Schema {
	return collection.NewSchema(nil, nil)
}

// NewCourseRow 新增课程行的默认字段
func NewCourseRow() map[string]any {
	return map[string]any{
		FieldCourseID:    "",
		FieldCourseName:  "New Course",
		FieldFacultyName: "",
		FieldDescription: "",
	}
}

// CoursesResource 课程资源适配器
// 课程是全局资源，不按学生划分
type CoursesResource struct {
	client *api.Client
	logger *zap.Logger
}

// List 拉取课程列表，读失败降级为空集
func (r *CoursesResource) List(ctx context.Context) *dto.CoursesResponse {
	var resp dto.CoursesResponse
	if err := r.client.Get(ctx, "/courses", nil, &resp); err != nil {
		r.logger.Warn("拉取课程失败", zap.Error(err))
		return &dto.CoursesResponse{Courses: []dto.Course{}}
	}
	if resp.Courses == nil {
		resp.Courses = []dto.Course{}
	}
	return &resp
}

// Upsert 写入一门课程（编辑时携带 _id），返回后端分配的 ID
func (r *CoursesResource) Upsert(ctx context.Context, req dto.CourseUpsert) (string, error) {
	var resp dto.CourseUpsertResponse
	if err := r.client.Put(ctx, "/courses", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Delete 删除一门课程
func (r *CoursesResource) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, "/courses/"+id, nil)
}

// Collection 以可编辑集合适配器形式暴露课程
// 选择范围为空（全局集合）
func (r *CoursesResource) Collection() collection.Adapter {
	return &coursesCollection{res: r}
}

type coursesCollection struct {
	res *CoursesResource
}

func (c *coursesCollection) List(ctx context.Context, _ collection.Selection) ([]collection.Record, error) {
	resp := c.res.List(ctx)

	records := make([]collection.Record, 0, len(resp.Courses))
	for _, course := range resp.Courses {
		rec := collection.NewRecord(map[string]any{
			FieldCourseID:    course.CourseID,
			FieldCourseName:  course.CourseName,
			FieldFacultyName: course.FacultyName,
			FieldDescription: course.Description,
		})
		rec.ID = course.ID
		records = append(records, rec)
	}
	return records, nil
}

func (c *coursesCollection) Upsert(ctx context.Context, _ collection.Selection, rec collection.Record) (string, error) {
	return c.res.Upsert(ctx, dto.CourseUpsert{
		ID:          rec.ID,
		CourseID:    rec.Str(FieldCourseID),
		CourseName:  rec.Str(FieldCourseName),
		FacultyName: rec.Str(FieldFacultyName),
		Description: rec.Str(FieldDescription),
	})
}

func (c *coursesCollection) Delete(ctx context.Context, id string) error {
	return c.res.Delete(ctx, id)
}
