package resource

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"student-portal/client/internal/api"
	"student-portal/client/internal/collection"
	"student-portal/client/internal/dto"
)

// ── 成绩行字段名 ──

const (
	FieldInternal = "internalMarks"
	FieldExternal = "externalMarks"
	FieldTotal    = "total"
	FieldGrade    = "grade"
)

// MarksSchema 成绩行结构：total = internal + external，精确相加不舍入
func MarksSchema() collection.Schema {
	return collection.NewSchema(
		[]string{FieldInternal, FieldExternal, FieldTotal},
		[]collection.DerivedRule{
			{
				Target:    FieldTotal,
				DependsOn: []string{FieldInternal, FieldExternal},
				Compute: func(num func(string) float64) float64 {
					return num(FieldInternal) + num(FieldExternal)
				},
			},
		},
	)
}

// NewMarkRow 新增成绩行的默认字段
func NewMarkRow() map[string]any {
	return map[string]any{
		FieldSubject:  "New Subject",
		FieldInternal: float64(0),
		FieldExternal: float64(0),
		FieldGrade:    "F",
	}
}

// MarksResource 成绩资源适配器
type MarksResource struct {
	client *api.Client
	logger *zap.Logger
}

// Get 拉取按学期分组的成绩（userID 为空 = 本人）
// 读失败降级为空集
func (r *MarksResource) Get(ctx context.Context, userID string) *dto.MarksResponse {
	var resp dto.MarksResponse
	if err := r.client.Get(ctx, "/marks", userQuery(userID), &resp); err != nil {
		r.logger.Warn("拉取成绩失败", zap.String("user_id", userID), zap.Error(err))
		return &dto.MarksResponse{Semesters: []dto.SemesterMarks{}}
	}
	if resp.Semesters == nil {
		resp.Semesters = []dto.SemesterMarks{}
	}
	return &resp
}

// Semesters 列出某学生已有成绩的学期号
func (r *MarksResource) Semesters(ctx context.Context, userID string) []int {
	resp := r.Get(ctx, userID)
	semesters := make([]int, 0, len(resp.Semesters))
	for _, s := range resp.Semesters {
		semesters = append(semesters, s.Semester)
	}
	return semesters
}

// Upsert 写入一条成绩记录，返回后端分配的 ID
func (r *MarksResource) Upsert(ctx context.Context, req dto.MarkUpsert) (string, error) {
	var resp dto.MarkUpsertResponse
	if err := r.client.Put(ctx, "/marks", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Collection 以可编辑集合适配器形式暴露成绩记录
// 选择范围 = 学生 + 学期
func (r *MarksResource) Collection() collection.Adapter {
	return &marksCollection{res: r}
}

type marksCollection struct {
	res *MarksResource
}

func (m *marksCollection) List(ctx context.Context, sel collection.Selection) ([]collection.Record, error) {
	resp := m.res.Get(ctx, sel.StudentID)

	for _, sem := range resp.Semesters {
		if strconv.Itoa(sem.Semester) != sel.Semester {
			continue
		}
		records := make([]collection.Record, 0, len(sem.Subjects))
		for _, s := range sem.Subjects {
			rec := collection.NewRecord(map[string]any{
				FieldSubject:  s.Subject,
				FieldInternal: float64(s.InternalMarks),
				FieldExternal: float64(s.ExternalMarks),
				FieldTotal:    float64(s.InternalMarks + s.ExternalMarks),
				FieldGrade:    s.Grade,
			})
			rec.ID = s.ID
			records = append(records, rec)
		}
		return records, nil
	}
	return nil, nil
}

func (m *marksCollection) Upsert(ctx context.Context, sel collection.Selection, rec collection.Record) (string, error) {
	semester, err := strconv.Atoi(sel.Semester)
	if err != nil {
		semester = 1
	}
	return m.res.Upsert(ctx, dto.MarkUpsert{
		UserID:        sel.StudentID,
		Semester:      semester,
		Subject:       rec.Str(FieldSubject),
		InternalMarks: int(rec.Num(FieldInternal)),
		ExternalMarks: int(rec.Num(FieldExternal)),
		Grade:         rec.Str(FieldGrade),
	})
}

func (m *marksCollection) Delete(_ context.Context, _ string) error {
	return ErrDeleteUnsupported
}
