package resource

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"student-portal/client/internal/api"
	"student-portal/client/internal/collection"
	"student-portal/client/internal/dto"
)

// ErrDeleteUnsupported 该资源的后端未提供删除端点
var ErrDeleteUnsupported = errors.New("该记录类型不支持删除")

// ── 考勤行字段名 ──

const (
	FieldSubject    = "subject"
	FieldAttended   = "attendedClasses"
	FieldTotalClass = "totalClasses"
	FieldPercentage = "percentage"
)

// AttendanceSchema 考勤行结构：出勤 / 总课时为数值，百分比为派生
// percentage = round(attended/total*100)，total 为 0 时取 0
func AttendanceSchema() collection.Schema {
	return collection.NewSchema(
		[]string{FieldAttended, FieldTotalClass, FieldPercentage},
		[]collection.DerivedRule{
			{
				Target:    FieldPercentage,
				DependsOn: []string{FieldAttended, FieldTotalClass},
				Compute: func(num func(string) float64) float64 {
					total := num(FieldTotalClass)
					if total <= 0 {
						return 0
					}
					return math.Round(num(FieldAttended) / total * 100)
				},
			},
		},
	)
}

// NewAttendanceRow 新增考勤行的默认字段
func NewAttendanceRow() map[string]any {
	return map[string]any{
		FieldSubject:    "New Subject",
		FieldAttended:   float64(0),
		FieldTotalClass: float64(0),
	}
}

// AttendanceResource 考勤资源适配器
type AttendanceResource struct {
	client *api.Client
	logger *zap.Logger
}

// Get 拉取考勤概览（userID 为空 = 本人，管理员可代查）
// 读失败降级为空集，单次拉取失败不应打垮整个视图
func (r *AttendanceResource) Get(ctx context.Context, userID string) *dto.AttendanceResponse {
	var resp dto.AttendanceResponse
	if err := r.client.Get(ctx, "/attendance", userQuery(userID), &resp); err != nil {
		r.logger.Warn("拉取考勤失败", zap.String("user_id", userID), zap.Error(err))
		return &dto.AttendanceResponse{Subjects: []dto.AttendanceSubject{}}
	}
	if resp.Subjects == nil {
		resp.Subjects = []dto.AttendanceSubject{}
	}
	return &resp
}

// Upsert 写入一条考勤记录，返回后端分配的 ID；写失败原样上抛
func (r *AttendanceResource) Upsert(ctx context.Context, req dto.AttendanceUpsert) (string, error) {
	var resp dto.AttendanceUpsertResponse
	if err := r.client.Put(ctx, "/attendance", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Collection 以可编辑集合适配器形式暴露考勤记录
func (r *AttendanceResource) Collection() collection.Adapter {
	return &attendanceCollection{res: r}
}

type attendanceCollection struct {
	res *AttendanceResource
}

func (a *attendanceCollection) List(ctx context.Context, sel collection.Selection) ([]collection.Record, error) {
	resp := a.res.Get(ctx, sel.StudentID)

	records := make([]collection.Record, 0, len(resp.Subjects))
	for _, s := range resp.Subjects {
		rec := collection.NewRecord(map[string]any{
			FieldSubject:    s.Subject,
			FieldAttended:   float64(s.AttendedClasses),
			FieldTotalClass: float64(s.TotalClasses),
			FieldPercentage: float64(s.Percentage),
		})
		rec.ID = s.ID
		records = append(records, rec)
	}
	return records, nil
}

func (a *attendanceCollection) Upsert(ctx context.Context, sel collection.Selection, rec collection.Record) (string, error) {
	return a.res.Upsert(ctx, dto.AttendanceUpsert{
		UserID:          sel.StudentID,
		Subject:         rec.Str(FieldSubject),
		AttendedClasses: int(rec.Num(FieldAttended)),
		TotalClasses:    int(rec.Num(FieldTotalClass)),
	})
}

func (a *attendanceCollection) Delete(_ context.Context, _ string) error {
	return ErrDeleteUnsupported
}
