package resource

import (
	"context"

	"go.uber.org/zap"

	"student-portal/client/internal/api"
	"student-portal/client/internal/collection"
	"student-portal/client/internal/dto"
)

// ── 缴费行字段名 ──

const (
	FieldSemester = "semester"
	FieldAmount   = "amount"
	FieldStatus   = "status"
	FieldDueDate  = "dueDate"
	FieldPaidDate = "paidDate"
)

// FeesSchema 缴费行结构：学期与金额为数值，无派生字段
func FeesSchema() collection.Schema {
	return collection.NewSchema([]string{FieldSemester, FieldAmount}, nil)
}

// NewFeeRow 新增缴费行的默认字段
func NewFeeRow() map[string]any {
	return map[string]any{
		FieldSemester: float64(1),
		FieldAmount:   float64(0),
		FieldStatus:   "pending",
		FieldDueDate:  "",
		FieldPaidDate: "",
	}
}

// FeesResource 缴费资源适配器
type FeesResource struct {
	client *api.Client
	logger *zap.Logger
}

// Get 拉取缴费明细与汇总（userID 为空 = 本人）
// 读失败降级为空集
func (r *FeesResource) Get(ctx context.Context, userID string) *dto.FeesResponse {
	var resp dto.FeesResponse
	if err := r.client.Get(ctx, "/fees", userQuery(userID), &resp); err != nil {
		r.logger.Warn("拉取缴费记录失败", zap.String("user_id", userID), zap.Error(err))
		return &dto.FeesResponse{Fees: []dto.FeeRecord{}}
	}
	if resp.Fees == nil {
		resp.Fees = []dto.FeeRecord{}
	}
	return &resp
}

// Upsert 写入一条缴费记录（新增与更新共用），返回后端分配的 ID
func (r *FeesResource) Upsert(ctx context.Context, req dto.FeeUpsert) (string, error) {
	var resp dto.FeeUpsertResponse
	if err := r.client.Put(ctx, "/fees", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Collection 以可编辑集合适配器形式暴露缴费记录
// 选择范围仅学生：学期是行内的可编辑字段，不参与选择
func (r *FeesResource) Collection() collection.Adapter {
	return &feesCollection{res: r}
}

type feesCollection struct {
	res *FeesResource
}

func (f *feesCollection) List(ctx context.Context, sel collection.Selection) ([]collection.Record, error) {
	resp := f.res.Get(ctx, sel.StudentID)

	records := make([]collection.Record, 0, len(resp.Fees))
	for _, fee := range resp.Fees {
		rec := collection.NewRecord(map[string]any{
			FieldSemester: float64(fee.Semester),
			FieldAmount:   fee.Amount,
			FieldStatus:   fee.Status,
			FieldDueDate:  fee.DueDate,
			FieldPaidDate: fee.PaidDate,
		})
		rec.ID = fee.ID
		records = append(records, rec)
	}
	return records, nil
}

func (f *feesCollection) Upsert(ctx context.Context, sel collection.Selection, rec collection.Record) (string, error) {
	return f.res.Upsert(ctx, dto.FeeUpsert{
		UserID:   sel.StudentID,
		Semester: int(rec.Num(FieldSemester)),
		Amount:   rec.Num(FieldAmount),
		Status:   rec.Str(FieldStatus),
		DueDate:  rec.Str(FieldDueDate),
		PaidDate: rec.Str(FieldPaidDate),
	})
}

func (f *feesCollection) Delete(_ context.Context, _ string) error {
	return ErrDeleteUnsupported
}
