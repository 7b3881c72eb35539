package resource

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"student-portal/client/internal/api"
	"student-portal/client/internal/collection"
	"student-portal/client/internal/dto"
)

// ── 课表行字段名 ──

const (
	FieldDay  = "day"
	FieldTime = "time"
	FieldRoom = "room"
)

// WeekDays 展示用的固定星期顺序
var WeekDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var dayOrder = func() map[string]int {
	order := make(map[string]int, len(WeekDays))
	for i, day := range WeekDays {
		order[day] = i
	}
	return order
}()

// TimetableSchema 课表行结构：全部文本字段
// Time 固定为零填充 "HH:MM"，同一天内按字典序即时间先后排列
func TimetableSchema() collection.Schema {
	return collection.NewSchema(nil, nil)
}

// NewTimetableRow 新增课表行的默认字段
func NewTimetableRow() map[string]any {
	return map[string]any{
		FieldDay:      WeekDays[0],
		FieldTime:     "09:00",
		FieldCourseID: "",
		FieldRoom:     "",
	}
}

// TimetableResource 课表资源适配器
type TimetableResource struct {
	client *api.Client
	logger *zap.Logger
}

// Get 拉取按天分组的课表（userID 为空 = 本人）
// 读失败降级为空集；每天内的时段已按时间排好
func (r *TimetableResource) Get(ctx context.Context, userID string) *dto.TimetableResponse {
	var resp dto.TimetableResponse
	if err := r.client.Get(ctx, "/timetable", userQuery(userID), &resp); err != nil {
		r.logger.Warn("拉取课表失败", zap.String("user_id", userID), zap.Error(err))
		return &dto.TimetableResponse{Schedule: []dto.TimetableDay{}}
	}
	if resp.Schedule == nil {
		resp.Schedule = []dto.TimetableDay{}
	}
	for i := range resp.Schedule {
		classes := resp.Schedule[i].Classes
		sort.SliceStable(classes, func(a, b int) bool {
			return classes[a].Time < classes[b].Time
		})
	}
	return &resp
}

// Upsert 写入一个课表时段，返回后端分配的 ID
func (r *TimetableResource) Upsert(ctx context.Context, req dto.TimetableUpsert) (string, error) {
	var resp dto.TimetableUpsertResponse
	if err := r.client.Put(ctx, "/timetable", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Delete 删除一个课表时段
func (r *TimetableResource) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, "/timetable/"+id, nil)
}

// Collection 以可编辑集合适配器形式暴露课表时段
// 嵌套的 天 → 时段 结构摊平为行，按（星期序, 时间字典序）排列
func (r *TimetableResource) Collection() collection.Adapter {
	return &timetableCollection{res: r}
}

type timetableCollection struct {
	res *TimetableResource
}

func (t *timetableCollection) List(ctx context.Context, sel collection.Selection) ([]collection.Record, error) {
	resp := t.res.Get(ctx, sel.StudentID)

	var records []collection.Record
	for _, day := range resp.Schedule {
		for _, class := range day.Classes {
			rec := collection.NewRecord(map[string]any{
				FieldDay:      day.Day,
				FieldTime:     class.Time,
				FieldCourseID: class.CourseID,
				FieldRoom:     class.Room,
			})
			rec.ID = class.ID
			records = append(records, rec)
		}
	}

	sort.SliceStable(records, func(a, b int) bool {
		dayA, dayB := dayOrder[records[a].Str(FieldDay)], dayOrder[records[b].Str(FieldDay)]
		if dayA != dayB {
			return dayA < dayB
		}
		return records[a].Str(FieldTime) < records[b].Str(FieldTime)
	})
	return records, nil
}

func (t *timetableCollection) Upsert(ctx context.Context, sel collection.Selection, rec collection.Record) (string, error) {
	return t.res.Upsert(ctx, dto.TimetableUpsert{
		UserID:   sel.StudentID,
		Day:      rec.Str(FieldDay),
		Time:     rec.Str(FieldTime),
		CourseID: rec.Str(FieldCourseID),
		Room:     rec.Str(FieldRoom),
	})
}

func (t *timetableCollection) Delete(ctx context.Context, id string) error {
	return t.res.Delete(ctx, id)
}
