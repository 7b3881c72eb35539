package collection

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ── 可编辑集合业务错误 ──

var (
	ErrSaveInFlight = errors.New("保存尚未完成，请勿重复提交")
	ErrNoSelection  = errors.New("尚未选择学生")
)

// ── 状态反馈 ──

// StatusKind 集合当前的反馈状态
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusSuccess
	StatusError
)

// Status 展示给用户的一条状态反馈
type Status struct {
	Kind    StatusKind
	Message string
}

// ── 数据模型 ──

// Selection 决定当前加载哪一批记录的父级选择
// StudentID 为空表示集合不按学生划分（如课程管理）
type Selection struct {
	StudentID string
	Semester  string
}

// Record 一条可编辑记录：字段名 → 值（string 或 float64）
// 首次保存前以列表下标定位，保存成功后携带后端分配的 ID
type Record struct {
	ID     string
	Fields map[string]any
}

// NewRecord 从字段映射构建记录
func NewRecord(fields map[string]any) Record {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Record{Fields: copied}
}

// Num 读取数值字段，缺失或类型不符时为 0
func (r Record) Num(name string) float64 {
	switch v := r.Fields[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Str 读取文本字段
func (r Record) Str(name string) string {
	if v, ok := r.Fields[name].(string); ok {
		return v
	}
	return ""
}

// Clone 深拷贝一条记录，保存批次内部使用快照
func (r Record) Clone() Record {
	copied := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		copied[k] = v
	}
	return Record{ID: r.ID, Fields: copied}
}

// ── 派生字段 ──

// DerivedRule 派生字段规则：依赖字段任一变化时重算 Target
// 派生值只在本地计算，后端不把它当作可独立编辑的输入
type DerivedRule struct {
	Target    string
	DependsOn []string
	Compute   func(num func(string) float64) float64
}

// Schema 描述一类记录：哪些字段是数值、哪些字段是派生
type Schema struct {
	numeric map[string]bool
	derived []DerivedRule
}

// NewSchema 构建记录结构描述
func NewSchema(numericFields []string, derived []DerivedRule) Schema {
	numeric := make(map[string]bool, len(numericFields))
	for _, name := range numericFields {
		numeric[name] = true
	}
	return Schema{numeric: numeric, derived: derived}
}

// IsNumeric 判断字段是否按数值处理
func (s Schema) IsNumeric(name string) bool { return s.numeric[name] }

// IsDerived 判断字段是否为派生字段
// 派生字段只随依赖重算，不接受直接编辑
func (s Schema) IsDerived(name string) bool {
	for _, rule := range s.derived {
		if rule.Target == name {
			return true
		}
	}
	return false
}

func (s Schema) recompute(rec Record, changed string) {
	for _, rule := range s.derived {
		for _, dep := range rule.DependsOn {
			if dep == changed {
				rec.Fields[rule.Target] = rule.Compute(rec.Num)
				break
			}
		}
	}
}

func (s Schema) recomputeAll(rec Record) {
	for _, rule := range s.derived {
		rec.Fields[rule.Target] = rule.Compute(rec.Num)
	}
}

// ── 适配器 ──

// Adapter 集合控制器对接某一资源所需的三个操作
// List 读失败应降级为空列表，Upsert / Delete 的失败需原样上抛
type Adapter interface {
	List(ctx context.Context, sel Selection) ([]Record, error)
	Upsert(ctx context.Context, sel Selection, rec Record) (string, error)
	Delete(ctx context.Context, id string) error
}

// ════════════════════════════════════════════════════════════
// Controller — 可编辑记录集合控制器
// ════════════════════════════════════════════════════════════
//
// 设计说明：
//   - 四个管理页面（考勤 / 成绩 / 缴费 / 课表）共用同一套
//     "选父级 → 拉取 → 本地编辑 → 批量保存" 逻辑，本控制器把它收拢成一处
//   - 状态（记录列表、保存中标志、反馈消息）由单个控制器实例独占，
//     方法都在同一个调用方 goroutine 中执行，不加锁
//   - Save 内部对每条记录并发发起 upsert，整体耗时取决于最慢的一条；
//     部分成功时已返回的 ID 仍按下标合并进本地列表
//   - 代际计数器防御保存期间切换父级选择导致的错位合并

type Controller struct {
	adapter Adapter
	schema  Schema
	logger  *zap.Logger

	selection    Selection
	hasSelection bool
	loaded       bool
	records      []Record
	saving       bool
	generation   uint64
	status       Status
}

// NewController 创建集合控制器
func NewController(adapter Adapter, schema Schema, logger *zap.Logger) *Controller {
	return &Controller{adapter: adapter, schema: schema, logger: logger}
}

// Records 当前记录列表（调用方只读，编辑须经 EditField）
func (c *Controller) Records() []Record { return c.records }

// Status 当前状态反馈
func (c *Controller) Status() Status { return c.status }

// Saving 是否有保存批次在途
func (c *Controller) Saving() bool { return c.saving }

// Selection 当前父级选择
func (c *Controller) Selection() (Selection, bool) { return c.selection, c.hasSelection }

// SetSelection 切换父级选择并重新拉取记录
// 选择未变化且上次加载成功时不做任何事，上次加载失败时重试；
// 后端返回空集时列表为空（"暂无记录"不是错误）
func (c *Controller) SetSelection(ctx context.Context, sel Selection) error {
	if c.hasSelection && c.selection == sel && c.loaded {
		return nil
	}

	c.selection = sel
	c.hasSelection = true
	c.records = nil
	c.status = Status{}
	c.generation++

	records, err := c.adapter.List(ctx, sel)
	c.loaded = err == nil
	if err != nil {
		c.logger.Warn("加载记录失败",
			zap.String("student_id", sel.StudentID),
			zap.String("semester", sel.Semester),
			zap.Error(err),
		)
		return err
	}
	c.records = records
	return nil
}

// Refresh 按当前选择重新拉取记录
func (c *Controller) Refresh(ctx context.Context) error {
	if !c.hasSelection {
		return ErrNoSelection
	}
	sel := c.selection
	c.hasSelection = false
	return c.SetSelection(ctx, sel)
}

// EditField 修改一条记录的单个字段
//
// 下标越界属于调用方编程错误，直接 panic。
// 派生字段不接受直接输入，这类编辑被忽略。
// 数值字段解析失败时置 0，不拒绝输入；文本字段原样保存。
// 所有依赖该字段的派生字段立即用更新后的值重算。
// 任何编辑都会清掉残留的成功 / 失败反馈。
func (c *Controller) EditField(index int, field string, raw string) {
	if index < 0 || index >= len(c.records) {
		panic(fmt.Sprintf("collection: EditField 下标越界 %d (共 %d 条)", index, len(c.records)))
	}
	if c.schema.IsDerived(field) {
		return
	}

	rec := c.records[index]
	if c.schema.IsNumeric(field) {
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			value = 0
		}
		rec.Fields[field] = value
	} else {
		rec.Fields[field] = raw
	}

	c.schema.recompute(rec, field)
	c.status = Status{}
}

// AddRow 在列表末尾追加一条新记录，不触达后端
// 派生字段按默认值预先算好
func (c *Controller) AddRow(defaults map[string]any) {
	rec := NewRecord(defaults)
	c.schema.recomputeAll(rec)
	c.records = append(c.records, rec)
	c.status = Status{}
}

// ════════════════════════════════════════════════════════════
// Save — 全量批保存
// ════════════════════════════════════════════════════════════
//
// 每条记录各发一个 upsert，全部并发，等整批结束后统一汇报：
//   - 按下标（而非字段值，多条记录可能内容相同）把新分配的 ID 合并回列表
//   - 任一条失败则整体报错，但成功条目的 ID 照常保留
//   - 空列表视为立即成功，不发任何请求
//   - 在途标志在所有退出路径（含 panic）都会清除

func (c *Controller) Save(ctx context.Context) error {
	if c.saving {
		return ErrSaveInFlight
	}
	c.saving = true
	defer func() { c.saving = false }()

	c.status = Status{}

	if len(c.records) == 0 {
		c.status = Status{Kind: StatusSuccess, Message: "保存成功"}
		return nil
	}

	gen := c.generation
	sel := c.selection

	type outcome struct {
		id  string
		err error
	}
	outcomes := make([]outcome, len(c.records))

	var wg sync.WaitGroup
	for i := range c.records {
		wg.Add(1)
		go func(i int, rec Record) {
			defer wg.Done()
			id, err := c.adapter.Upsert(ctx, sel, rec)
			outcomes[i] = outcome{id: id, err: err}
		}(i, c.records[i].Clone())
	}
	wg.Wait()

	// 保存期间父级选择已切换：结果对应的列表已不存在，直接丢弃
	if gen != c.generation {
		c.logger.Warn("保存结果因选择切换被丢弃",
			zap.String("student_id", sel.StudentID),
			zap.String("semester", sel.Semester),
		)
		return nil
	}

	var firstErr error
	for i, o := range outcomes {
		if o.err != nil {
			if firstErr == nil {
				firstErr = o.err
			}
			continue
		}
		if o.id != "" {
			c.records[i].ID = o.id
		}
	}

	if firstErr != nil {
		c.logger.Error("批量保存部分失败", zap.Error(firstErr))
		c.status = Status{Kind: StatusError, Message: "保存失败: " + firstErr.Error()}
		return firstErr
	}

	c.status = Status{Kind: StatusSuccess, Message: "保存成功"}
	return nil
}

// DeleteRow 删除一条已持久化的记录
// 先删后端，确认成功后才从本地列表移除；失败时记录留在列表里并给出错误反馈。
// 是否删除的确认动作由调用方（界面层）负责。
func (c *Controller) DeleteRow(ctx context.Context, id string) error {
	if err := c.adapter.Delete(ctx, id); err != nil {
		c.status = Status{Kind: StatusError, Message: "删除失败: " + err.Error()}
		return err
	}

	for i, rec := range c.records {
		if rec.ID == id {
			c.records = append(c.records[:i], c.records[i+1:]...)
			break
		}
	}
	c.status = Status{Kind: StatusSuccess, Message: "已删除"}
	return nil
}
