package dto

// ── 缴费模块 DTO ──

// FeeRecord 一条学期缴费记录
// DueDate / PaidDate 为 "YYYY-MM-DD" 字符串，后端不做时区处理
type FeeRecord struct {
	ID       string  `json:"_id,omitempty"`
	Semester int     `json:"semester"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"` // "paid" | "pending" | "overdue"
	DueDate  string  `json:"dueDate,omitempty"`
	PaidDate string  `json:"paidDate,omitempty"`
}

// FeeSummary 缴费汇总
type FeeSummary struct {
	TotalAmount float64 `json:"totalAmount"`
	PaidAmount  float64 `json:"paidAmount"`
	Pending     float64 `json:"pendingAmount"`
}

// FeesResponse GET /fees 响应
type FeesResponse struct {
	Fees    []FeeRecord `json:"fees"`
	Summary *FeeSummary `json:"summary"`
}

// FeeUpsert PUT /fees 请求体（新增与更新共用同一端点）
type FeeUpsert struct {
	UserID   string  `json:"userId"`
	Semester int     `json:"semester"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"`
	DueDate  string  `json:"dueDate,omitempty"`
	PaidDate string  `json:"paidDate,omitempty"`
}

// FeeUpsertResponse 保存后返回的记录
type FeeUpsertResponse struct {
	ID string `json:"_id"`
}
