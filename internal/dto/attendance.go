package dto

// ── 考勤模块 DTO ──

// AttendanceSubject 单科考勤记录
// Percentage 由出勤 / 总课时派生，后端返回的值仅作展示参考
type AttendanceSubject struct {
	ID              string `json:"_id,omitempty"`
	Subject         string `json:"subject"`
	AttendedClasses int    `json:"attendedClasses"`
	TotalClasses    int    `json:"totalClasses"`
	Percentage      int    `json:"percentage,omitempty"`
}

// AttendanceOverall 全科汇总
type AttendanceOverall struct {
	AttendedClasses int `json:"attendedClasses"`
	TotalClasses    int `json:"totalClasses"`
	Percentage      int `json:"percentage"`
}

// AttendanceResponse GET /attendance 响应
type AttendanceResponse struct {
	Subjects []AttendanceSubject `json:"subjects"`
	Overall  *AttendanceOverall  `json:"overall"`
}

// AttendanceUpsert PUT /attendance 请求体
type AttendanceUpsert struct {
	UserID          string `json:"userId"`
	Subject         string `json:"subject"`
	AttendedClasses int    `json:"attendedClasses"`
	TotalClasses    int    `json:"totalClasses"`
}

// AttendanceUpsertResponse 保存后返回的记录（携带后端分配的 ID）
type AttendanceUpsertResponse struct {
	ID string `json:"_id"`
}
