package dto

// ── 课表模块 DTO ──

// TimetableClass 一个课表时段
// Time 固定为零填充的 "HH:MM"，排序时按字典序比较即可
type TimetableClass struct {
	ID       string `json:"_id,omitempty"`
	Time     string `json:"time"`
	CourseID string `json:"courseId"`
	Subject  string `json:"subject,omitempty"`
	Room     string `json:"room,omitempty"`
}

// TimetableDay 某一天的课表
type TimetableDay struct {
	Day     string           `json:"day"`
	Classes []TimetableClass `json:"classes"`
}

// TimetableResponse GET /timetable 响应
type TimetableResponse struct {
	Schedule []TimetableDay `json:"schedule"`
}

// TimetableUpsert PUT /timetable 请求体
type TimetableUpsert struct {
	UserID   string `json:"userId"`
	Day      string `json:"day"`
	Time     string `json:"time"`
	CourseID string `json:"courseId"`
	Room     string `json:"room,omitempty"`
}

// TimetableUpsertResponse 保存后返回的时段
type TimetableUpsertResponse struct {
	ID string `json:"_id"`
}
