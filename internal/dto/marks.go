package dto

// ── 成绩模块 DTO ──

// MarkSubject 单科成绩
// Total = InternalMarks + ExternalMarks，由客户端派生
type MarkSubject struct {
	ID            string `json:"_id,omitempty"`
	Subject       string `json:"subject"`
	InternalMarks int    `json:"internalMarks"`
	ExternalMarks int    `json:"externalMarks"`
	Total         int    `json:"total,omitempty"`
	Grade         string `json:"grade"`
}

// SemesterMarks 一个学期的成绩
type SemesterMarks struct {
	Semester   int           `json:"semester"`
	Subjects   []MarkSubject `json:"subjects"`
	Percentage float64       `json:"percentage,omitempty"`
}

// MarksResponse GET /marks 响应
type MarksResponse struct {
	Semesters []SemesterMarks `json:"semesters"`
}

// MarkUpsert PUT /marks 请求体
type MarkUpsert struct {
	UserID        string `json:"userId"`
	Semester      int    `json:"semester"`
	Subject       string `json:"subject"`
	InternalMarks int    `json:"internalMarks"`
	ExternalMarks int    `json:"externalMarks"`
	Grade         string `json:"grade"`
}

// MarkUpsertResponse 保存后返回的记录
type MarkUpsertResponse struct {
	ID string `json:"_id"`
}
