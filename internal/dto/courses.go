package dto

// ── 课程模块 DTO ──

// Course 一门课程
type Course struct {
	ID          string `json:"_id,omitempty"`
	CourseID    string `json:"courseId"`
	CourseName  string `json:"courseName"`
	FacultyName string `json:"facultyName"`
	Description string `json:"description,omitempty"`
	Credits     int    `json:"credits,omitempty"`
}

// CoursesResponse GET /courses 响应
type CoursesResponse struct {
	Courses      []Course `json:"courses"`
	TotalCredits int      `json:"totalCredits"`
	TotalCourses int      `json:"totalCourses"`
}

// CourseUpsert PUT /courses 请求体
// 编辑已有课程时携带 _id，新建时省略
type CourseUpsert struct {
	ID          string `json:"_id,omitempty"`
	CourseID    string `json:"courseId"`
	CourseName  string `json:"courseName"`
	FacultyName string `json:"facultyName"`
	Description string `json:"description,omitempty"`
}

// CourseUpsertResponse 保存后返回的课程
type CourseUpsertResponse struct {
	ID string `json:"_id"`
}
