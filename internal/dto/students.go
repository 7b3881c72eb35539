package dto

// ── 学生管理模块 DTO ──

// Student 管理端视角的学生档案
type Student struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	StudentID  string `json:"studentId"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
}

// StudentUpdate PUT /user/students/:id 请求体
type StudentUpdate struct {
	Name       string `json:"name"       validate:"required,min=2,max=50"`
	Email      string `json:"email"      validate:"required,email"`
	Phone      string `json:"phone,omitempty"      validate:"omitempty,min=6,max=20"`
	Department string `json:"department,omitempty" validate:"omitempty,max=50"`
}
