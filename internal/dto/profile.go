package dto

// ── 个人资料模块 DTO ──

// Profile GET /profile 响应
type Profile struct {
	Name       string `json:"name"`
	StudentID  string `json:"studentId,omitempty"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
}

// ProfileUpdate PUT /profile 请求体
type ProfileUpdate struct {
	Name  string `json:"name"  validate:"required,min=2,max=50"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
}

// ProfileUpdateResponse PUT /profile 响应
type ProfileUpdateResponse struct {
	Message string  `json:"message,omitempty"`
	User    Profile `json:"user"`
}
