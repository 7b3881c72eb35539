package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
// Identifier 学生填学号或邮箱，管理员填邮箱
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required,min=6"`
}

// RegisterRequest 学生注册请求
type RegisterRequest struct {
	Name      string `json:"name"      validate:"required,min=2,max=50"`
	StudentID string `json:"studentId" validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6,max=64"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
}

// UserInfo 后端返回的用户信息
type UserInfo struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	StudentID string `json:"studentId,omitempty"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Phone     string `json:"phone,omitempty"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User  UserInfo `json:"user"`
	Token string   `json:"token"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
}
