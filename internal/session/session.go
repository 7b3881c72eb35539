package session

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ── 角色常量 ──

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

var (
	ErrTokenExpired      = errors.New("token 已过期")
	ErrTokenInvalid      = errors.New("token 无效")
	ErrRoleInconsistent  = errors.New("token 角色与会话角色不一致")
	ErrSessionIncomplete = errors.New("会话信息不完整")
)

// Identity 当前登录用户的身份信息
type Identity struct {
	UserID    string `json:"userId"`
	StudentID string `json:"studentId,omitempty"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
}

// Session 一次登录产生的完整会话
// Token、Role、Identity 三者必须同时存在且相互一致，否则视为未登录
type Session struct {
	Token    string
	Role     string
	Identity Identity
}

// Valid 检查会话三要素是否齐全且角色合法
func (s *Session) Valid() bool {
	if s == nil || s.Token == "" || s.Identity.Email == "" {
		return false
	}
	return s.Role == RoleStudent || s.Role == RoleAdmin
}

// IsAdmin 是否为管理员会话
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Claims 后端签发的 Access Token 声明
// 客户端不持有签名密钥，只做声明层面的检查，签名验证由后端完成
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwtv5.RegisteredClaims
}

// InspectToken 不验签解析 Token 并检查与会话角色的一致性
// 过期或角色冲突时返回相应错误，调用方据此判定会话失效
func InspectToken(token string, sessionRole string) (*Claims, error) {
	parser := jwtv5.NewParser()
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, ErrTokenInvalid
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	if claims.Role != "" && claims.Role != sessionRole {
		return nil, ErrRoleInconsistent
	}

	return claims, nil
}
