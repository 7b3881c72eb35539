package guard

import (
	"fmt"

	"go.uber.org/zap"

	"student-portal/client/internal/session"
)

// ── 页面路径常量 ──

const (
	PageLogin       = "/login"
	PageStudentHome = "/dashboard"
	PageAdminHome   = "/admin"
)

// State 会话导航状态机的状态
type State int

const (
	// StateUnknown 应用启动后、首次读取会话前
	StateUnknown State = iota
	StateAnonymous
	StateStudent
	StateAdmin
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateStudent:
		return "student"
	case StateAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Decision 一次导航检查的裁决
// Allowed 为 false 时 RedirectTo 指向应跳转的页面
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// ════════════════════════════════════════════════════════════
// Navigator — 会话导航守卫
// ════════════════════════════════════════════════════════════
//
// 状态机：Unknown → {Anonymous | Student | Admin}（启动时读一次会话），
// 登录 / 退出在 Anonymous 与已认证态之间迁移。
//
// 设计说明：
//   - 每次导航都重新读取会话存储，而不是只在挂载时检查：
//     某个视图里清掉的会话，其他视图下一次导航立即生效
//   - 管理页绝不渲染给学生会话，反之亦然；角色不符时
//     跳转到会话自己的首页，未登录跳登录页
//   - 退出登录无条件成功：先清会话再迁移，清理失败只记日志

type Navigator struct {
	store  session.Store
	logger *zap.Logger

	state   State
	current *session.Session
}

// NewNavigator 创建导航守卫，初始状态为 Unknown
func NewNavigator(store session.Store, logger *zap.Logger) *Navigator {
	return &Navigator{store: store, logger: logger, state: StateUnknown}
}

// State 当前状态
func (n *Navigator) State() State { return n.state }

// Session 当前会话（Anonymous 时为 nil）
func (n *Navigator) Session() *session.Session { return n.current }

// Start 应用启动时的一次性会话检查：Unknown → 具体状态
func (n *Navigator) Start() State {
	if n.state != StateUnknown {
		return n.state
	}
	n.refresh()
	n.logger.Debug("会话状态初始化", zap.String("state", n.state.String()))
	return n.state
}

// Login 登录成功后的状态迁移
// 先持久化会话，成功后才迁移状态并返回该角色的首页
func (n *Navigator) Login(s *session.Session) (string, error) {
	if !s.Valid() {
		return "", session.ErrSessionIncomplete
	}
	if err := n.store.Save(s); err != nil {
		return "", fmt.Errorf("持久化会话失败: %w", err)
	}

	n.current = s
	n.state = roleState(s.Role)
	n.logger.Info("已登录",
		zap.String("role", s.Role),
		zap.String("email", s.Identity.Email),
	)
	return LandingPage(n.state), nil
}

// Logout 退出登录：先清会话再迁移，无条件成功
func (n *Navigator) Logout() string {
	if err := n.store.Clear(); err != nil {
		n.logger.Warn("清理会话槽位失败", zap.Error(err))
	}
	n.current = nil
	n.state = StateAnonymous
	n.logger.Info("已退出登录")
	return PageLogin
}

// Authorize 检查当前会话能否访问要求 requiredRole 的受保护页面
// 每次调用都重读会话存储；未登录跳登录页，角色不符跳本人首页
func (n *Navigator) Authorize(requiredRole string) Decision {
	n.refresh()

	switch n.state {
	case StateAnonymous, StateUnknown:
		return Decision{RedirectTo: PageLogin}
	case StateStudent:
		if requiredRole == session.RoleStudent {
			return Decision{Allowed: true}
		}
	case StateAdmin:
		if requiredRole == session.RoleAdmin {
			return Decision{Allowed: true}
		}
	}

	n.logger.Warn("角色不符，拒绝访问",
		zap.String("state", n.state.String()),
		zap.String("required", requiredRole),
	)
	return Decision{RedirectTo: LandingPage(n.state)}
}

// LandingPage 各状态对应的首页
func LandingPage(s State) string {
	switch s {
	case StateStudent:
		return PageStudentHome
	case StateAdmin:
		return PageAdminHome
	default:
		return PageLogin
	}
}

// refresh 重读会话存储并同步状态
func (n *Navigator) refresh() {
	s, err := n.store.Load()
	if err != nil || s == nil {
		n.current = nil
		n.state = StateAnonymous
		return
	}
	n.current = s
	n.state = roleState(s.Role)
}

func roleState(role string) State {
	if role == session.RoleAdmin {
		return StateAdmin
	}
	return StateStudent
}
