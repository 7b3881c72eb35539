package resource

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-portal/client/config"
	"student-portal/client/internal/api"
	"student-portal/client/internal/dto"
	"student-portal/client/internal/session"
)

// ── 内存假后端 ──
//
// 用 gin 搭一个响应形状对齐真实服务的假后端，
// 适配器测试只关心请求构造与数据整形，不关心后端内部逻辑。

type stubBackend struct {
	mu sync.Mutex

	loginUser  dto.UserInfo
	loginToken string

	attendance dto.AttendanceResponse
	marks      dto.MarksResponse
	fees       dto.FeesResponse
	courses    dto.CoursesResponse
	timetable  dto.TimetableResponse
	students   []dto.Student
	profile    dto.Profile

	// failPaths 路径 → 返回的错误状态码
	failPaths map[string]int

	hits    map[string]int
	upserts []any
	deleted []string
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		loginUser: dto.UserInfo{
			ID: "user-001", Name: "Alice", StudentID: "STU2023001",
			Email: "alice@example.com", Role: session.RoleStudent,
		},
		loginToken: "tok-stub",
		failPaths:  map[string]int{},
		hits:       map[string]int{},
	}
}

func (b *stubBackend) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(b.track)

	r.POST("/auth/login", b.handleLogin)
	r.POST("/auth/register", b.handleOK)

	r.GET("/attendance", func(c *gin.Context) { c.JSON(http.StatusOK, b.attendance) })
	r.PUT("/attendance", b.handleUpsert(func() any { return &dto.AttendanceUpsert{} }))

	r.GET("/marks", func(c *gin.Context) { c.JSON(http.StatusOK, b.marks) })
	r.PUT("/marks", b.handleUpsert(func() any { return &dto.MarkUpsert{} }))

	r.GET("/fees", func(c *gin.Context) { c.JSON(http.StatusOK, b.fees) })
	r.PUT("/fees", b.handleUpsert(func() any { return &dto.FeeUpsert{} }))

	r.GET("/courses", func(c *gin.Context) { c.JSON(http.StatusOK, b.courses) })
	r.PUT("/courses", b.handleUpsert(func() any { return &dto.CourseUpsert{} }))
	r.DELETE("/courses/:id", b.handleDelete)

	r.GET("/timetable", func(c *gin.Context) { c.JSON(http.StatusOK, b.timetable) })
	r.PUT("/timetable", b.handleUpsert(func() any { return &dto.TimetableUpsert{} }))
	r.DELETE("/timetable/:id", b.handleDelete)

	r.GET("/user/students", func(c *gin.Context) { c.JSON(http.StatusOK, b.students) })
	r.GET("/user/students/:id", b.handleStudentGet)
	r.PUT("/user/students/:id", b.handleOK)
	r.DELETE("/user/students/:id", b.handleDelete)

	r.GET("/profile", func(c *gin.Context) { c.JSON(http.StatusOK, b.profile) })
	r.PUT("/profile", func(c *gin.Context) {
		var req dto.ProfileUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "请求体无效"})
			return
		}
		c.JSON(http.StatusOK, dto.ProfileUpdateResponse{
			Message: "资料已更新",
			User:    dto.Profile{Name: req.Name, Email: req.Email, Phone: req.Phone},
		})
	})

	return r
}

// track 统一处理计数与注入的失败路径
func (b *stubBackend) track(c *gin.Context) {
	b.mu.Lock()
	b.hits[c.Request.URL.Path]++
	status, fail := b.failPaths[c.Request.URL.Path]
	b.mu.Unlock()

	if fail {
		c.AbortWithStatusJSON(status, gin.H{"message": "后端故障"})
		return
	}
	c.Next()
}

func (b *stubBackend) handleLogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "请求体无效"})
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{User: b.loginUser, Token: b.loginToken})
}

func (b *stubBackend) handleOK(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (b *stubBackend) handleUpsert(newReq func() any) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := newReq()
		if err := c.ShouldBindJSON(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "请求体无效"})
			return
		}
		b.mu.Lock()
		b.upserts = append(b.upserts, req)
		id := len(b.upserts)
		b.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"_id": "rec-" + strconv.Itoa(id)})
	}
}

func (b *stubBackend) handleStudentGet(c *gin.Context) {
	id := c.Param("id")
	for _, s := range b.students {
		if s.ID == id {
			c.JSON(http.StatusOK, s)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "学生不存在"})
}

func (b *stubBackend) handleDelete(c *gin.Context) {
	b.mu.Lock()
	b.deleted = append(b.deleted, c.Param("id"))
	b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "已删除"})
}

func (b *stubBackend) hitCount(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

// ── 组装 ──

// memStore 内存会话桩
type memStore struct {
	session *session.Session
}

func (m *memStore) Load() (*session.Session, error) { return m.session, nil }
func (m *memStore) Save(s *session.Session) error   { m.session = s; return nil }
func (m *memStore) Clear() error                    { m.session = nil; return nil }

func setupTestResources(t *testing.T, backend *stubBackend) *Resources {
	t.Helper()
	server := httptest.NewServer(backend.router())
	t.Cleanup(server.Close)

	cfg := &config.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second}
	client := api.NewClient(cfg, &memStore{}, zap.NewNop())
	return New(client, zap.NewNop())
}
