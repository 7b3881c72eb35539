package apierr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ── 请求失败分类 ──
//
// 设计说明：
//   - NetworkUnavailable：请求未到达后端（DNS、连接拒绝、超时）
//   - MalformedResponse：响应不是约定的 JSON 结构（如代理返回的 HTML 错误页），
//     任何状态码下都不按成功解析
//   - RequestFailed：非 2xx 且带结构化错误体，message 来自后端
//   - Validation：发起请求前的客户端校验失败，按字段报告

// ErrNetworkUnavailable 网络不可达（未收到任何响应）
var ErrNetworkUnavailable = errors.New("网络不可用，请检查连接后重试")

// MalformedResponseError 响应体不是预期的结构化格式
type MalformedResponseError struct {
	Status      int
	ContentType string
	Snippet     string // 响应体开头片段，便于排查代理/网关问题
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("服务器返回了非预期格式的响应 (status=%d, content-type=%q)", e.Status, e.ContentType)
}

// RequestFailedError 后端以结构化错误体拒绝了请求
type RequestFailedError struct {
	Status  int
	Message string
}

func (e *RequestFailedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("请求失败 (status=%d)", e.Status)
}

// ValidationError 客户端校验失败，未发起任何网络请求
type ValidationError struct {
	Fields map[string]string // 字段名 → 错误说明
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "输入校验失败"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "输入校验失败: " + strings.Join(parts, "; ")
}

// IsNetwork 判断是否为网络层失败
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetworkUnavailable)
}

// IsMalformed 判断是否为响应格式异常
func IsMalformed(err error) bool {
	var target *MalformedResponseError
	return errors.As(err, &target)
}

// IsRequestFailed 判断是否为后端结构化错误，是则返回错误详情
func IsRequestFailed(err error) (*RequestFailedError, bool) {
	var target *RequestFailedError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
