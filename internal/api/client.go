package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"student-portal/client/config"
	"student-portal/client/internal/session"
	"student-portal/client/pkg/apierr"
)

// 响应体片段最大长度，仅用于 MalformedResponse 排查信息
const snippetLimit = 120

// errorBody 后端结构化错误体
type errorBody struct {
	Message string `json:"message"`
}

// Client 带认证的 REST 请求客户端
//
// 设计说明：
//   - 每次请求时从 Store 读取当前会话：某个视图里退出登录后，
//     其他视图的后续请求立即失去认证头，不存在缓存的旧 token
//   - token 缺失时直接省略 Authorization 头，绝不伪造
//   - 每个请求携带新生成的 X-Request-ID，便于与后端日志对账
//   - 所有资源适配器必须经由本客户端，不得自行拼装请求头
type Client struct {
	baseURL string
	http    *http.Client
	store   session.Store
	logger  *zap.Logger
}

// NewClient 创建请求客户端
func NewClient(cfg *config.APIConfig, store session.Store, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		store:   store,
		logger:  logger,
	}
}

// Do 发起一次请求并将 2xx 的 JSON 响应解码到 out（out 可为 nil）
//
// 失败分类见 pkg/apierr：
//   - 未收到响应 → ErrNetworkUnavailable
//   - 响应不是 JSON → *MalformedResponseError（任何状态码下都不按成功解析）
//   - 非 2xx 且带 JSON 错误体 → *RequestFailedError
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s, _ := c.store.Load(); s != nil && s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("请求未到达后端",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", apierr.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", apierr.ErrNetworkUnavailable, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isJSON(contentType) {
		// 典型场景：网关或代理直接返回 HTML 错误页
		c.logger.Warn("响应格式异常",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("content_type", contentType),
			zap.String("request_id", requestID),
		)
		return &apierr.MalformedResponseError{
			Status:      resp.StatusCode,
			ContentType: contentType,
			Snippet:     snippet(raw),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if err := json.Unmarshal(raw, &eb); err != nil {
			return &apierr.MalformedResponseError{
				Status:      resp.StatusCode,
				ContentType: contentType,
				Snippet:     snippet(raw),
			}
		}
		return &apierr.RequestFailedError{Status: resp.StatusCode, Message: eb.Message}
	}

	if out == nil || len(raw) == 0 || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &apierr.MalformedResponseError{
			Status:      resp.StatusCode,
			ContentType: contentType,
			Snippet:     snippet(raw),
		}
	}

	c.logger.Debug("请求完成",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
	)
	return nil
}

// ── HTTP 动词快捷方式 ──

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

func isJSON(contentType string) bool {
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	return mediaType == "application/json"
}

func snippet(raw []byte) string {
	if len(raw) > snippetLimit {
		raw = raw[:snippetLimit]
	}
	return string(raw)
}
