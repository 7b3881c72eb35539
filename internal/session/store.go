package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ── 会话槽位文件名 ──
//
// 三个槽位分别持久化 token、角色、身份 JSON。
// 任一槽位缺失或损坏都视为未登录，并清空全部槽位自愈。

const (
	slotToken    = "token"
	slotRole     = "role"
	slotIdentity = "identity.json"
)

// Store 会话持久化接口
type Store interface {
	// Load 读取当前会话；槽位缺失或不一致时返回 (nil, nil) 并自愈清空
	Load() (*Session, error)
	// Save 持久化会话；部分写入失败时回滚清空全部槽位
	Save(s *Session) error
	// Clear 无条件清空全部槽位
	Clear() error
}

type fileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore 创建基于文件的会话存储
func NewFileStore(dir string, logger *zap.Logger) Store {
	return &fileStore{dir: dir, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Load — 读取并校验会话
// ════════════════════════════════════════════════════════════
//
// 流程：
//   1. 读取三个槽位，任一缺失 → 自愈清空，返回未登录
//   2. 解析身份 JSON，失败 → 自愈清空
//   3. 角色必须为 student / admin
//   4. 检查 Token 声明（过期、角色一致性），失败 → 自愈清空

func (f *fileStore) Load() (*Session, error) {
	token, okToken := f.readSlot(slotToken)
	role, okRole := f.readSlot(slotRole)
	identityRaw, okIdentity := f.readSlot(slotIdentity)

	if !okToken || !okRole || !okIdentity {
		f.heal("槽位缺失")
		return nil, nil
	}

	var identity Identity
	if err := json.Unmarshal([]byte(identityRaw), &identity); err != nil {
		f.heal("身份信息解析失败")
		return nil, nil
	}

	s := &Session{
		Token:    strings.TrimSpace(token),
		Role:     strings.TrimSpace(role),
		Identity: identity,
	}
	if !s.Valid() {
		f.heal("会话要素不完整或角色非法")
		return nil, nil
	}

	if _, err := InspectToken(s.Token, s.Role); err != nil {
		f.heal(err.Error())
		return nil, nil
	}

	return s, nil
}

// ════════════════════════════════════════════════════════════
// Save — 原子性持久化
// ════════════════════════════════════════════════════════════
//
// 实际写入分三步，但对调用方保证原子性：
// 任何一步失败都清空全部槽位，绝不留下 token 有而 role 无的半截状态。

func (f *fileStore) Save(s *Session) error {
	if !s.Valid() {
		return ErrSessionIncomplete
	}

	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("创建会话目录失败: %w", err)
	}

	identityRaw, err := json.Marshal(s.Identity)
	if err != nil {
		return fmt.Errorf("序列化身份信息失败: %w", err)
	}

	writes := []struct {
		slot string
		data string
	}{
		{slotToken, s.Token},
		{slotRole, s.Role},
		{slotIdentity, string(identityRaw)},
	}
	for _, w := range writes {
		if err := f.writeSlot(w.slot, w.data); err != nil {
			// 回滚：半截会话比没有会话更危险
			f.heal("写入失败回滚")
			return fmt.Errorf("持久化会话失败: %w", err)
		}
	}

	return nil
}

// Clear 无条件清空全部槽位
func (f *fileStore) Clear() error {
	var firstErr error
	for _, slot := range []string{slotToken, slotRole, slotIdentity} {
		if err := os.Remove(filepath.Join(f.dir, slot)); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ── 内部工具 ──

func (f *fileStore) readSlot(slot string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(f.dir, slot))
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", false
	}
	return value, true
}

func (f *fileStore) writeSlot(slot string, data string) error {
	return os.WriteFile(filepath.Join(f.dir, slot), []byte(data), 0o600)
}

func (f *fileStore) heal(reason string) {
	if err := f.Clear(); err != nil {
		f.logger.Warn("会话自愈清理失败", zap.Error(err))
		return
	}
	f.logger.Debug("会话槽位已清空", zap.String("reason", reason))
}
