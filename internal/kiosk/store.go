package kiosk

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"PunchPass/internal/model"
)

// 持久键和会话键沿用打卡终端旧版约定，不能改，改了老终端升级后会丢注册信息。
const (
	UserBlobKey    = "qr_attendance_user"
	SessionFormKey = "temp_user_data"
)

// Store 终端本地的键值存储。持久存储放注册身份，会话存储放填了一半的表单。
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string)
}

// MemoryStore 进程内实现，会话存储和测试用
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// FileStore 目录实现，一个键一个文件，终端重启后注册信息还在
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// path 键名做一次替换，防止键里的分隔符逃出目录
func (s *FileStore) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe)
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return os.WriteFile(s.path(key), []byte(value), 0o600)
}

func (s *FileStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	os.Remove(s.path(key))
}

// EncodeUserBlob 持久身份按 base64(JSON) 落盘。
// 只是轻度混淆，不是加密，和旧版终端的格式保持互通。
func EncodeUserBlob(user *model.UserData) (string, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// encodeForm 会话表单存明文 JSON，本来就是临时数据
func encodeForm(form RegistrationForm) (string, error) {
	raw, err := json.Marshal(form)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeForm(blob string) (RegistrationForm, error) {
	var form RegistrationForm
	err := json.Unmarshal([]byte(blob), &form)
	return form, err
}

// DecodeUserBlob 解不开就报错，调用方负责把坏 blob 清掉
func DecodeUserBlob(blob string) (*model.UserData, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, err
	}

	var user model.UserData
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
