package scraper

import (
	"errors"
	"sync"

	"skillfit-go/internal/constants"
)

// ErrTaskNotFound 任务不存在
var ErrTaskNotFound = errors.New("task not found")

// taskEntry 单个任务的状态, 写入由持有锁的任务goroutine独占
type taskEntry struct {
	mu     sync.Mutex
	status string
	logs   []string
}

// TaskSnapshot 任务状态的只读快照
type TaskSnapshot struct {
	TaskID string
	Status string
	Logs   []string
}

// TaskRegistry 进程内任务注册表
// 外层锁只保护map结构, 每个条目自带锁, 单任务高频写日志不会阻塞其他任务的读取
type TaskRegistry struct {
	mu      sync.RWMutex
	entries map[string]*taskEntry
}

// NewTaskRegistry 创建任务注册表
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{entries: make(map[string]*taskEntry)}
}

// Register 登记新任务, 初始状态pending
func (r *TaskRegistry) Register(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[taskID] = &taskEntry{status: constants.TaskStatusPending}
}

func (r *TaskRegistry) entry(taskID string) (*taskEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[taskID]
	return e, ok
}

// SetStatus 更新任务状态
func (r *TaskRegistry) SetStatus(taskID, status string) {
	e, ok := r.entry(taskID)
	if !ok {
		return
	}
	e.mu.Lock()
	e.status = status
	e.mu.Unlock()
}

// AppendLog 追加一条任务日志
func (r *TaskRegistry) AppendLog(taskID, line string) {
	e, ok := r.entry(taskID)
	if !ok {
		return
	}
	e.mu.Lock()
	e.logs = append(e.logs, line)
	e.mu.Unlock()
}

// Snapshot 返回任务状态与日志的副本
func (r *TaskRegistry) Snapshot(taskID string) (TaskSnapshot, error) {
	e, ok := r.entry(taskID)
	if !ok {
		return TaskSnapshot{}, ErrTaskNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := TaskSnapshot{
		TaskID: taskID,
		Status: e.status,
		Logs:   make([]string, len(e.logs)),
	}
	copy(snap.Logs, e.logs)
	return snap, nil
}
