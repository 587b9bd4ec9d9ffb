package scraper

import (
	"fmt"
	"sync"
	"testing"

	"skillfit-go/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRegistryLifecycle(t *testing.T) {
	r := NewTaskRegistry()
	r.Register("task-1")

	snap, err := r.Snapshot("task-1")
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusPending, snap.Status)
	assert.Empty(t, snap.Logs)

	r.SetStatus("task-1", constants.TaskStatusProcessing)
	r.AppendLog("task-1", "第一行")
	r.AppendLog("task-1", "第二行")

	snap, err = r.Snapshot("task-1")
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusProcessing, snap.Status)
	assert.Equal(t, []string{"第一行", "第二行"}, snap.Logs)
}

func TestTaskRegistryUnknownTask(t *testing.T) {
	r := NewTaskRegistry()

	_, err := r.Snapshot("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// 对不存在的任务写入是空操作, 不应panic
	r.SetStatus("missing", constants.TaskStatusCompleted)
	r.AppendLog("missing", "丢弃")
}

func TestTaskRegistrySnapshotIsCopy(t *testing.T) {
	r := NewTaskRegistry()
	r.Register("task-1")
	r.AppendLog("task-1", "原始")

	snap, err := r.Snapshot("task-1")
	require.NoError(t, err)
	snap.Logs[0] = "篡改"

	snap2, err := r.Snapshot("task-1")
	require.NoError(t, err)
	assert.Equal(t, "原始", snap2.Logs[0])
}

func TestTaskRegistryConcurrentAccess(t *testing.T) {
	r := NewTaskRegistry()
	const tasks = 4
	const writes = 200

	for i := 0; i < tasks; i++ {
		r.Register(fmt.Sprintf("task-%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < tasks; i++ {
		taskID := fmt.Sprintf("task-%d", i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < writes; j++ {
				r.AppendLog(taskID, fmt.Sprintf("line-%d", j))
			}
			r.SetStatus(taskID, constants.TaskStatusCompleted)
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < writes; j++ {
				_, _ = r.Snapshot(taskID)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < tasks; i++ {
		snap, err := r.Snapshot(fmt.Sprintf("task-%d", i))
		require.NoError(t, err)
		assert.Equal(t, constants.TaskStatusCompleted, snap.Status)
		assert.Len(t, snap.Logs, writes)
	}
}
