package handler_test

import (
	"context"
	"testing"

	"skillfit-go/internal/api/handler"
	"skillfit-go/internal/storage"
	"skillfit-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateValidation(t *testing.T) {
	h := handler.NewSimulationHandler(nil)

	_, err := h.Simulate(context.Background(), "search-1", &types.SimulationRequest{
		AddedSkills: []string{"go"},
	})
	assert.ErrorIs(t, err, handler.ErrInvalidRequest)

	_, err = h.Simulate(context.Background(), "search-1", &types.SimulationRequest{
		ProfileID: "p1",
	})
	assert.ErrorIs(t, err, handler.ErrInvalidRequest)
}

// 数据库缺席时引擎未装配, 模拟应返回未找到而不是崩溃
func TestSimulateWithoutDatabase(t *testing.T) {
	h := handler.NewSimulationHandler(nil)

	report, err := h.Simulate(context.Background(), "search-1", &types.SimulationRequest{
		ProfileID:   "p1",
		AddedSkills: []string{"go"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrProfileNotFound)
	assert.Nil(t, report)
}
