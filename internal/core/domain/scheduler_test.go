package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	assert.True(t, config.Enabled)
	assert.NotNil(t, config.TaskConfigs)
	assert.Len(t, config.TaskConfigs, 2)

	assert.Equal(t, time.Second, config.TickInterval)

	refreshCfg := config.TaskConfigs[TaskIDTokenRefresh]
	assert.True(t, refreshCfg.Enabled)
	assert.Equal(t, 5*time.Minute, refreshCfg.Interval)

	statusCfg := config.TaskConfigs[TaskIDDocumentStatus]
	assert.True(t, statusCfg.Enabled)
	assert.Equal(t, 2*time.Second, statusCfg.Interval)
}

func TestSchedulerConfig_GetTaskConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	// Existing task
	refreshCfg := config.GetTaskConfig(TaskIDTokenRefresh)
	assert.True(t, refreshCfg.Enabled)
	assert.Equal(t, 5*time.Minute, refreshCfg.Interval)

	// Non-existent task
	unknownCfg := config.GetTaskConfig("unknown-task")
	assert.False(t, unknownCfg.Enabled)
	assert.Equal(t, time.Duration(0), unknownCfg.Interval)
}

func TestSchedulerConfig_GetTaskConfig_NilMap(t *testing.T) {
	config := SchedulerConfig{
		Enabled:     true,
		TaskConfigs: nil,
	}

	cfg := config.GetTaskConfig("any-task")
	assert.False(t, cfg.Enabled)
	assert.Equal(t, time.Duration(0), cfg.Interval)
}

func TestTaskConstants(t *testing.T) {
	assert.Equal(t, "token-refresh", TaskIDTokenRefresh)
	assert.Equal(t, "document-status", TaskIDDocumentStatus)
}
