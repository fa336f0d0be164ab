package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"marketplace_v1_202610/internal/middleware"
	"marketplace_v1_202610/internal/repository"
	"marketplace_v1_202610/internal/service"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台任务
// 管理范围：孤儿图片对账、限流器闲置条目清理
type TaskManager struct {
	orphanTask *OrphanSweepTask
	limiter    *middleware.KeyedLimiter
	cleanup    *cron.Cron
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	ProductRepo repository.ProductRepository
	Storage     service.StorageProvider
	Limiter     *middleware.KeyedLimiter
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	// 孤儿对账
	OrphanEnabled bool
	OrphanTTL     time.Duration
	OrphanSpec    string

	// 限流器清理
	LimiterIdle time.Duration
	LimiterSpec string
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		OrphanEnabled: true,
		OrphanTTL:     DefaultOrphanTTL,
		OrphanSpec:    DefaultOrphanSpec,

		LimiterIdle: 10 * time.Minute,
		LimiterSpec: "0 */10 * * * *",
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{limiter: deps.Limiter}

	if cfg.OrphanEnabled && deps.ProductRepo != nil && deps.Storage != nil {
		tm.orphanTask = NewOrphanSweepTask(deps.ProductRepo, deps.Storage, cfg.OrphanTTL, cfg.OrphanSpec)
	}

	if deps.Limiter != nil {
		idle := cfg.LimiterIdle
		tm.cleanup = cron.New(cron.WithSeconds())
		if _, err := tm.cleanup.AddFunc(cfg.LimiterSpec, func() {
			if n := deps.Limiter.Cleanup(idle); n > 0 {
				zap.S().Debugf("[TaskManager] 清理限流条目 %d 个", n)
			}
		}); err != nil {
			zap.S().Warnf("[TaskManager] 注册限流清理任务失败: %v", err)
			tm.cleanup = nil
		}
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	zap.S().Info("[TaskManager] 正在启动后台任务...")

	if tm.orphanTask != nil {
		if err := tm.orphanTask.Start(); err != nil {
			return err
		}
	}
	if tm.cleanup != nil {
		tm.cleanup.Start()
	}

	zap.S().Info("[TaskManager] 后台任务已全部启动")
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	zap.S().Info("[TaskManager] 正在停止后台任务...")

	if tm.orphanTask != nil {
		tm.orphanTask.Stop()
	}
	if tm.cleanup != nil {
		<-tm.cleanup.Stop().Done()
	}

	zap.S().Info("[TaskManager] 后台任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerOrphanSweep 手动执行一次对账
func (tm *TaskManager) TriggerOrphanSweep(ctx context.Context, dryRun bool) (*SweepReport, error) {
	if tm.orphanTask == nil {
		return nil, ErrTaskDisabled
	}
	return tm.orphanTask.Sweep(ctx, dryRun)
}

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"orphan_sweep":    tm.orphanTask != nil,
		"limiter_cleanup": tm.cleanup != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
