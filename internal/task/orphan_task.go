package task

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"marketplace_v1_202610/internal/model"
	"marketplace_v1_202610/internal/repository"
	"marketplace_v1_202610/internal/service"
	"marketplace_v1_202610/pkg/metrics"
)

const (
	DefaultOrphanTTL   = 24 * time.Hour
	DefaultOrphanSpec  = "0 0/30 * * * *"
	orphanBatchSize    = 500
	orphanDeleteLimit  = 8
	orphanSweepTimeout = 10 * time.Minute
)

// ==================== OrphanSweepTask 孤儿图片对账 ====================

// OrphanSweepTask 清理没有商品行引用的图片
// 上传流程在元数据写入失败时不回滚，图片由本任务按 TTL 回收
type OrphanSweepTask struct {
	products repository.ProductRepository
	storage  service.StorageProvider
	Cron     *cron.Cron

	ttl  time.Duration
	spec string
	now  func() time.Time
}

// SweepReport 单次对账结果
type SweepReport struct {
	Scanned  int      `json:"scanned"`
	Skipped  int      `json:"skipped"` // key 格式不符或商品 ID 不是 UUID
	Fresh    int      `json:"fresh"`   // 未过 TTL
	Orphans  []string `json:"orphans"`
	Deleted  int      `json:"deleted"`
	Failed   int      `json:"failed"`
	DryRun   bool     `json:"dry_run"`
	Duration time.Duration
}

// NewOrphanSweepTask 创建对账任务，ttl/spec 为零值时使用默认值
func NewOrphanSweepTask(products repository.ProductRepository, storage service.StorageProvider, ttl time.Duration, spec string) *OrphanSweepTask {
	if ttl <= 0 {
		ttl = DefaultOrphanTTL
	}
	if spec == "" {
		spec = DefaultOrphanSpec
	}
	return &OrphanSweepTask{
		products: products,
		storage:  storage,
		Cron:     cron.New(cron.WithSeconds()),
		ttl:      ttl,
		spec:     spec,
		now:      time.Now,
	}
}

// Start 启动定时任务
func (t *OrphanSweepTask) Start() error {
	// 首次执行
	go func() {
		zap.S().Info("[OrphanSweep] 服务启动，正在执行首次对账...")
		t.runJob()
	}()

	if _, err := t.Cron.AddFunc(t.spec, t.runJob); err != nil {
		return fmt.Errorf("注册对账任务失败 (%s): %w", t.spec, err)
	}

	t.Cron.Start()
	zap.S().Infof("[OrphanSweep] 对账任务已启动 (%s, TTL %s)", t.spec, t.ttl)
	return nil
}

// Stop 停止定时任务，等待运行中的任务结束
func (t *OrphanSweepTask) Stop() {
	<-t.Cron.Stop().Done()
	zap.S().Info("[OrphanSweep] 对账任务已停止")
}

func (t *OrphanSweepTask) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), orphanSweepTimeout)
	defer cancel()

	report, err := t.Sweep(ctx, false)
	if err != nil {
		zap.S().Errorf("[OrphanSweep] 对账失败: %v", err)
		return
	}
	zap.S().Infof("[OrphanSweep] 完成: 扫描 %d, 孤儿 %d, 删除 %d, 失败 %d, 耗时 %s",
		report.Scanned, len(report.Orphans), report.Deleted, report.Failed, report.Duration)
}

// ==================== 对账逻辑 ====================

// Sweep 执行一次对账
// dryRun 只统计不删除
func (t *OrphanSweepTask) Sweep(ctx context.Context, dryRun bool) (*SweepReport, error) {
	start := t.now()
	cutoff := start.Add(-t.ttl)
	report := &SweepReport{DryRun: dryRun, Orphans: []string{}}

	// 1. 列出所有对象，挑出过了 TTL 且 key 合法的
	keysByID := make(map[string][]string)
	ids := make([]string, 0)
	err := t.storage.List(ctx, "", func(obj service.ObjectInfo) error {
		report.Scanned++

		_, productID, _, ok := model.ParseObjectKey(obj.Key)
		if !ok || !model.IsValidID(productID) {
			report.Skipped++
			zap.S().Debugf("[OrphanSweep] 跳过无法识别的 key: %s", obj.Key)
			return nil
		}
		if obj.LastModified.After(cutoff) {
			report.Fresh++
			return nil
		}

		if _, seen := keysByID[productID]; !seen {
			ids = append(ids, productID)
		}
		keysByID[productID] = append(keysByID[productID], obj.Key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("列出对象失败: %w", err)
	}

	// 2. 分批查询商品行
	for i := 0; i < len(ids); i += orphanBatchSize {
		end := i + orphanBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[i:end]

		existing, err := t.products.ExistingIDs(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("查询商品行失败: %w", err)
		}
		for _, id := range batch {
			if !existing[id] {
				report.Orphans = append(report.Orphans, keysByID[id]...)
			}
		}
	}

	if dryRun || len(report.Orphans) == 0 {
		report.Duration = t.now().Sub(start)
		return report, nil
	}

	// 3. 并发删除，单个失败不影响其余
	var deleted, failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(orphanDeleteLimit)
	for _, key := range report.Orphans {
		key := key
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := t.storage.Delete(gctx, key); err != nil {
				atomic.AddInt64(&failed, 1)
				zap.S().Warnf("[OrphanSweep] 删除失败 %s: %v", key, err)
				return nil
			}
			atomic.AddInt64(&deleted, 1)
			metrics.OrphanObjectsDeleted.Inc()
			return nil
		})
	}
	waitErr := g.Wait()

	report.Deleted = int(deleted)
	report.Failed = int(failed)
	report.Duration = t.now().Sub(start)
	if waitErr != nil {
		return report, fmt.Errorf("对账中断: %w", waitErr)
	}
	return report, nil
}
