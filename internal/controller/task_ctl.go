package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace_v1_202610/internal/task"
)

// TaskRunner 后台任务的手动入口
type TaskRunner interface {
	TriggerOrphanSweep(ctx context.Context, dryRun bool) (*task.SweepReport, error)
	Status() map[string]bool
}

// TaskController 后台任务管理（管理员）
type TaskController struct {
	tasks TaskRunner
}

func NewTaskController(tasks TaskRunner) *TaskController {
	return &TaskController{tasks: tasks}
}

// Status 后台任务状态
// @Summary 后台任务状态
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /admin/tasks [get]
func (ctrl *TaskController) Status(c *gin.Context) {
	success(c, ctrl.tasks.Status())
}

// SweepOrphans 立即执行一次孤儿图片对账
// @Summary 孤儿图片对账
// @Tags Admin
// @Produce json
// @Param dry_run query bool false "只统计不删除"
// @Success 200 {object} task.SweepReport
// @Failure 503 {object} map[string]interface{}
// @Router /admin/orphan-sweep [post]
func (ctrl *TaskController) SweepOrphans(c *gin.Context) {
	dryRun, _ := strconv.ParseBool(c.Query("dry_run"))

	report, err := ctrl.tasks.TriggerOrphanSweep(c.Request.Context(), dryRun)
	if errors.Is(err, task.ErrTaskDisabled) {
		fail(c, http.StatusServiceUnavailable, "Orphan sweep is disabled", nil)
		return
	}
	if err != nil {
		zap.S().Errorf("[Task] 手动对账失败: %v", err)
		fail(c, http.StatusInternalServerError, "Orphan sweep failed", report)
		return
	}
	success(c, report)
}
