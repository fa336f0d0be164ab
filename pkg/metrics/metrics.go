// Package metrics 业务指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// 上传结果
const (
	UploadSuccess         = "success"
	UploadValidationError = "validation_error"
	UploadAuthError       = "auth_error"
	UploadStorageError    = "upload_error"
	UploadMetadataError   = "metadata_error"
)

var (
	// ProductUploads 商品上传次数，按结果分类
	ProductUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_uploads_total",
		Help:      "Product upload workflow outcomes.",
	}, []string{"result"})

	// OrphanObjectsDeleted 对账任务删除的孤儿对象数
	OrphanObjectsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphan_objects_deleted_total",
		Help:      "Stored objects removed because no product row references them.",
	})

	// AccessDecisions 门禁判定次数
	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Access gate decisions by outcome.",
	}, []string{"decision"})
)
