package database

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Initializer 数据库初始化器
// 先 AutoMigrate 建表，再用 goose 执行 gorm 表达不了的 SQL（触发器、函数、部分索引）
type Initializer struct {
	db      *gorm.DB
	models  []interface{}
	fsys    fs.FS
	dir     string
	dialect string
}

// InitOptions 初始化选项
type InitOptions struct {
	Models []interface{}

	// 迁移文件，默认使用嵌入的 migrations 目录
	FS      fs.FS
	Dir     string
	Dialect string
}

// NewInitializer 创建初始化器
func NewInitializer(db *gorm.DB, opts InitOptions) *Initializer {
	if opts.FS == nil {
		opts.FS = MigrationSQL
		opts.Dir = "migrations"
	}
	if opts.Dialect == "" {
		opts.Dialect = "postgres"
	}
	return &Initializer{
		db:      db,
		models:  opts.Models,
		fsys:    opts.FS,
		dir:     opts.Dir,
		dialect: opts.Dialect,
	}
}

// Initialize 执行初始化
func (i *Initializer) Initialize(ctx context.Context) error {
	zap.S().Info("[DB] 开始数据库初始化...")
	start := time.Now()

	// 1. AutoMigrate
	if len(i.models) > 0 {
		zap.S().Infof("[DB] 1/2 AutoMigrate %d 个表...", len(i.models))
		if err := i.db.WithContext(ctx).AutoMigrate(i.models...); err != nil {
			return fmt.Errorf("AutoMigrate 失败: %w", err)
		}
	}

	// 2. goose 迁移
	zap.S().Info("[DB] 2/2 执行 SQL 迁移...")
	if err := i.migrate(ctx); err != nil {
		return err
	}

	zap.S().Infof("[DB] 初始化完成，耗时 %v", time.Since(start))
	return nil
}

func (i *Initializer) migrate(ctx context.Context) error {
	sqlDB, err := i.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 SQL DB 失败: %w", err)
	}

	goose.SetBaseFS(i.fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(i.dialect); err != nil {
		return fmt.Errorf("设置迁移方言失败: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, i.dir); err != nil {
		return fmt.Errorf("执行迁移失败: %w", err)
	}
	return nil
}

// QuickInit 快速初始化
func QuickInit(db *gorm.DB, models []interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	return NewInitializer(db, InitOptions{Models: models}).Initialize(ctx)
}
