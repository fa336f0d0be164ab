package database

import "embed"

// MigrationSQL 嵌入 goose 迁移文件
//
//go:embed migrations/*.sql
var MigrationSQL embed.FS
