// Package logger 基于 zap 的全局日志
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 创建日志实例
// development 使用彩色控制台输出，其余环境输出 JSON
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "" || env == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// Init 创建日志实例并替换全局 logger，返回 flush 函数
func Init(env, level string) (func(), error) {
	l, err := New(env, level)
	if err != nil {
		return nil, err
	}
	restore := zap.ReplaceGlobals(l)
	return func() {
		_ = l.Sync()
		restore()
	}, nil
}
