package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ==================== 接口定义 ====================

// ObjectInfo 对象摘要
type ObjectInfo struct {
	Key          string // 逻辑 key，不含 BasePath
	Size         int64
	LastModified time.Time
}

// StorageProvider 对象存储接口
// key 均为逻辑 key，如 {vendor_id}/{product_id}/{filename}
type StorageProvider interface {
	// Upload 写入对象，同一 key 重复写入覆盖而不产生副本
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// Delete 删除对象，对象不存在不报错
	Delete(ctx context.Context, key string) error

	// PublicURL 对象的公开访问地址
	PublicURL(key string) string

	// List 遍历 prefix 下的全部对象
	List(ctx context.Context, prefix string, fn func(ObjectInfo) error) error
}

// ==================== 配置 ====================

type StorageConfig struct {
	Provider   string // "s3" | "local"
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string // S3 兼容服务端点 (Supabase Storage、MinIO 等)，local 时为 URL 前缀
	PublicBase string // 公开访问前缀，为空时按 Bucket/Region 推导
	BasePath   string // s3: key 前缀；local: 根目录
}

// ==================== 工厂方法 ====================

func NewStorageProvider(cfg *StorageConfig) (StorageProvider, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Storage(cfg)
	case "local":
		return NewLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
}

// ==================== S3 实现 ====================

type S3Storage struct {
	client     *s3.Client
	bucket     string
	publicBase string
	basePath   string
}

func NewS3Storage(cfg *StorageConfig) (*S3Storage, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %w", err)
	}

	// 自定义端点走 path-style，兼容 Supabase Storage / MinIO
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := cfg.PublicBase
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Storage{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		basePath:   strings.Trim(cfg.BasePath, "/"),
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if err := validateObjectKey(key); err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.fullKey(key)),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("上传S3失败: %w", err)
	}
	return nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if err := validateObjectKey(key); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	})
	if err != nil {
		return fmt.Errorf("删除S3对象失败: %w", err)
	}
	return nil
}

func (s *S3Storage) PublicURL(key string) string {
	return s.publicBase + "/" + escapeKey(s.fullKey(key))
}

func (s *S3Storage) List(ctx context.Context, prefix string, fn func(ObjectInfo) error) error {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.fullKey(prefix)),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("列举S3对象失败: %w", err)
		}
		for _, obj := range page.Contents {
			info := ObjectInfo{
				Key:          s.logicalKey(aws.ToString(obj.Key)),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			}
			if err := fn(info); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *S3Storage) fullKey(key string) string {
	if s.basePath == "" {
		return key
	}
	return s.basePath + "/" + key
}

func (s *S3Storage) logicalKey(full string) string {
	if s.basePath == "" {
		return full
	}
	return strings.TrimPrefix(full, s.basePath+"/")
}

// ==================== 本地存储 (开发测试用) ====================

type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(cfg *StorageConfig) (*LocalStorage, error) {
	root := cfg.BasePath
	if root == "" {
		root = "./uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("创建本地存储目录失败: %w", err)
	}

	baseURL := cfg.PublicBase
	if baseURL == "" {
		baseURL = cfg.Endpoint
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080/uploads"
	}

	return &LocalStorage{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Root 本地根目录，供静态文件路由使用
func (s *LocalStorage) Root() string {
	return s.root
}

// Upload 先写临时文件再改名，中断的上传不会留下半截对象
func (s *LocalStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if err := validateObjectKey(key); err != nil {
		return err
	}

	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: body}); err != nil {
		tmp.Close()
		return fmt.Errorf("写入文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}

	return os.Rename(tmp.Name(), dst)
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := validateObjectKey(key); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStorage) PublicURL(key string) string {
	return s.baseURL + "/" + escapeKey(key)
}

func (s *LocalStorage) List(ctx context.Context, prefix string, fn func(ObjectInfo) error) error {
	return filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(ObjectInfo{Key: key, Size: info.Size(), LastModified: info.ModTime()})
	})
}

// ==================== 工具函数 ====================

// validateObjectKey 拒绝空段与 ".." 段
func validateObjectKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("非法的对象 key: %q", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("非法的对象 key: %q", key)
		}
	}
	return nil
}

// escapeKey 逐段做 URL 编码，保留分隔符
func escapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

// ctxReader 在每次读取前检查 ctx，客户端断开时尽快停止写盘
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
