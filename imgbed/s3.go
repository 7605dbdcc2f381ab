package imgbed

import (
	"context"
	"fmt"
	"strings"

	"github.com/Wsine/picgo-helper/core"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// S3Config picgo-plugin-s3 (aws-s3) 的配置字段
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	Endpoint        string // 兼容 S3 的服务（MinIO、R2 等）
	PathStyle       bool
	URLPrefix       string
}

// S3ConfigFrom 从配置项读取 aws-s3 字段
func S3ConfigFrom(p core.Profile) S3Config {
	return S3Config{
		AccessKeyID:     p.String("accessKeyID"),
		SecretAccessKey: p.String("secretAccessKey"),
		BucketName:      p.String("bucketName"),
		Region:          p.String("region"),
		Endpoint:        p.String("endpoint"),
		PathStyle:       p.Bool("pathStyleAccess"),
		URLPrefix:       p.String("urlPrefix"),
	}
}

// S3Prober Amazon S3 及兼容服务
type S3Prober struct {
	config S3Config
	client *s3.Client
}

// NewS3Prober 创建 S3 探测器
func NewS3Prober(ctx context.Context, cfg S3Config) (*S3Prober, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.BucketName == "" {
		return nil, errors.Wrap(ErrIncompleteConfig, "aws-s3 需要 accessKeyID、secretAccessKey、bucketName")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("加载 S3 配置失败: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return &S3Prober{config: cfg, client: client}, nil
}

func (p *S3Prober) Name() string { return "Amazon S3" }

// Probe HeadBucket
func (p *S3Prober) Probe(ctx context.Context) error {
	_, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.config.BucketName)})
	if err != nil {
		return fmt.Errorf("访问 S3 失败: %w", err)
	}
	return nil
}

// BaseURL 图片链接前缀
func (p *S3Prober) BaseURL() string {
	if p.config.URLPrefix != "" {
		return strings.TrimSuffix(p.config.URLPrefix, "/")
	}
	if p.config.Endpoint != "" {
		endpoint := strings.TrimSuffix(p.config.Endpoint, "/")
		if p.config.PathStyle {
			return endpoint + "/" + p.config.BucketName
		}
		scheme, host, ok := strings.Cut(endpoint, "://")
		if !ok {
			return "https://" + p.config.BucketName + "." + endpoint
		}
		return scheme + "://" + p.config.BucketName + "." + host
	}
	region := p.config.Region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", p.config.BucketName, region)
}
