package imgbed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLocalOSSProber 指向本地 httptest 服务，IP 端点下 SDK 使用路径风格的 URL
func newLocalOSSProber(t *testing.T, endpoint, bucket string) *OSSProber {
	t.Helper()
	client, err := oss.New(endpoint, "ak", "sk")
	require.NoError(t, err)
	return &OSSProber{
		config: OSSConfig{AccessKeyID: "ak", AccessKeySecret: "sk", Bucket: bucket, Area: "cn-beijing"},
		client: client,
	}
}

func TestOSSProbeUsesBucketInfo(t *testing.T) {
	var listed bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			// 账号级别的 ListBuckets，bucket 级别的子账号没有这个权限
			listed = true
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, isInfo := r.URL.Query()["bucketInfo"]
		bucket := strings.Trim(r.URL.Path, "/")
		w.Header().Set("Content-Type", "application/xml")
		switch {
		case isInfo && bucket == "img":
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
				`<BucketInfo><Bucket><Name>img</Name><Location>oss-cn-beijing</Location></Bucket></BucketInfo>`))
		case isInfo && bucket == "denied":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
				`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
				`<Error><Code>NoSuchBucket</Code><Message>missing</Message></Error>`))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	assert.NoError(t, newLocalOSSProber(t, srv.URL, "img").Probe(ctx))
	assert.False(t, listed)

	err := newLocalOSSProber(t, srv.URL, "missing").Probe(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "不存在")

	err = newLocalOSSProber(t, srv.URL, "denied").Probe(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
}
