package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestMemoryCacheTTL 测试缓存条目在有效期内命中、过期后失效
func TestMemoryCacheTTL(t *testing.T) {
	ctx := context.Background()
	current := time.Now()

	c := NewMemoryCache()
	c.now = func() time.Time { return current }

	err := c.Set(ctx, "/", []byte("rendered page"), 20*time.Second)
	assert.NoError(t, err)

	value, ok := c.Get(ctx, "/")
	assert.True(t, ok)
	assert.Equal(t, []byte("rendered page"), value)

	// 有效期内仍然命中
	current = current.Add(19 * time.Second)
	_, ok = c.Get(ctx, "/")
	assert.True(t, ok)

	// 过期后不再命中
	current = current.Add(2 * time.Second)
	_, ok = c.Get(ctx, "/")
	assert.False(t, ok)
}

// TestMemoryCacheStaleUntilExpiry 测试写操作不触发失效：
// 旧值在过期前一直被返回
func TestMemoryCacheStaleUntilExpiry(t *testing.T) {
	ctx := context.Background()
	current := time.Now()

	c := NewMemoryCache()
	c.now = func() time.Time { return current }

	assert.NoError(t, c.Set(ctx, "/", []byte("old page"), 20*time.Second))

	// 模拟新帖子发布后缓存未被清除
	value, ok := c.Get(ctx, "/")
	assert.True(t, ok)
	assert.Equal(t, []byte("old page"), value)

	// 过期后由调用方重新渲染并写入
	current = current.Add(21 * time.Second)
	_, ok = c.Get(ctx, "/")
	assert.False(t, ok)

	assert.NoError(t, c.Set(ctx, "/", []byte("new page"), 20*time.Second))
	value, ok = c.Get(ctx, "/")
	assert.True(t, ok)
	assert.Equal(t, []byte("new page"), value)
}

// TestMemoryCacheClear 测试显式清空
func TestMemoryCacheClear(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	assert.NoError(t, c.Set(ctx, "/", []byte("page"), time.Minute))
	assert.NoError(t, c.Set(ctx, "/other", []byte("other"), time.Minute))

	assert.NoError(t, c.Clear(ctx))

	_, ok := c.Get(ctx, "/")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "/other")
	assert.False(t, ok)
}

// TestMemoryCacheMiss 测试未写入的键
func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()
	_, ok := c.Get(context.Background(), "/missing")
	assert.False(t, ok)
}

// TestMemoryCacheCopiesValue 测试写入后修改原始切片不影响缓存内容
func TestMemoryCacheCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	buf := []byte("immutable")
	assert.NoError(t, c.Set(ctx, "/", buf, time.Minute))
	buf[0] = 'X'

	value, ok := c.Get(ctx, "/")
	assert.True(t, ok)
	assert.Equal(t, []byte("immutable"), value)
}
