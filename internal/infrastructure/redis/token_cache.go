package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// トークンキャッシュのキー
const accessTokenKey = "google:calendar:access_token"

// TokenCache はGoogleカレンダー用アクセストークンのキャッシュを管理する
// プロセス再起動のたびに対話的サインインを繰り返さないためのもの
type TokenCache struct {
	client *redis.Client
}

// NewTokenCache は新しいTokenCacheインスタンスを作成する
func NewTokenCache(client *redis.Client) *TokenCache {
	return &TokenCache{client: client}
}

// Get はキャッシュ済みのアクセストークンを取得する
func (c *TokenCache) Get(ctx context.Context) (string, error) {
	token, err := c.client.Get(ctx, accessTokenKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return token, nil
}

// Set はアクセストークンをキャッシュに保存する
func (c *TokenCache) Set(ctx context.Context, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, accessTokenKey, token, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はキャッシュ済みトークンを破棄する（サインアウト時）
func (c *TokenCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, accessTokenKey).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}
