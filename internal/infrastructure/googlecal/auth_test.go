package googlecal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-printer-maintenance/internal/config"
	redisinfra "github.com/sanosuguru/go-printer-maintenance/internal/infrastructure/redis"
)

// fakeTokenCache はテスト用のインメモリTokenCache
type fakeTokenCache struct {
	token string
	sets  int
}

func (c *fakeTokenCache) Get(_ context.Context) (string, error) {
	if c.token == "" {
		return "", redisinfra.ErrCacheMiss
	}
	return c.token, nil
}

func (c *fakeTokenCache) Set(_ context.Context, token string, _ time.Duration) error {
	c.token = token
	c.sets++
	return nil
}

func (c *fakeTokenCache) Invalidate(_ context.Context) error {
	c.token = ""
	return nil
}

// fakeOAuthServer はデバイス認可フローとトークン失効のエンドポイントを提供する
func fakeOAuthServer(t *testing.T) (*httptest.Server, *atomic.Int32, *atomic.Int32) {
	t.Helper()

	var deviceCalls, revokeCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/device/code", func(w http.ResponseWriter, r *http.Request) {
		deviceCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"device_code":      "device-123",
			"user_code":        "ABCD-EFGH",
			"verification_uri": "https://example.com/device",
			"expires_in":       1800,
			"interval":         1,
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "signed-in-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/revoke", func(w http.ResponseWriter, r *http.Request) {
		revokeCalls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.NotEmpty(t, r.PostForm.Get("token"))
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &deviceCalls, &revokeCalls
}

func testAuthenticator(t *testing.T, cache TokenCache) (*Authenticator, *atomic.Int32, *atomic.Int32) {
	t.Helper()

	server, deviceCalls, revokeCalls := fakeOAuthServer(t)
	cfg := &config.GoogleConfig{
		ClientID:      "client-123",
		AuthURL:       server.URL + "/auth",
		TokenURL:      server.URL + "/token",
		DeviceAuthURL: server.URL + "/device/code",
		RevokeURL:     server.URL + "/revoke",
		TokenTTL:      55 * time.Minute,
	}
	return NewAuthenticator(cfg, cache), deviceCalls, revokeCalls
}

func TestAuthenticator_AccessToken_DeviceFlow(t *testing.T) {
	cache := &fakeTokenCache{}
	auth, deviceCalls, _ := testAuthenticator(t, cache)

	token, err := auth.AccessToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "signed-in-token", token)
	assert.Equal(t, int32(1), deviceCalls.Load())

	// 取得したトークンはキャッシュにも書かれる
	assert.Equal(t, "signed-in-token", cache.token)
	assert.Equal(t, 1, cache.sets)
}

func TestAuthenticator_AccessToken_Memoized(t *testing.T) {
	auth, deviceCalls, _ := testAuthenticator(t, nil)
	ctx := context.Background()

	first, err := auth.AccessToken(ctx)
	require.NoError(t, err)
	second, err := auth.AccessToken(ctx)
	require.NoError(t, err)

	// サインインは1回だけ
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), deviceCalls.Load())
}

func TestAuthenticator_AccessToken_FromCache(t *testing.T) {
	cache := &fakeTokenCache{token: "cached-token"}
	auth, deviceCalls, _ := testAuthenticator(t, cache)

	token, err := auth.AccessToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "cached-token", token)
	// キャッシュヒット時はサインインしない
	assert.Equal(t, int32(0), deviceCalls.Load())
}

func TestAuthenticator_SignOut(t *testing.T) {
	cache := &fakeTokenCache{}
	auth, deviceCalls, revokeCalls := testAuthenticator(t, cache)
	ctx := context.Background()

	_, err := auth.AccessToken(ctx)
	require.NoError(t, err)

	require.NoError(t, auth.SignOut(ctx))
	assert.Equal(t, int32(1), revokeCalls.Load())
	assert.Equal(t, "", cache.token)

	// サインアウト後は再サインインが必要になる
	_, err = auth.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), deviceCalls.Load())
}

func TestStaticTokenProvider(t *testing.T) {
	token, err := StaticTokenProvider("fixed").AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed", token)
}
