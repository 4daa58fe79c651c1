package googlecal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/sanosuguru/go-printer-maintenance/internal/config"
	"github.com/sanosuguru/go-printer-maintenance/internal/pkg/logger"
)

// Google Calendarの予定作成・削除に必要なスコープ
const calendarScope = "https://www.googleapis.com/auth/calendar.events"

// TokenProvider はAPI呼び出しに使うベアラートークンの供給元を表す
type TokenProvider interface {
	// AccessToken は有効なアクセストークンを返す
	// トークンが未取得の場合は対話的サインインが完了するまでブロックする
	AccessToken(ctx context.Context) (string, error)
}

// StaticTokenProvider は固定トークンを返すTokenProvider（テスト・検証用）
type StaticTokenProvider string

func (p StaticTokenProvider) AccessToken(_ context.Context) (string, error) {
	return string(p), nil
}

// TokenCache はプロセスをまたいでトークンを保持するキャッシュを表す
// Redis実装が差し込まれるが、nilでも動作する（毎回サインインになるだけ）
type TokenCache interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Authenticator はOAuth 2.0デバイス認可フローでアクセストークンを取得・保持する
type Authenticator struct {
	oauth     *oauth2.Config
	cache     TokenCache
	tokenTTL  time.Duration
	revokeURL string
	http      *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewAuthenticator はAuthenticatorを作成する（cacheはnil可）
func NewAuthenticator(cfg *config.GoogleConfig, cache TokenCache) *Authenticator {
	return &Authenticator{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       []string{calendarScope},
			Endpoint: oauth2.Endpoint{
				AuthURL:       cfg.AuthURL,
				TokenURL:      cfg.TokenURL,
				DeviceAuthURL: cfg.DeviceAuthURL,
			},
		},
		cache:     cache,
		tokenTTL:  cfg.TokenTTL,
		revokeURL: cfg.RevokeURL,
		http:      http.DefaultClient,
	}
}

// AccessToken は有効なアクセストークンを返す
// メモリ→キャッシュ→対話的サインインの順で解決し、サインイン中はブロックする
func (a *Authenticator) AccessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.expiry) {
		return a.token, nil
	}

	if a.cache != nil {
		token, err := a.cache.Get(ctx)
		if err == nil {
			// キャッシュ側のTTLが正なので短めの再確認間隔でメモ化する
			a.token = token
			a.expiry = time.Now().Add(time.Minute)
			return token, nil
		}
	}

	token, expiry, err := a.signIn(ctx)
	if err != nil {
		return "", err
	}

	a.token = token
	a.expiry = expiry
	if a.cache != nil {
		if err := a.cache.Set(ctx, token, time.Until(expiry)); err != nil {
			logger.Warn("アクセストークンのキャッシュ保存に失敗", zap.Error(err))
		}
	}
	return token, nil
}

// signIn はデバイス認可フローでサインインし、トークンと有効期限を返す
func (a *Authenticator) signIn(ctx context.Context) (string, time.Time, error) {
	da, err := a.oauth.DeviceAuth(ctx)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("サインインの開始に失敗しました: %w", err)
	}

	logger.Info("Googleサインインが必要です",
		zap.String("verification_url", da.VerificationURI),
		zap.String("user_code", da.UserCode),
	)

	token, err := a.oauth.DeviceAccessToken(ctx, da)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("サインインに失敗しました: %w", err)
	}

	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = time.Now().Add(a.tokenTTL)
	}
	return token.AccessToken, expiry, nil
}

// SignOut はトークンを失効させ、メモリとキャッシュから破棄する
func (a *Authenticator) SignOut(ctx context.Context) error {
	a.mu.Lock()
	token := a.token
	a.token = ""
	a.expiry = time.Time{}
	a.mu.Unlock()

	if a.cache != nil {
		if err := a.cache.Invalidate(ctx); err != nil {
			logger.Warn("トークンキャッシュの破棄に失敗", zap.Error(err))
		}
	}

	if token == "" {
		return nil
	}

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("トークン失効リクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("トークン失効に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("トークン失効に失敗しました: status=%d", resp.StatusCode)
	}
	return nil
}

// インターフェースを満たしているか確認
var _ TokenProvider = (*Authenticator)(nil)
var _ TokenProvider = StaticTokenProvider("")
