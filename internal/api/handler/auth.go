package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SignOuter はカレンダー連携のサインアウトを表す
type SignOuter interface {
	SignOut(ctx context.Context) error
}

// AuthHandler はカレンダー連携の認証操作を扱う
type AuthHandler struct {
	auth SignOuter
}

func NewAuthHandler(auth SignOuter) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignOut godoc
// @Summary カレンダー連携からサインアウト
// @Description 保持しているアクセストークンを失効させ、キャッシュから破棄します
// @Tags auth
// @Produce json
// @Success 204
// @Failure 502 {object} map[string]string
// @Router /auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.auth.SignOut(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
