package middleware

import (
	"errors"
	"net/http"
	"strings"

	"sweetshop/internal/config"
	"sweetshop/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // string
	CtxUsernameKey = "username"  // string
	CtxUserRoleKey = "user_role" // string
)

// bearerAuth用のJWT検証ミドルウェア。
// 検証に通ったらActorの材料をcontextへ入れる。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthenticated"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthenticated"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthenticated"))
			}

			//JWTをパースして検証する
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthenticated"))
			}

			//claimsを取り出す
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthenticated"))
			}

			userID, err := parseString(claims["sub"])
			if err != nil || userID == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthenticated"))
			}

			username, err := parseString(claims["username"])
			if err != nil || username == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthenticated"))
			}

			//roleを取り出す（CUSTOMER/ADMIN）
			role, err := parseString(claims["role"])
			if err != nil || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthenticated"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, userID)
			c.Set(CtxUsernameKey, username)
			c.Set(CtxUserRoleKey, role)

			return next(c)
		}
	}
}

// AuthJWTが入れた値からActorを組み立てる。
func ActorFromContext(c echo.Context) (model.Actor, bool) {
	userID, ok := c.Get(CtxUserIDKey).(string)
	if !ok || userID == "" {
		return model.Actor{}, false
	}
	username, _ := c.Get(CtxUsernameKey).(string)
	role, ok := c.Get(CtxUserRoleKey).(string)
	if !ok || role == "" {
		return model.Actor{}, false
	}

	return model.Actor{
		UserID:   userID,
		Username: username,
		Role:     model.Role(role),
	}, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func parseString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("invalid string")
	}
	return s, nil
}
