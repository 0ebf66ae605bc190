package server

import (
	"strings"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"

	"github.com/example/goshop/internal/apperr"
	"github.com/example/goshop/internal/auth"
	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/article"
	"github.com/example/goshop/internal/datamodels/user"
)

// jwtMiddleware 解析 Authorization 头里的 JWT，命中缓存时跳过签名校验
func jwtMiddleware(cfg *config.JWTConfig, cache *auth.TokenCache) iris.Handler {
	return func(ctx iris.Context) {
		token := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "missing token"})
			return
		}

		var claims *auth.Claims
		if cache != nil {
			if cached, hit, err := cache.Get(ctx.Request().Context(), token); err == nil && hit {
				claims = cached
			}
		}
		if claims == nil {
			parsed, err := auth.ParseToken(cfg, token)
			if err != nil {
				ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid token"})
				return
			}
			claims = parsed
			if cache != nil {
				_ = cache.Set(ctx.Request().Context(), token, claims)
			}
		}

		ctx.Values().Set("user_id", claims.UserID)
		ctx.Values().Set("username", claims.Username)
		ctx.Values().Set("role", string(claims.Role))
		ctx.Next()
	}
}

// requireRole 角色门禁，需在 jwtMiddleware 之后挂载
func requireRole(role user.Role) iris.Handler {
	return func(ctx iris.Context) {
		if ctx.Values().GetString("role") != string(role) {
			ctx.StopWithJSON(403, iris.Map{"code": 403, "msg": "permission denied"})
			return
		}
		ctx.Next()
	}
}

// fail 把业务错误转成统一响应信封
func fail(ctx iris.Context, err error) {
	if e := apperr.From(err); e != nil {
		ctx.StopWithJSON(apperr.HTTPStatus(err), iris.Map{"code": e.Code, "msg": e.Message})
		return
	}
	ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
}

// searchRequest 搜索接口入参
type searchRequest struct {
	CategoryID int64            `json:"categoryId"`
	Keywords   string           `json:"keywords"`
	PriceMin   *decimal.Decimal `json:"priceMin"`
	PriceMax   *decimal.Decimal `json:"priceMax"`
	Features   []struct {
		FeatureID int64    `json:"featureId"`
		Values    []string `json:"values"`
	} `json:"features"`
	OrderBy        string `json:"orderBy"`
	OrderDirection string `json:"orderDirection"`
	Page           int    `json:"page"`
	ItemsPerPage   int    `json:"itemsPerPage"`
}

// toCriteria 转换成搜索条件；排序方向仅接受 ASC/DESC
func (r searchRequest) toCriteria() (article.SearchCriteria, error) {
	c := article.SearchCriteria{
		CategoryID: r.CategoryID,
		Keyword:    r.Keywords,
		PriceMin:   r.PriceMin,
		PriceMax:   r.PriceMax,
		OrderBy:    article.SortKey(r.OrderBy),
		Page:       r.Page,
		PageSize:   r.ItemsPerPage,
	}
	switch strings.ToUpper(r.OrderDirection) {
	case "", "ASC":
	case "DESC":
		c.Descending = true
	default:
		return c, apperr.Validationf("排序方向仅支持 ASC/DESC")
	}
	for _, f := range r.Features {
		c.Features = append(c.Features, article.FeatureFilter{
			FeatureID: f.FeatureID,
			Values:    f.Values,
		})
	}
	return c, nil
}
