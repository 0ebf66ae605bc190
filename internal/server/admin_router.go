package server

import (
	"strconv"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/example/goshop/internal/auth"
	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/user"
	"github.com/example/goshop/internal/infra/mq"
	"github.com/example/goshop/internal/infra/redis"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
)

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由
// 端口通常是 8081，与前台 Web 服务分离，所有接口要求管理员角色。
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 仓储与服务
	userRepo := mysql.NewUserRepository(db)
	articleRepo := mysql.NewArticleRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	catalogSvc := service.NewCatalogService(db, cfg.Catalog, articleRepo, categoryRepo)
	orderSvc := service.NewOrderService(db, orderRepo, service.NewMQOrderNotifier(mqConn))

	ring := auth.NewHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	// 管理员登录
	app.Post("/api/login", func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		token, err := userSvc.Login(ctx.Request().Context(), req.Username, req.Password)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"token": token}})
	})

	api := app.Party("/api",
		jwtMiddleware(&cfg.JWT, tokenCache),
		requireRole(user.RoleAdministrator),
	)

	// ---------- 商品管理 ----------

	// 商品列表（按分类）
	api.Get("/articles", func(ctx iris.Context) {
		categoryID, err := strconv.ParseInt(ctx.URLParamDefault("category", "0"), 10, 64)
		if err != nil || categoryID <= 0 {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "category is required"})
			return
		}
		list, err := catalogSvc.ListByCategory(ctx.Request().Context(), categoryID)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 创建商品（商品 + 首条价格 + 特性值，一个事务）
	api.Post("/articles", func(ctx iris.Context) {
		var req service.CreateArticleInput
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		a, err := catalogSvc.CreateArticle(ctx.Request().Context(), req)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": a})
	})

	// 编辑商品（价格按需追加历史，特性集合按需整体替换）
	api.Patch("/articles/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req service.EditArticleInput
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		a, err := catalogSvc.EditArticle(ctx.Request().Context(), id, req)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": a})
	})

	// ---------- 分类 / 特性管理 ----------

	api.Get("/categories", func(ctx iris.Context) {
		list, err := categoryRepo.ListCategories(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Post("/categories", func(ctx iris.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := ctx.ReadJSON(&req); err != nil || req.Name == "" {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "name is required"})
			return
		}
		c := &category.Category{Name: req.Name}
		if err := categoryRepo.CreateCategory(ctx.Request().Context(), c); err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	api.Get("/categories/{id:int64}/features", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		list, err := categoryRepo.ListFeaturesByCategory(ctx.Request().Context(), id)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Post("/features", func(ctx iris.Context) {
		var req struct {
			Name       string `json:"name"`
			CategoryID int64  `json:"categoryId"`
		}
		if err := ctx.ReadJSON(&req); err != nil || req.Name == "" || req.CategoryID <= 0 {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "name and categoryId are required"})
			return
		}
		f := &category.Feature{Name: req.Name, CategoryID: req.CategoryID}
		if err := categoryRepo.CreateFeature(ctx.Request().Context(), f); err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": f})
	})

	// ---------- 订单管理 ----------

	// 最近订单列表
	api.Get("/orders", func(ctx iris.Context) {
		limitStr := ctx.URLParamDefault("limit", "20")
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			limit = 20
		}
		list, err := orderSvc.ListRecent(ctx.Request().Context(), limit)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 订单状态流转（pending→accepted/rejected，accepted→shipped）
	api.Post("/orders/{id:int64}/status", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		newStatus, ok := order.ParseStatus(req.Status)
		if !ok {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "unknown order status: " + req.Status})
			return
		}
		o, err := orderSvc.ChangeStatus(ctx.Request().Context(), id, newStatus)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// ---------- 运行指标 ----------

	api.Get("/stats", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "data": service.GetMonitor().GetStats()})
	})
}
