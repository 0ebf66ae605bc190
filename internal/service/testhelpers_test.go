package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/article"
	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/datamodels/user"
	"github.com/example/goshop/internal/repository/mysql"
)

var testDBSeq int64

// newTestDB 每个测试一个独立的内存库；单连接避免共享缓存下的锁竞争
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:goshop_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, mysql.Migrate(db))
	return db
}

type testEnv struct {
	db      *gorm.DB
	catalog *CatalogService
	search  *SearchService
	carts   *CartService
	orders  *OrderService
}

func newTestEnv(t *testing.T, notifier OrderNotifier) *testEnv {
	t.Helper()
	db := newTestDB(t)
	cfg := config.DefaultConfig()
	articleRepo := mysql.NewArticleRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	return &testEnv{
		db:      db,
		catalog: NewCatalogService(db, cfg.Catalog, articleRepo, categoryRepo),
		search:  NewSearchService(cfg.Search, articleRepo),
		carts:   NewCartService(cartRepo, articleRepo),
		orders:  NewOrderService(db, orderRepo, notifier),
	}
}

func (e *testEnv) mustCategory(t *testing.T, name string) *category.Category {
	t.Helper()
	c := &category.Category{Name: name}
	require.NoError(t, e.db.Create(c).Error)
	return c
}

func (e *testEnv) mustFeature(t *testing.T, categoryID int64, name string) *category.Feature {
	t.Helper()
	f := &category.Feature{Name: name, CategoryID: categoryID}
	require.NoError(t, e.db.Create(f).Error)
	return f
}

func (e *testEnv) mustUser(t *testing.T, username string) *user.User {
	t.Helper()
	u := &user.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     user.RoleUser,
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

// mustCartWithLines 直接在库里铺一个带行项目的购物车
func (e *testEnv) mustCartWithLines(t *testing.T, userID int64, lines ...cart.Line) *cart.Cart {
	t.Helper()
	c := &cart.Cart{UserID: userID}
	require.NoError(t, e.db.Create(c).Error)
	for i := range lines {
		lines[i].CartID = c.ID
		require.NoError(t, e.db.Create(&lines[i]).Error)
	}
	return c
}

// validCreateInput 满足所有字段约束的创建入参
func validCreateInput(categoryID int64, name, price string) CreateArticleInput {
	return CreateArticleInput{
		Name:        name,
		CategoryID:  categoryID,
		Excerpt:     "A short excerpt for " + name,
		Description: "A sufficiently long description for " + name + ", padded to pass the minimum length requirement of the catalog validation rules.",
		Price:       decimal.RequireFromString(price),
	}
}

func editInputFrom(in CreateArticleInput) EditArticleInput {
	return EditArticleInput{
		Name:        in.Name,
		CategoryID:  in.CategoryID,
		Excerpt:     in.Excerpt,
		Description: in.Description,
		Status:      string(article.StatusAvailable),
		IsPromoted:  false,
		Price:       in.Price,
		Features:    nil,
	}
}

func (e *testEnv) mustArticle(t *testing.T, in CreateArticleInput) *article.Article {
	t.Helper()
	a, err := e.catalog.CreateArticle(context.Background(), in)
	require.NoError(t, err)
	return a
}
