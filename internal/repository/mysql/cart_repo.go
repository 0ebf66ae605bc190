package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/cart"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

// hydrated 预加载用户与行项目（含商品聚合）
func (r *cartRepo) hydrated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Lines").
		Preload("Lines.Article").
		Preload("Lines.Article.Category").
		Preload("Lines.Article.Prices", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		})
}

func (r *cartRepo) GetByID(ctx context.Context, id int64) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.hydrated(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepo) GetActiveByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	var c cart.Cart
	err := r.db.WithContext(ctx).
		Joins("LEFT JOIN orders ON orders.cart_id = carts.id").
		Where("carts.user_id = ? AND orders.id IS NULL", userID).
		Order("carts.id DESC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, c.ID)
}

func (r *cartRepo) Create(ctx context.Context, c *cart.Cart) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cartRepo) GetLine(ctx context.Context, cartID, articleID int64) (*cart.Line, error) {
	var l cart.Line
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND article_id = ?", cartID, articleID).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *cartRepo) SaveLine(ctx context.Context, l *cart.Line) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *cartRepo) DeleteLine(ctx context.Context, cartID, articleID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND article_id = ?", cartID, articleID).
		Delete(&cart.Line{}).Error
}
