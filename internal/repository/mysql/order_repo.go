package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

// hydrated 预加载订单聚合：购物车、用户、行项目、商品、分类、价格历史
func (r *orderRepo) hydrated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Cart").
		Preload("Cart.User").
		Preload("Cart.Lines").
		Preload("Cart.Lines.Article").
		Preload("Cart.Lines.Article.Category").
		Preload("Cart.Lines.Article.Prices", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		})
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.hydrated(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) GetByCartID(ctx context.Context, cartID int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	var list []*order.Order
	err := r.hydrated(ctx).
		Joins("JOIN carts ON carts.id = orders.cart_id").
		Where("carts.user_id = ?", userID).
		Order("orders.id DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	var list []*order.Order
	if err := r.hydrated(ctx).
		Order("orders.id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
