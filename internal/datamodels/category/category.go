package category

import (
	"context"
	"time"
)

// Category 商品分类
type Category struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"size:64;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Feature 分类下可用的商品特性（如颜色、容量）
type Feature struct {
	ID         int64  `gorm:"primaryKey"`
	Name       string `gorm:"size:64;not null"`
	CategoryID int64  `gorm:"index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository 分类/特性仓储接口
type Repository interface {
	GetCategory(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	GetFeature(ctx context.Context, id int64) (*Feature, error)
	ListFeaturesByCategory(ctx context.Context, categoryID int64) ([]*Feature, error)
	CreateFeature(ctx context.Context, f *Feature) error
}
