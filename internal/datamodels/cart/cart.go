package cart

import (
	"context"
	"time"

	"github.com/example/goshop/internal/datamodels/article"
	"github.com/example/goshop/internal/datamodels/user"
)

// Cart 购物车模型，一个用户可以有多个购物车，下单后换新车
type Cart struct {
	ID        int64 `gorm:"primaryKey"`
	UserID    int64 `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User  *user.User `gorm:"foreignKey:UserID"`
	Lines []Line     `gorm:"foreignKey:CartID"`
}

// Line 购物车行项目：某个商品 + 数量
type Line struct {
	ID        int64 `gorm:"primaryKey"`
	CartID    int64 `gorm:"index;not null"`
	ArticleID int64 `gorm:"index;not null"`
	Quantity  int64 `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Article *article.Article `gorm:"foreignKey:ArticleID"`
}

func (Line) TableName() string { return "cart_lines" }

// Repository 购物车仓储接口
type Repository interface {
	// GetByID 返回带行项目（含商品聚合）与用户的完整购物车
	GetByID(ctx context.Context, id int64) (*Cart, error)
	// GetActiveByUser 返回用户最近一个尚未生成订单的购物车
	GetActiveByUser(ctx context.Context, userID int64) (*Cart, error)
	Create(ctx context.Context, c *Cart) error
	GetLine(ctx context.Context, cartID, articleID int64) (*Line, error)
	SaveLine(ctx context.Context, l *Line) error
	DeleteLine(ctx context.Context, cartID, articleID int64) error
}
