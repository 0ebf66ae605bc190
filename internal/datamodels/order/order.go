package order

import (
	"context"
	"time"

	"github.com/example/goshop/internal/datamodels/cart"
)

// Status 订单状态
type Status string

const (
	StatusPending  Status = "pending"  // 待处理
	StatusAccepted Status = "accepted" // 已接单
	StatusRejected Status = "rejected" // 已拒绝（终态）
	StatusShipped  Status = "shipped"  // 已发货（终态）
)

// ParseStatus 解析订单状态字符串
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusRejected, StatusShipped:
		return Status(s), true
	}
	return "", false
}

// validTransitions 订单状态机：只允许表内的迁移
var validTransitions = map[Status][]Status{
	StatusPending:  {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusShipped},
	StatusRejected: {},
	StatusShipped:  {},
}

// CanTransition 判断 from 状态能否迁移到 to
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order 订单模型；CartID 唯一索引保证一个购物车至多一张订单
type Order struct {
	ID        int64  `gorm:"primaryKey"`
	CartID    int64  `gorm:"uniqueIndex;not null"`
	Status    Status `gorm:"size:16;index;not null;default:pending"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Cart *cart.Cart `gorm:"foreignKey:CartID"`
}

// Repository 订单仓储接口
type Repository interface {
	Create(ctx context.Context, o *Order) error
	// GetByID 返回带购物车、用户、行项目及商品聚合的完整订单
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByCartID(ctx context.Context, cartID int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	ListRecent(ctx context.Context, limit int) ([]*Order, error)
}
