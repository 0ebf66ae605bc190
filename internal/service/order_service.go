package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/goshop/internal/apperr"
	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/order"
)

// OrderNotifier 订单通知协作方；发送失败只记日志，不影响主流程
type OrderNotifier interface {
	Notify(ctx context.Context, o *order.Order) error
}

// OrderService 订单生命周期：购物车一次性转订单 + 状态机驱动流转
type OrderService struct {
	db       *gorm.DB
	orders   order.Repository
	notifier OrderNotifier
}

// NewOrderService 创建订单服务
func NewOrderService(db *gorm.DB, orders order.Repository, notifier OrderNotifier) *OrderService {
	return &OrderService{db: db, orders: orders, notifier: notifier}
}

// isDuplicateKey 识别唯一索引冲突（兼容 MySQL 与 sqlite 文案）
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint")
}

// PlaceOrder 把购物车转成待处理订单。一个购物车至多一张订单，
// 除了事务内的前置检查，还靠 cart_id 唯一索引兜底并发下单
func (s *OrderService) PlaceOrder(ctx context.Context, cartID int64) (*order.Order, error) {
	var created order.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c cart.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&c, cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, apperr.CodeCartNotFound, "购物车不存在")
			}
			return err
		}

		var existing order.Order
		err := tx.Where("cart_id = ?", cartID).First(&existing).Error
		if err == nil {
			return apperr.New(apperr.KindConflict, apperr.CodeOrderExists, "该购物车已生成订单")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var lineCount int64
		if err := tx.Model(&cart.Line{}).
			Where("cart_id = ?", cartID).
			Count(&lineCount).Error; err != nil {
			return err
		}
		if lineCount == 0 {
			return apperr.New(apperr.KindEmptyCart, apperr.CodeEmptyCart, "购物车是空的")
		}

		created = order.Order{CartID: cartID, Status: order.StatusPending}
		if err := tx.Create(&created).Error; err != nil {
			if isDuplicateKey(err) {
				return apperr.New(apperr.KindConflict, apperr.CodeOrderExists, "该购物车已生成订单")
			}
			return err
		}
		return nil
	})
	if err != nil {
		GetMonitor().RecordOrderError()
		if ae := apperr.From(err); ae != nil {
			return nil, ae
		}
		return nil, err
	}

	GetMonitor().RecordOrderPlaced()

	hydrated, err := s.orders.GetByID(ctx, created.ID)
	if err != nil {
		return nil, err
	}
	s.notifyAsync(hydrated)
	return hydrated, nil
}

// ChangeStatus 按状态机推进订单状态，成功后异步触发一次通知
func (s *OrderService) ChangeStatus(ctx context.Context, orderID int64, newStatus order.Status) (*order.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o order.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, apperr.CodeOrderNotFound, "订单不存在")
			}
			return err
		}

		if !order.CanTransition(o.Status, newStatus) {
			return apperr.New(apperr.KindInvalidTransition, apperr.CodeInvalidTransition,
				"订单状态不能从 "+string(o.Status)+" 变更为 "+string(newStatus))
		}

		return tx.Model(&o).Update("status", newStatus).Error
	})
	if err != nil {
		if ae := apperr.From(err); ae != nil {
			return nil, ae
		}
		GetMonitor().RecordOrderError()
		return nil, err
	}

	GetMonitor().RecordStatusChange()

	hydrated, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.notifyAsync(hydrated)
	return hydrated, nil
}

// notifyAsync 触发订单通知：不阻塞调用方，失败只记日志
func (s *OrderService) notifyAsync(o *order.Order) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.Notify(ctx, o); err != nil {
			GetMonitor().RecordNotifyError()
			zap.L().Warn("order notification failed",
				zap.Int64("order_id", o.ID),
				zap.Error(err))
		}
	}()
}

// GetByID 查询完整订单
func (s *OrderService) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, apperr.CodeOrderNotFound, "订单不存在")
		}
		return nil, err
	}
	return o, nil
}

// ListByUser 查询用户的订单
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListRecent 查询最新的订单记录
func (s *OrderService) ListRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	return s.orders.ListRecent(ctx, limit)
}
