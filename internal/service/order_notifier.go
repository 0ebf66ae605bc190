package service

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/goshop/internal/datamodels/order"
)

const orderMailQueue = "order_mail_queue"

// OrderMessage 写入 MQ 的订单通知消息，邮件 worker 按 ID 回读完整订单
type OrderMessage struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// MQOrderNotifier 把订单通知发布到 RabbitMQ，由独立 worker 消费发信
type MQOrderNotifier struct {
	conn *amqp.Connection
}

// NewMQOrderNotifier 创建 MQ 订单通知器
func NewMQOrderNotifier(conn *amqp.Connection) *MQOrderNotifier {
	return &MQOrderNotifier{conn: conn}
}

// Notify 发布订单消息
func (n *MQOrderNotifier) Notify(ctx context.Context, o *order.Order) error {
	ch, err := n.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(orderMailQueue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(&OrderMessage{
		OrderID: o.ID,
		Status:  string(o.Status),
	})
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		orderMailQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// OrderMailQueue worker 侧声明队列时使用
func OrderMailQueue() string { return orderMailQueue }
