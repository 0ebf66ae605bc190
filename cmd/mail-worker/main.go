package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/infra/mq"
	"github.com/example/goshop/internal/mail"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	db := mysql.Init(&cfg.MySQL)
	mqConn := mq.Init(&cfg.RabbitMQ)

	orderRepo := mysql.NewOrderRepository(db)
	mailer := mail.New(&cfg.Mail)

	ch, err := mqConn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	queue := service.OrderMailQueue()
	if _, err = ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		zap.L().Fatal("failed to declare queue", zap.Error(err))
	}

	// 手动确认模式（auto-ack=false），失败的消息重新入队
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	zap.L().Info("mail worker started, waiting for messages")

	for d := range msgs {
		var m service.OrderMessage
		if err := json.Unmarshal(d.Body, &m); err != nil {
			zap.L().Warn("invalid message", zap.Error(err))
			// 消息格式错误，拒绝并丢弃
			_ = d.Nack(false, false)
			continue
		}
		handleMessage(context.Background(), orderRepo, mailer, &m, d)
	}
}

func handleMessage(ctx context.Context, orderRepo order.Repository, mailer *mail.Mailer, m *service.OrderMessage, d amqp.Delivery) {
	o, err := orderRepo.GetByID(ctx, m.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 订单没了（理论上不会发生），丢弃消息
			zap.L().Warn("order not found, dropping message", zap.Int64("order_id", m.OrderID))
			_ = d.Nack(false, false)
			return
		}
		zap.L().Warn("load order failed", zap.Int64("order_id", m.OrderID), zap.Error(err))
		_ = d.Nack(false, true)
		return
	}

	if err := mailer.SendOrderEmail(o); err != nil {
		service.GetMonitor().RecordMailFailed()
		zap.L().Warn("send order email failed",
			zap.Int64("order_id", o.ID),
			zap.Error(err))
		// 发送失败重新入队，等下一轮重试
		_ = d.Nack(false, true)
		return
	}

	service.GetMonitor().RecordMailSent()
	zap.L().Info("order email sent",
		zap.Int64("order_id", o.ID),
		zap.String("status", string(o.Status)))

	if err := d.Ack(false); err != nil {
		zap.L().Warn("failed to ack message", zap.Error(err))
	}
}
