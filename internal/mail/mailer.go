package mail

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	gomail "gopkg.in/gomail.v2"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/order"
)

// Mailer 订单确认邮件发送器
type Mailer struct {
	cfg *config.MailConfig
}

// New 创建发送器
func New(cfg *config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendOrderEmail 渲染并发送订单确认邮件；订单必须是完整聚合
func (m *Mailer) SendOrderEmail(o *order.Order) error {
	if o.Cart == nil || o.Cart.User == nil {
		return fmt.Errorf("order %d is not fully hydrated", o.ID)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", o.Cart.User.Email)
	if m.cfg.OrderBcc != "" {
		msg.SetHeader("Bcc", m.cfg.OrderBcc)
	}
	msg.SetHeader("Subject", "Order details")
	msg.SetBody("text/html", RenderOrderHTML(o))

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	return d.DialAndSend(msg)
}

// RenderOrderHTML 生成邮件正文：逐行列出商品与数量，合计按各商品
// 当前价（最新价格历史）乘数量求和
func RenderOrderHTML(o *order.Order) string {
	var b strings.Builder
	total := decimal.Zero

	b.WriteString("<p>感谢您的订购！</p>\n")
	b.WriteString(fmt.Sprintf("<p>订单号 #%d，当前状态：%s。明细如下：</p>\n<ul>\n", o.ID, o.Status))
	for _, line := range o.Cart.Lines {
		if line.Article == nil {
			continue
		}
		b.WriteString(fmt.Sprintf("<li>%s x %d</li>\n", line.Article.Name, line.Quantity))
		if price, ok := line.Article.CurrentPrice(); ok {
			total = total.Add(price.Mul(decimal.NewFromInt(line.Quantity)))
		}
	}
	b.WriteString("</ul>\n")
	b.WriteString(fmt.Sprintf("<p>合计金额：%s EUR。</p>\n", total.StringFixed(2)))
	return b.String()
}
