package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，用于统计错误和性能指标
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	SearchErrors         int64
	AggregateWriteErrors int64
	OrderErrors          int64
	NotifyErrors         int64
	MailFailed           int64

	// 业务统计
	SearchRequests  int64
	AggregateWrites int64
	OrdersPlaced    int64
	StatusChanges   int64
	MailSent        int64

	// 时间统计
	LastSearchTime time.Time
	LastWriteTime  time.Time
	LastOrderTime  time.Time
	LastNotifyErr  time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordSearch 记录一次搜索请求
func (m *Monitor) RecordSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchRequests++
	m.LastSearchTime = time.Now()
}

// RecordSearchError 记录搜索失败
func (m *Monitor) RecordSearchError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchErrors++
}

// RecordAggregateWrite 记录一次商品聚合写入
func (m *Monitor) RecordAggregateWrite() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AggregateWrites++
	m.LastWriteTime = time.Now()
}

// RecordAggregateWriteError 记录聚合写入失败
func (m *Monitor) RecordAggregateWriteError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AggregateWriteErrors++
}

// RecordOrderPlaced 记录下单成功
func (m *Monitor) RecordOrderPlaced() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrdersPlaced++
	m.LastOrderTime = time.Now()
}

// RecordStatusChange 记录订单状态变更成功
func (m *Monitor) RecordStatusChange() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusChanges++
	m.LastOrderTime = time.Now()
}

// RecordOrderError 记录下单/状态变更失败
func (m *Monitor) RecordOrderError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderErrors++
}

// RecordNotifyError 记录通知发送失败
func (m *Monitor) RecordNotifyError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyErrors++
	m.LastNotifyErr = time.Now()
}

// RecordMailSent 记录邮件发送成功
func (m *Monitor) RecordMailSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MailSent++
}

// RecordMailFailed 记录邮件发送失败
func (m *Monitor) RecordMailFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MailFailed++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"search":          m.SearchErrors,
			"aggregate_write": m.AggregateWriteErrors,
			"order":           m.OrderErrors,
			"notify":          m.NotifyErrors,
			"mail":            m.MailFailed,
		},
		"business": map[string]interface{}{
			"search_requests":  m.SearchRequests,
			"aggregate_writes": m.AggregateWrites,
			"orders_placed":    m.OrdersPlaced,
			"status_changes":   m.StatusChanges,
			"mail_sent":        m.MailSent,
		},
		"last_events": map[string]interface{}{
			"search":       m.LastSearchTime,
			"write":        m.LastWriteTime,
			"order":        m.LastOrderTime,
			"notify_error": m.LastNotifyErr,
		},
	}
}

// Reset 重置统计（用于测试或定期清理）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchErrors = 0
	m.AggregateWriteErrors = 0
	m.OrderErrors = 0
	m.NotifyErrors = 0
	m.MailFailed = 0
	m.SearchRequests = 0
	m.AggregateWrites = 0
	m.OrdersPlaced = 0
	m.StatusChanges = 0
	m.MailSent = 0
}
