package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ChatRoom/config"
	"ChatRoom/pkg/logger"

	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"
)

// ErrNotConfigured 发件账号未配置
var ErrNotConfigured = errors.New("mail: sender account not configured")

// Message 一封待发送的邮件
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender 发送一封已经组装好的邮件（gomail.Dialer 实现了该接口）
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer SMTP 发信器
// 发信外层套一个熔断器：SMTP 连续失败后短时间内直接拒绝，避免异步任务堆积在网络超时上。
type Mailer struct {
	sender  Sender
	from    string
	name    string
	breaker *gobreaker.CircuitBreaker
}

// Build 基于配置创建发信器
func Build(cfg config.EmailConfig) (*Mailer, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, ErrNotConfigured
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return New(dialer, cfg), nil
}

// New 使用自定义 Sender 创建发信器
func New(sender Sender, cfg config.EmailConfig) *Mailer {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "smtp",
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn(context.Background(), "邮件熔断器状态变化",
				logger.String("name", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	return &Mailer{
		sender:  sender,
		from:    cfg.Username,
		name:    cfg.FromName,
		breaker: breaker,
	}
}

// Send 发送邮件
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("mail: empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", m.from, m.name)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	start := time.Now()
	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, m.sender.DialAndSend(gm)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("mail: smtp circuit open: %w", err)
		}
		return fmt.Errorf("mail: send to %s: %w", msg.To, err)
	}

	logger.Info(ctx, "邮件发送成功",
		logger.String("subject", msg.Subject),
		logger.Duration("cost", time.Since(start)),
	)
	return nil
}
