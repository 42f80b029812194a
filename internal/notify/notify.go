package notify

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var ErrUnsupportedType = errors.New("loại thông báo không được hỗ trợ")

type Publisher interface {
	Publish(ctx context.Context, msg *domain.NotificationMessage) error
}

// DeclareQueue 声明持久化队列，API 和 worker 两端都会调用，保证先启动的一方创建队列
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,  // 队列名称
		true,  // 是否持久化
		false, // 是否自动删除
		false, // 是否独占
		false, // 是否不等待
		nil,   // 额外参数
	)
}

type AMQPPublisher struct {
	ch      *amqp.Channel
	queue   string
	timeout time.Duration
}

func NewAMQPPublisher(ch *amqp.Channel, queue string, timeout time.Duration) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, queue: queue, timeout: timeout}
}

func (p *AMQPPublisher) Publish(ctx context.Context, msg *domain.NotificationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

type Mail struct {
	To      string
	Subject string
	HTML    string
}

type envelope struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

var subjects = map[string]string{
	domain.NotificationPreferenceApproved: "Lịch làm việc - Đăng ký ca đã được duyệt",
	domain.NotificationPreferenceRejected: "Lịch làm việc - Đăng ký ca bị từ chối",
}

// Render 把队列中的消息体渲染为邮件
func Render(body []byte) (*Mail, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}

	subject, ok := subjects[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, env.Type)
	}

	var data domain.PreferenceReviewedData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, env.Type+".html", data); err != nil {
		return nil, err
	}

	return &Mail{To: env.To, Subject: subject, HTML: buf.String()}, nil
}

// PreferenceReviewed 构造登记被审核后的通知
func PreferenceReviewed(employee *domain.Employee, preference *domain.ShiftPreference, shifts []*domain.Shift) *domain.NotificationMessage {
	msgType := domain.NotificationPreferenceRejected
	if preference.Status == domain.PreferenceStatusApproved {
		msgType = domain.NotificationPreferenceApproved
	}

	data := domain.PreferenceReviewedData{
		FullName: employee.FullName,
		Date:     preference.Date.String(),
		Status:   string(preference.Status),
		Notes:    preference.Notes,
		Shifts:   make([]domain.Shift, 0, len(shifts)),
	}
	for _, s := range shifts {
		data.Shifts = append(data.Shifts, *s)
	}

	return &domain.NotificationMessage{
		Type: msgType,
		To:   employee.Email,
		Data: data,
	}
}
