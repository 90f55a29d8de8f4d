package notify

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

// 短信网关会截断过长的内容，所以只用纯文本
var assignmentBody = template.Must(template.New("assignment").Parse(
	`{{.RecipientName}}, {{.Date}}
{{.JobName}}
{{.JobAddress}}
{{- if .Tasks}}
{{.Tasks}}
{{- end}}
{{- if .Notes}}
{{.Notes}}
{{- end}}
`))

var subjects = map[string]string{
	"en": "Assignment for %s",
	"es": "Asignación para %s",
	"zh": "%s 的排班",
}

// MailClient 是 *mail.Client 中用到的部分
type MailClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPSender 通过 SMTP 直接发送排班通知，收件地址可以是邮箱也可以是短信网关地址
type SMTPSender struct {
	client MailClient
	from   string
}

func NewSMTPSender(client MailClient, from string) *SMTPSender {
	return &SMTPSender{client: client, from: from}
}

func (s *SMTPSender) SendAssignmentMessage(ctx context.Context, rowID string, msg domain.AssignmentMessage) error {
	m, err := s.BuildMail(msg)
	if err != nil {
		return err
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

// BuildMail 构建单个收件人的邮件
func (s *SMTPSender) BuildMail(msg domain.AssignmentMessage) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", s.from, err)
	}
	if err := m.To(strings.TrimSpace(msg.ContactAddress)); err != nil {
		return nil, fmt.Errorf("invalid contact address %q: %w", msg.ContactAddress, err)
	}

	m.Subject(Subject(msg))
	if err := m.SetBodyTextTemplate(assignmentBody, msg); err != nil {
		return nil, err
	}

	return m, nil
}

// Subject 按员工语言选择标题，未知语言使用英文
func Subject(msg domain.AssignmentMessage) string {
	format, ok := subjects[msg.Language]
	if !ok {
		format = subjects["en"]
	}
	return fmt.Sprintf(format, msg.Date)
}

// RenderBody 渲染消息正文
func RenderBody(msg domain.AssignmentMessage) (string, error) {
	var sb strings.Builder
	if err := assignmentBody.Execute(&sb, msg); err != nil {
		return "", err
	}
	return sb.String(), nil
}
