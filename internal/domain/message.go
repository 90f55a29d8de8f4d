package domain

// AssignmentMessage 发给单个员工的排班通知
type AssignmentMessage struct {
	RecipientID    int64  `json:"recipientID"`
	RecipientName  string `json:"recipientName"`
	ContactAddress string `json:"contactAddress"`
	JobName        string `json:"jobName"`
	JobAddress     string `json:"jobAddress"`
	Tasks          string `json:"tasks"`
	Date           string `json:"date"`
	Notes          string `json:"notes"`
	Language       string `json:"language,omitempty"`
}

// QueueMessage 投递到消息队列中的信封
type QueueMessage struct {
	Type  string            `json:"type"`
	RowID string            `json:"rowID"`
	Data  AssignmentMessage `json:"data"`
}

const QueueMessageTypeAssignment = "assignment"
