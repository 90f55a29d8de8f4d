package domain

import (
	"strings"
	"time"
)

type Employee struct {
	ID             int64     `json:"id"`
	FullName       string    `json:"fullName"`
	Phone          string    `json:"phone"`
	ContactAddress string    `json:"contactAddress"` // 短信网关地址（如 5551234567@sms.example.com）或邮箱
	Language       string    `json:"language"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	Version        int32     `json:"-"`
}

func (e *Employee) HasContact() bool {
	return strings.TrimSpace(e.ContactAddress) != ""
}

type Job struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

func (j *Job) HasLocation() bool {
	return strings.TrimSpace(j.Address) != ""
}
