package domain

import (
	"time"
)

type Role string

const (
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// Tier 决定人力成本计算时使用的时薪
type Tier string

const (
	TierFullTime         Tier = "FullTime"
	TierCasual           Tier = "Casual"
	TierManager          Tier = "Manager"
	TierAssistantManager Tier = "AssistantManager"
)

func (t Tier) IsManagerial() bool {
	return t == TierManager || t == TierAssistantManager
}

type Employee struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Tier         Tier      `json:"tier"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

func (e *Employee) IsManager() bool {
	return e.Role == RoleManager
}
