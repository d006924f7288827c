package user

import "time"

type UserModel struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)"`
	Name         string  `gorm:"size:128;not null"`
	Email        string  `gorm:"uniqueIndex;size:191;not null"`
	PasswordHash string  `gorm:"size:100;not null"`
	Role         string  `gorm:"size:16;not null;default:voter;index"`
	Constituency string  `gorm:"size:128;index"`
	Party        string  `gorm:"size:128"`
	Manifesto    string  `gorm:"type:text"`
	VoterID      *string `gorm:"uniqueIndex;size:10"` // NULL 不参与唯一约束
	HasVoted     bool    `gorm:"not null;default:false"`
	Votes        int64   `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }
