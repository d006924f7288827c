package election

import "time"

type ElectionModel struct {
	ID                string    `gorm:"primaryKey;type:varchar(36)"`
	Title             string    `gorm:"size:200;not null"`
	Description       string    `gorm:"type:text;not null"`
	StartDate         time.Time `gorm:"not null"`
	EndDate           time.Time `gorm:"not null"`
	Status            string    `gorm:"size:16;not null;default:upcoming;index"`
	ManuallyCompleted bool      `gorm:"not null;default:false"`
	CreatedBy         string    `gorm:"type:varchar(36);not null;index"`

	Constituencies []ConstituencyModel `gorm:"foreignKey:ElectionID"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ElectionModel) TableName() string { return "elections" }

// ConstituencyModel 选区名在同一选举内忽略大小写唯一（NameKey = lower(trim(name))）
type ConstituencyModel struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	ElectionID string `gorm:"type:varchar(36);not null;uniqueIndex:uniq_constituency_name,priority:1"`
	Name       string `gorm:"size:128;not null"`
	NameKey    string `gorm:"size:128;not null;uniqueIndex:uniq_constituency_name,priority:2"`
	Position   int    `gorm:"not null"`

	Members []MemberModel `gorm:"foreignKey:ConstituencyID"`
}

func (ConstituencyModel) TableName() string { return "constituencies" }

// MemberModel 自增 ID 即插入顺序
type MemberModel struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	ConstituencyID string    `gorm:"type:varchar(36);not null;uniqueIndex:uniq_member,priority:1"`
	Kind           string    `gorm:"size:16;not null;uniqueIndex:uniq_member,priority:2"`
	UserID         string    `gorm:"type:varchar(36);not null;uniqueIndex:uniq_member,priority:3;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (MemberModel) TableName() string { return "constituency_members" }
