package sqlbackend

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type propertyModel struct {
	ID          string                      `json:"id" gorm:"column:id;primaryKey;size:64"`
	Title       string                      `json:"title" gorm:"column:title"`
	Location    string                      `json:"location" gorm:"column:location"`
	Price       string                      `json:"price" gorm:"column:price"`
	ImageURL    string                      `json:"image_url" gorm:"column:image_url"`
	Images      datatypes.JSONSlice[string] `json:"images" gorm:"column:images"`
	Beds        string                      `json:"beds" gorm:"column:beds"`
	Parking     string                      `json:"parking" gorm:"column:parking"`
	Area        string                      `json:"area" gorm:"column:area"`
	Tag         string                      `json:"tag" gorm:"column:tag"`
	Description string                      `json:"description" gorm:"column:description"`
	Features    datatypes.JSONSlice[string] `json:"features" gorm:"column:features"`
	Purpose     string                      `json:"purpose" gorm:"column:purpose;index"`
	Type        string                      `json:"type" gorm:"column:type;index"`
	City        string                      `json:"city" gorm:"column:city"`
	VideoURL    string                      `json:"video_url" gorm:"column:video_url"`
	CreatedAt   time.Time                   `json:"created_at" gorm:"column:created_at;autoCreateTime;index"`
}

func (propertyModel) TableName() string { return "properties" }

func (m *propertyModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type favoriteModel struct {
	UserID     string    `json:"user_id" gorm:"column:user_id;primaryKey;size:64"`
	PropertyID string    `json:"property_id" gorm:"column:property_id;primaryKey;size:64;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (favoriteModel) TableName() string { return "favorites" }

type contactModel struct {
	ID         string    `json:"id" gorm:"column:id;primaryKey;size:36"`
	Name       string    `json:"name" gorm:"column:name"`
	Phone      string    `json:"phone" gorm:"column:phone"`
	Email      string    `json:"email" gorm:"column:email"`
	Message    string    `json:"message" gorm:"column:message"`
	Source     string    `json:"source" gorm:"column:source"`
	PropertyID *string   `json:"property_id" gorm:"column:property_id;size:64;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (contactModel) TableName() string { return "contacts" }

func (m *contactModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type authUser struct {
	ID           string     `gorm:"column:id;primaryKey;size:36"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	ConfirmedAt  *time.Time `gorm:"column:confirmed_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (authUser) TableName() string { return "auth_users" }

type authSession struct {
	ID        string     `gorm:"column:id;primaryKey;size:36"`
	UserID    string     `gorm:"column:user_id;index;not null"`
	ExpiresAt time.Time  `gorm:"column:expires_at;index"`
	RevokedAt *time.Time `gorm:"column:revoked_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (authSession) TableName() string { return "auth_sessions" }

func allModels() []any {
	return []any{
		&propertyModel{},
		&favoriteModel{},
		&contactModel{},
		&authUser{},
		&authSession{},
	}
}
