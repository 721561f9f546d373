package workshop

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Language string

const (
	LanguageEnglish Language = "english"
	LanguageRussian Language = "russian"
	LanguageBoth    Language = "both"
)

type CheckInType string

const (
	CheckInNone   CheckInType = "no_check_in"
	CheckInSystem CheckInType = "on_innohassle"
	CheckInByLink CheckInType = "by_link"
)

type HostType string

const (
	HostClub  HostType = "club"
	HostOther HostType = "other"
)

type Host struct {
	HostType HostType `json:"host_type" validate:"required,oneof=club other"`
	Name     string   `json:"name" validate:"required,max=255"`
}

type Badge struct {
	Title string `json:"title" validate:"required,max=40"`
	Color string `json:"color" validate:"required,len=7,hexcolor"`
}

type Link struct {
	Title string `json:"title" validate:"required,max=40"`
	URL   string `json:"url" validate:"required,url"`
}

// DefaultCheckInLead is how long before dtstart check-in opens when not set explicitly.
const DefaultCheckInLead = 24 * time.Hour

// CheckinsTable is owned by the checkin package; the store only counts its rows.
const CheckinsTable = "workshop_checkins"

// ============================
// 🔷 GORM Workshop Model
type Workshop struct {
	ID                 uuid.UUID                  `gorm:"type:uuid;primaryKey" json:"id"`
	EnglishName        string                     `gorm:"size:255;not null" json:"english_name"`
	RussianName        string                     `gorm:"size:255" json:"russian_name"`
	EnglishDescription string                     `gorm:"type:text" json:"english_description"`
	RussianDescription string                     `gorm:"type:text" json:"russian_description"`
	Language           *Language                  `gorm:"size:16" json:"language"`
	Hosts              datatypes.JSONSlice[Host]  `json:"hosts"`
	Badges             datatypes.JSONSlice[Badge] `json:"badges"`
	Links              datatypes.JSONSlice[Link]  `json:"links"`
	DTStart            *time.Time                 `gorm:"column:dtstart;index" json:"dtstart"`
	DTEnd              *time.Time                 `gorm:"column:dtend" json:"dtend"`
	CheckInOpens       *time.Time                 `json:"check_in_opens"`
	Place              string                     `gorm:"size:255" json:"place"`
	Capacity           *int                       `json:"capacity"`
	CheckInType        CheckInType                `gorm:"size:32;not null" json:"check_in_type"`
	CheckInLink        *string                    `gorm:"size:1024" json:"check_in_link"`
	IsActive           bool                       `gorm:"not null" json:"is_active"`
	IsDraft            bool                       `gorm:"not null" json:"is_draft"`
	ImageFileID        *string                    `gorm:"size:255" json:"image_file_id"`
	CreatedBy          string                     `gorm:"size:255" json:"created_by"`
	CreatedAt          time.Time                  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time                  `gorm:"autoUpdateTime" json:"updated_at"`

	// Derived on every read, never persisted.
	CheckedInCount int  `gorm:"-" json:"checked_in_count"`
	RemainPlaces   *int `gorm:"-" json:"remain_places"`
	IsRegistrable  bool `gorm:"-" json:"is_registrable"`
}

func (Workshop) TableName() string {
	return "workshops"
}

func (w *Workshop) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Derive fills the computed fields from a fresh checkin count.
func (w *Workshop) Derive(checkedIn int, now time.Time) {
	w.CheckedInCount = checkedIn
	if w.Capacity != nil {
		remain := *w.Capacity - checkedIn
		w.RemainPlaces = &remain
	} else {
		w.RemainPlaces = nil
	}
	w.IsRegistrable = w.registrableAt(now)
}

// HasPlaces reports whether at least one more checkin fits. Unlimited capacity always fits.
func (w *Workshop) HasPlaces() bool {
	return w.RemainPlaces == nil || *w.RemainPlaces > 0
}

func (w *Workshop) registrableAt(now time.Time) bool {
	if w.IsDraft || w.DTEnd == nil {
		return false
	}
	if now.After(*w.DTEnd) {
		return false
	}
	if w.CheckInOpens != nil && now.Before(*w.CheckInOpens) {
		return false
	}
	return true
}

// ============================
// 🟡 Create Workshop Request
type CreateRequest struct {
	EnglishName        string      `json:"english_name" validate:"required,max=255"`
	RussianName        string      `json:"russian_name" validate:"max=255"`
	EnglishDescription string      `json:"english_description"`
	RussianDescription string      `json:"russian_description"`
	Language           *Language   `json:"language" validate:"omitempty,oneof=english russian both"`
	Hosts              []Host      `json:"hosts" validate:"omitempty,dive"`
	Badges             []Badge     `json:"badges" validate:"omitempty,dive"`
	Links              []Link      `json:"links" validate:"omitempty,dive"`
	DTStart            *time.Time  `json:"dtstart"`
	DTEnd              *time.Time  `json:"dtend"`
	CheckInOpens       *time.Time  `json:"check_in_opens"`
	Place              string      `json:"place" validate:"max=255"`
	Capacity           *int        `json:"capacity" validate:"omitempty,min=0"`
	CheckInType        CheckInType `json:"check_in_type" validate:"omitempty,oneof=no_check_in on_innohassle by_link"`
	CheckInLink        *string     `json:"check_in_link" validate:"omitempty,max=1024"`
	IsActive           *bool       `json:"is_active"`
	IsDraft            bool        `json:"is_draft"`
}

// ============================
// 🟠 Update Workshop Request
// Absent fields are left untouched.
type UpdateRequest struct {
	EnglishName        *string      `json:"english_name"`
	RussianName        *string      `json:"russian_name"`
	EnglishDescription *string      `json:"english_description"`
	RussianDescription *string      `json:"russian_description"`
	Language           *Language    `json:"language"`
	Hosts              *[]Host      `json:"hosts"`
	Badges             *[]Badge     `json:"badges"`
	Links              *[]Link      `json:"links"`
	DTStart            *time.Time   `json:"dtstart"`
	DTEnd              *time.Time   `json:"dtend"`
	CheckInOpens       *time.Time   `json:"check_in_opens"`
	Place              *string      `json:"place"`
	Capacity           *int         `json:"capacity"`
	CheckInType        *CheckInType `json:"check_in_type"`
	CheckInLink        *string      `json:"check_in_link"`
	IsDraft            *bool        `json:"is_draft"`
}

// ListFilter narrows GetAll.
type ListFilter struct {
	Limit       int
	VisibleOnly bool
}
