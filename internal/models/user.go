package models

import "time"

type ContactMethod string

const (
	ContactMethodPhone ContactMethod = "phone"
	ContactMethodEmail ContactMethod = "email"
	ContactMethodSMS   ContactMethod = "sms"
)

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

type User struct {
	ID                     string
	Name                   string
	Email                  string
	Phone                  string
	PasswordHash           []byte
	Description            *string
	ImageURL               *string
	Age                    *int
	TechUsage              *string
	AccessibilityNeeds     *string
	PreferredContactMethod ContactMethod
	ExperienceLevel        ExperienceLevel
	EmailList              bool
	SMSConsent             bool
	Notification           bool
	DarkMode               bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type TechUsage struct {
	ID             string
	UserID         string
	DeviceType     string
	DeviceName     string
	SkillLevel     string
	UsageFrequency string
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
