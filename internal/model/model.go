package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Company is embedded in a Contact and stored as a single document.
type Company struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
}

// NoteAuthor is a snapshot of the creating user taken when the note is
// written. It is not updated if the user is later renamed.
type NoteAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Note struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	CreatedBy NoteAuthor `json:"createdBy"`
}

const (
	StatusNew           = "new"
	StatusCalled        = "called"
	StatusFollowUp      = "follow-up"
	StatusNotInterested = "not-interested"
	StatusConverted     = "converted"
)

func ValidContactStatus(status string) bool {
	switch status {
	case StatusNew, StatusCalled, StatusFollowUp, StatusNotInterested, StatusConverted:
		return true
	default:
		return false
	}
}

// Contact belongs to exactly one user. UserID is set at creation and
// never changes afterwards.
type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   Company   `json:"company"`
	Status    string    `json:"status"`
	Notes     []Note    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	CallCompleted = "completed"
	CallMissed    = "missed"
	CallScheduled = "scheduled"
)

func ValidCallStatus(status string) bool {
	switch status {
	case CallCompleted, CallMissed, CallScheduled:
		return true
	default:
		return false
	}
}

type CallLog struct {
	ID        string    `json:"id"`
	ContactID string    `json:"contactId"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
	Duration  *int      `json:"duration,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SystemSettings is the singleton settings document of type "system".
type SystemSettings struct {
	MaintenanceMode      bool      `json:"maintenanceMode"`
	RegistrationDisabled bool      `json:"registrationDisabled"`
	SystemNotice         string    `json:"systemNotice"`
	UpdatedAt            time.Time `json:"updatedAt,omitempty"`
	UpdatedBy            string    `json:"updatedBy,omitempty"`
}
