package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum for clinic staff
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDentist      Role = "dentist"
	RoleReceptionist Role = "receptionist"
	RoleAssistant    Role = "assistant"
	RoleManager      Role = "manager"
)

// User represents a staff member of the clinic
type User struct {
	BaseModel
	Email      string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password   string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName  string     `gorm:"size:100" json:"firstName"`
	LastName   string     `gorm:"size:100" json:"lastName"`
	Role       Role       `gorm:"size:20;default:'receptionist'" json:"role"`
	Phone      string     `gorm:"size:15" json:"phone,omitempty"`
	Gender     string     `gorm:"size:10" json:"gender,omitempty"`
	BirthDate  *time.Time `json:"birthDate,omitempty"`
	Address    string     `gorm:"size:255" json:"address,omitempty"`
	IsArchived bool       `gorm:"default:false" json:"isArchived"`

	// Relations (not always preloaded)
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	DoctorProfile *Doctor        `gorm:"foreignKey:UserID" json:"doctorProfile,omitempty"`
}

// FullName returns the display name used across appointment responses.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Role          Role       `json:"role"`
	Phone         string     `json:"phone,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	BirthDate     *time.Time `json:"birthDate,omitempty"`
	Address       string     `json:"address,omitempty"`
	IsArchived    bool       `json:"isArchived"`
	DoctorProfile *Doctor    `json:"doctorProfile,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		Phone:         u.Phone,
		Gender:        u.Gender,
		BirthDate:     u.BirthDate,
		Address:       u.Address,
		IsArchived:    u.IsArchived,
		DoctorProfile: u.DoctorProfile,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
