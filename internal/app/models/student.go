package models

import (
	"time"

	"github.com/google/uuid"
)

// Student defines the student model based on the 'students' table
type Student struct {
	ID           uuid.UUID `json:"-" db:"id"`                                            // Internal identifier, never exposed
	Username     string    `json:"username" db:"username" example:"alice"`               // Unique, case-sensitive login name
	PasswordHash string    `json:"-" db:"password"`                                      // bcrypt digest (excluded from JSON)
	Name         string    `json:"name" db:"name" example:"Alice A"`                     // Display name
	MatricNumber *string   `json:"matric_number" db:"matric_number" example:"MAT00001"` // Nil until assigned
	CreatedAt    time.Time `json:"-" db:"created_at"`
}

// IsMatriculated reports whether a matriculation number has been assigned
func (s *Student) IsMatriculated() bool {
	return s.MatricNumber != nil
}

// Profile returns the public view of the student
func (s *Student) Profile() StudentProfile {
	profile := StudentProfile{
		Username: s.Username,
		Name:     s.Name,
	}
	if s.MatricNumber != nil {
		matric := *s.MatricNumber
		profile.MatricNumber = &matric
	}
	return profile
}

// StudentProfile is the public projection of a Student: no password hash, no internal id
type StudentProfile struct {
	Username     string  `json:"username" example:"alice"`
	Name         string  `json:"name" example:"Alice A"`
	MatricNumber *string `json:"matric_number" example:"MAT00001"`
}

// Profiles projects a slice of students to their public profiles
func Profiles(students []Student) []StudentProfile {
	profiles := make([]StudentProfile, 0, len(students))
	for i := range students {
		profiles = append(profiles, students[i].Profile())
	}
	return profiles
}
