package models

import "time"

// User represents a learner known to the course service
type User struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	IsMember            bool       `json:"isMember"`
	Streak              int        `json:"streak"`
	LastStudyDate       *time.Time `json:"lastStudyDate,omitempty"`
	DailyCoursesCreated int        `json:"dailyCoursesCreated"`
	LastCourseDate      *time.Time `json:"lastCourseDate,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// NewUser is the user part of a registration request
type NewUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateUserRequest represents a request to provision a user
type CreateUserRequest struct {
	User NewUser `json:"user"`
}
