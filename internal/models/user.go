package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole represents the available account roles.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// User represents a marketplace member stored in the users table.
type User struct {
	ID            string         `db:"id" json:"id"`
	Email         string         `db:"email" json:"email"`
	PasswordHash  string         `db:"password_hash" json:"-"`
	FullName      string         `db:"full_name" json:"full_name"`
	Role          UserRole       `db:"role" json:"role"`
	Active        bool           `db:"active" json:"active"`
	Public        bool           `db:"public" json:"public"`
	Bio           string         `db:"bio" json:"bio,omitempty"`
	Location      string         `db:"location" json:"location,omitempty"`
	Availability  string         `db:"availability" json:"availability,omitempty"`
	SkillsOffered pq.StringArray `db:"skills_offered" json:"skills_offered"`
	SkillsWanted  pq.StringArray `db:"skills_wanted" json:"skills_wanted"`

	TotalSwaps      int     `db:"total_swaps" json:"total_swaps"`
	SuccessfulSwaps int     `db:"successful_swaps" json:"successful_swaps"`
	AverageRating   float64 `db:"average_rating" json:"average_rating"`
	TotalReviews    int     `db:"total_reviews" json:"total_reviews"`

	LastLogin *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role       *UserRole
	Active     *bool
	PublicOnly bool
	// Skill matches a case-insensitive substring of any offered or wanted
	// skill.
	Skill     string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NewPagination normalises page inputs and wraps the total count.
func NewPagination(page, pageSize, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return &Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
