package models

import "time"

// Role represents a user's role in the platform
type Role string

// UserRole constants
const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the role has administrative rights
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// CanAuthor reports whether the role may create courses and quizzes
func (r Role) CanAuthor() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// Requester identifies the authenticated caller of an operation
type Requester struct {
	UserID int
	Role   Role
}

// CanManage reports whether the requester may manage a resource owned by ownerID.
// Admins may manage everything, instructors only their own courses.
func (r Requester) CanManage(ownerID int) bool {
	return r.Role.IsAdmin() || (r.Role.CanAuthor() && r.UserID == ownerID)
}

// User represents a user in the system
type User struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"` // Never serialize password hash
	Role            Role      `json:"role"`
	AvatarURL       string    `json:"avatarUrl"`
	Bio             string    `json:"bio"`
	IsActive        bool      `json:"isActive"`
	EnrolledCourses []int     `json:"enrolledCourses"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=student teacher"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents a profile update (partial update)
type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// AuthResponse is returned after a successful register or login
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}
