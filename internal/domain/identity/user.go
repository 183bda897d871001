package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/dentalshop/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the authorization level carried in access tokens
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	return r == RoleClient || r == RoleAdmin
}

const bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// User is a registered storefront account
type User struct {
	shared.BaseAggregateRoot
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	LastLoginAt  *time.Time
}

// NewUser creates a client account with a hashed password
func NewUser(username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		Role:              RoleClient,
	}
	u.AddDomainEvent(NewUserRegisteredEvent(u))
	return u, nil
}

// NewAdmin creates an administrator account
func NewAdmin(username, email, password string) (*User, error) {
	u, err := NewUser(username, email, password)
	if err != nil {
		return nil, err
	}
	u.Role = RoleAdmin
	u.ClearDomainEvents()
	u.AddDomainEvent(NewUserRegisteredEvent(u))
	return u, nil
}

// VerifyPassword compares a candidate password with the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.touch()
	return nil
}

// ChangeRole promotes or demotes the account
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.Invalidf("ROLE", "Role must be %s or %s", RoleClient, RoleAdmin)
	}
	u.Role = role
	u.touch()
	return nil
}

// IsAdmin reports whether the account may use the admin console
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RecordLogin stamps a successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

func (u *User) touch() {
	u.UpdatedAt = time.Now()
}

// Field limits follow the users table; passwords stop at bcrypt's 72 bytes
const (
	usernameMin, usernameMax = 3, 80
	passwordMin, passwordMax = 8, 72
	emailMax                 = 120
)

// checkLength reports an INVALID_<code> error when value is empty or its
// byte length falls outside [min, max]. A zero min only rejects empty.
func checkLength(code, label, value string, min, max int) error {
	switch n := len(value); {
	case n == 0:
		return shared.Invalidf(code, "%s cannot be empty", label)
	case n < min:
		return shared.Invalidf(code, "%s must be at least %d characters", label, min)
	case n > max:
		return shared.Invalidf(code, "%s cannot exceed %d characters", label, max)
	}
	return nil
}

func validateUsername(username string) error {
	if err := checkLength("USERNAME", "Username", username, usernameMin, usernameMax); err != nil {
		return err
	}
	if !usernameRegex.MatchString(username) {
		return shared.Invalidf("USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	return checkLength("PASSWORD", "Password", password, passwordMin, passwordMax)
}

func validateEmail(email string) error {
	if err := checkLength("EMAIL", "Email", email, 0, emailMax); err != nil {
		return err
	}
	if !emailRegex.MatchString(email) {
		return shared.Invalidf("EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}
