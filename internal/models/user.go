package models

import "parkingconsole/internal/validation"

// User represents a console-managed account as reported by the backend
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	// Password is only ever sent, never read back from the backend
	Password string `json:"password,omitempty"`
}

// FullName joins first and last name
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ShortID returns the id prefix shown in list tables
func (u User) ShortID() string {
	return shortID(u.ID)
}

// CreateUserRequest is the payload for creating a user
type CreateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Validate checks the create form rules
func (r CreateUserRequest) Validate() error {
	if err := validation.ValidateName("firstName", r.FirstName); err != nil {
		return err
	}
	if err := validation.ValidateName("lastName", r.LastName); err != nil {
		return err
	}
	if err := validation.ValidateEmail(r.Email); err != nil {
		return err
	}
	return validation.ValidatePassword(r.Password)
}

// UpdateUserRequest is the payload for editing a user. Password is never sent on edit.
type UpdateUserRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Validate checks the edit form rules
func (r UpdateUserRequest) Validate() error {
	if err := validation.ValidateName("firstName", r.FirstName); err != nil {
		return err
	}
	if err := validation.ValidateName("lastName", r.LastName); err != nil {
		return err
	}
	return validation.ValidateEmail(r.Email)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
