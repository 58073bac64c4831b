package dto

import "github.com/civiclens/civiclens-api/internal/models"

// UserView is the public projection of a user embedded in other payloads.
type UserView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

// NewUserView projects a user entity.
func NewUserView(u *models.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
	}
}
