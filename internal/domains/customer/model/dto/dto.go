package dto

import (
	"karaoke/internal/domains/customer/model"
	"karaoke/shared"
	"karaoke/shared/constant"
	gDto "karaoke/shared/dto"
	gModel "karaoke/shared/model"
	"karaoke/shared/timezone"
)

type CreateCustomerRequest struct {
	Username    string  `json:"username"               validate:"required,alphanum,min=3,max=50"`
	Password    string  `json:"password"               validate:"required,min=6,max=72"`
	Name        *string `json:"name,omitempty"         validate:"omitempty,max=100"`
	Email       string  `json:"email"                  validate:"required,email"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,max=20"`
}

func (r *CreateCustomerRequest) ToModel(hashedPassword string) model.Customer {
	now := timezone.Now()

	return model.Customer{
		Username:    r.Username,
		Password:    hashedPassword,
		Name:        r.Name,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Role:        constant.RoleUser,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

type CustomerResponse struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	Name        *string `json:"name"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Role        string  `json:"role"`
	gDto.Metadata
}

func (r *CustomerResponse) FromModel(m model.Customer) {
	r.ID = m.ID
	r.Username = m.Username
	r.Name = m.Name
	r.Email = m.Email
	r.PhoneNumber = m.PhoneNumber
	r.Role = m.Role
	r.Metadata.FromModel(m.Metadata)
}

// UpdateCustomerRequest carries the profile fields a customer may change.
// Password and role have their own operations.
type UpdateCustomerRequest struct {
	Username    string `json:"username,omitempty"     db:"username"     validate:"omitempty,alphanum,min=3,max=50"`
	Name        string `json:"name,omitempty"         db:"name"         validate:"omitempty,max=100"`
	Email       string `json:"email,omitempty"        db:"email"        validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number,omitempty" db:"phone_number" validate:"omitempty,max=20"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6,max=72"`
}

type UpdatePassword struct {
	Password string `db:"password"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" db:"role" validate:"required,oneof=admin user"`
}

type GetCustomersResponse struct {
	Customers []CustomerResponse `json:"customers"`
	Meta      gDto.Meta          `json:"meta"`
}

func (r *GetCustomersResponse) FromModels(models []model.Customer, total, page, limit int) {
	r.Meta = gDto.Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: shared.CalculateTotalPage(total, limit),
	}

	r.Customers = make([]CustomerResponse, len(models))
	for i, m := range models {
		r.Customers[i].FromModel(m)
	}
}
