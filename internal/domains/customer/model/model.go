package model

import "karaoke/shared/model"

const (
	TableName  = "customers"
	EntityName = "customer"

	FieldID          = "id"
	FieldUsername    = "username"
	FieldPassword    = "password"
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPhoneNumber = "phone_number"
	FieldRole        = "role"
)

type Customer struct {
	ID          int64   `db:"id"           insert:"-"`
	Username    string  `db:"username"`
	Password    string  `db:"password"`
	Name        *string `db:"name"`
	Email       string  `db:"email"`
	PhoneNumber *string `db:"phone_number"`
	Role        string  `db:"role"`
	model.Metadata
}
