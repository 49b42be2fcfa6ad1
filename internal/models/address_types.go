package models

import "time"

// Address is the model for the 'addresses' table
type Address struct {
	ID        int64  `json:"id" db:"id"`
	UserID    int64  `json:"userId" db:"user_id"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Email     string `json:"email" db:"email"`
	Street    string `json:"street" db:"street"`
	City      string `json:"city" db:"city"`
	State     string `json:"state" db:"state"`
	Zipcode   string `json:"zipcode" db:"zipcode"`
	Country   string `json:"country" db:"country"`
	Phone     string `json:"phone" db:"phone"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
