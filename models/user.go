package models

import "time"

type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type Customer struct {
	CustomerID int64   `json:"customer_id"`
	UserID     int64   `json:"user_id"`
	Title      *string `json:"title"`
	LastName   string  `json:"last_name"`
	FirstName  string  `json:"first_name"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	Zipcode    *string `json:"zipcode"`
	Phone      *string `json:"phone"`
	ImagePath  *string `json:"image_path,omitempty"`
	Email      string  `json:"email"`
}

// CustomerIdentity is the minimal billing identity the order engine needs.
type CustomerIdentity struct {
	CustomerID int64
	Email      string
}

type RegisterRequest struct {
	LastName  string `json:"last_name" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
}

type RegisterResponse struct {
	Success    bool  `json:"success"`
	UserID     int64 `json:"user_id"`
	CustomerID int64 `json:"customer_id"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Success  string   `json:"success"`
	Customer Customer `json:"user"`
	Token    string   `json:"token"`
}

type UpdateProfileRequest struct {
	Title     *string `json:"title"`
	LastName  string  `json:"last_name" binding:"required"`
	FirstName string  `json:"first_name" binding:"required"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	Zipcode   *string `json:"zipcode"`
	Phone     *string `json:"phone"`
	ImagePath *string `json:"image_path"`
}

type DeactivateRequest struct {
	Email string `json:"email" binding:"required,email"`
}
