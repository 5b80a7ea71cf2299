package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/models"

	"github.com/jackc/pgx/v5"
)

// Credentials carries what the login flow needs: the stored password hash,
// the role for the token, and the customer profile for the response.
type Credentials struct {
	UserID   int64
	Password string
	Role     string
	Customer models.Customer
}

// CreateUserWithCustomer inserts the account row and its customer profile
// as one unit; registration never leaves a user without a customer.
func (db *DB) CreateUserWithCustomer(ctx context.Context, email, hashedPassword, lastName, firstName string) (int64, int64, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, password) VALUES ($1, $2) RETURNING id
	`, email, hashedPassword).Scan(&userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to insert user: %w", err)
	}

	var customerID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO customer (last_name, first_name, user_id) VALUES ($1, $2, $3) RETURNING customer_id
	`, lastName, firstName, userID).Scan(&customerID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to insert customer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit: %w", err)
	}
	return userID, customerID, nil
}

// CredentialsByEmail looks up a user for login.
func (db *DB) CredentialsByEmail(ctx context.Context, email string) (Credentials, bool, error) {
	query := `
		SELECT u.id, u.email, u.password, u.role,
		       COALESCE(c.customer_id, 0), COALESCE(c.last_name, ''), COALESCE(c.first_name, ''),
		       c.title, c.address, c.city, c.zipcode, c.phone
		FROM users u
		LEFT JOIN customer c ON u.id = c.user_id
		WHERE u.email = $1 AND u.deleted_at IS NULL
	`
	var creds Credentials
	err := db.pool.QueryRow(ctx, query, email).Scan(
		&creds.UserID, &creds.Customer.Email, &creds.Password, &creds.Role,
		&creds.Customer.CustomerID, &creds.Customer.LastName, &creds.Customer.FirstName,
		&creds.Customer.Title, &creds.Customer.Address, &creds.Customer.City,
		&creds.Customer.Zipcode, &creds.Customer.Phone,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credentials{}, false, nil
	}
	if err != nil {
		return Credentials{}, false, err
	}
	creds.Customer.UserID = creds.UserID
	return creds, true, nil
}

// SaveAPIToken persists the issued token on the user row.
func (db *DB) SaveAPIToken(ctx context.Context, userID int64, token string) error {
	_, err := db.pool.Exec(ctx, `UPDATE users SET api_token = $1 WHERE id = $2`, token, userID)
	return err
}

// CustomerByUserID returns the customer profile for one account.
func (db *DB) CustomerByUserID(ctx context.Context, userID int64) (models.Customer, bool, error) {
	query := `
		SELECT u.id, u.email, COALESCE(c.customer_id, 0), c.title,
		       COALESCE(c.last_name, ''), COALESCE(c.first_name, ''),
		       c.address, c.city, c.zipcode, c.phone
		FROM users u
		LEFT JOIN customer c ON u.id = c.user_id
		WHERE u.id = $1
	`
	var customer models.Customer
	err := db.pool.QueryRow(ctx, query, userID).Scan(
		&customer.UserID, &customer.Email, &customer.CustomerID, &customer.Title,
		&customer.LastName, &customer.FirstName,
		&customer.Address, &customer.City, &customer.Zipcode, &customer.Phone,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Customer{}, false, nil
	}
	if err != nil {
		return models.Customer{}, false, err
	}
	return customer, true, nil
}

// UpdateCustomerProfile overwrites the profile fields of one customer.
func (db *DB) UpdateCustomerProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) (bool, error) {
	query := `
		UPDATE customer SET
			title = $1,
			last_name = $2,
			first_name = $3,
			address = $4,
			city = $5,
			zipcode = $6,
			phone = $7,
			image_path = COALESCE($8, image_path)
		WHERE user_id = $9
	`
	tag, err := db.pool.Exec(ctx, query, req.Title, req.LastName, req.FirstName,
		req.Address, req.City, req.Zipcode, req.Phone, req.ImagePath, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeactivateUser soft-deletes an account by stamping deleted_at.
func (db *DB) DeactivateUser(ctx context.Context, email string, when time.Time) (bool, error) {
	tag, err := db.pool.Exec(ctx, `UPDATE users SET deleted_at = $1 WHERE email = $2`, when, email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteUserAndCustomer removes the customer profile and the account row.
func (db *DB) DeleteUserAndCustomer(ctx context.Context, userID int64) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Customer first due to the FK on user_id.
	if _, err := tx.Exec(ctx, `DELETE FROM customer WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
