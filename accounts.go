package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt refuses longer passwords
const maxPasswordBytes = 72

// dummyHash is compared against when the email is unknown, so a failed
// login costs one bcrypt comparison either way.
var dummyHash = mustHashPassword("unused-password-for-timing")

func mustHashPassword(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) register(ctx context.Context, name, email, password string) (*Account, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, invalid("Name, email and password are required")
	}
	if len(password) > maxPasswordBytes {
		return nil, invalid("Password cannot be more than 72 bytes")
	}

	existing, err := s.accountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	account := &Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, email, password_hash)
		VALUES (?, ?, ?, ?)`, account.ID, account.Name, account.Email, account.PasswordHash)
	if err != nil {
		// a concurrent registration won the race past the lookup above
		if strings.Contains(err.Error(), "UNIQUE constraint failed: accounts.email") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("inserting account: %w", err)
	}

	return account, nil
}

func (s *Store) verify(ctx context.Context, email, password string) (*Account, error) {
	account, err := s.accountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	if account == nil {
		checkPassword(dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if !checkPassword(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

func (s *Store) accountByEmail(ctx context.Context, email string) (*Account, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash
		FROM accounts
		WHERE email = ?`, email)

	var a Account
	err = row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning account: %w", err)
	}
	return &a, nil
}

// accountByID loads an account without its password hash.
func (s *Store) accountByID(ctx context.Context, id string) (*Account, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT id, name, email FROM accounts WHERE id = ?`, id)

	var a Account
	err = row.Scan(&a.ID, &a.Name, &a.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning account: %w", err)
	}
	return &a, nil
}
