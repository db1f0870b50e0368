package mocks

import (
	"errors"

	"github.com/phrazzld/tasklist-api/internal/service/auth"
)

// ErrPasswordMismatch is returned by MockPasswordVerifier on failure.
var ErrPasswordMismatch = errors.New("password mismatch")

// MockPasswordVerifier implements auth.PasswordVerifier for testing
type MockPasswordVerifier struct {
	// ShouldSucceed determines whether the password comparison should succeed
	ShouldSucceed bool

	// CompareFn allows for custom comparison logic in tests
	CompareFn func(hashedPassword, password string) error

	// CompareCalledWith stores the arguments passed to Compare for verification
	CompareCalledWith struct {
		HashedPassword string
		Password       string
	}

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

// Compare implements the auth.PasswordVerifier interface
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCalledWith.HashedPassword = hashedPassword
	m.CompareCalledWith.Password = password
	m.CompareCallCount++

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.ShouldSucceed {
		return nil
	}
	return ErrPasswordMismatch
}

// PlainHasher is a reversible PasswordHasher and PasswordVerifier pair for
// tests that do not want to pay for bcrypt. The "hash" is a prefixed copy.
type PlainHasher struct {
	Err error
}

var (
	_ auth.PasswordHasher   = PlainHasher{}
	_ auth.PasswordVerifier = PlainHasher{}
)

const plainPrefix = "plain:"

// Hash implements auth.PasswordHasher.
func (h PlainHasher) Hash(password string) (string, error) {
	if h.Err != nil {
		return "", h.Err
	}
	return plainPrefix + password, nil
}

// Compare implements auth.PasswordVerifier.
func (h PlainHasher) Compare(hashedPassword, password string) error {
	if hashedPassword != plainPrefix+password {
		return ErrPasswordMismatch
	}
	return nil
}
