package core

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var ErrAuthenticationFailed = errors.New("authentication failed")

// Admin is a portal administrator, configured through ADMIN_n="email,bcrypt-hash".
type Admin struct {
	Email        string
	PasswordHash []byte
}

func ParseAdmin(s string) (Admin, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Admin{}, errors.New(`expected "email,password-hash"`)
	}
	email := CleanString(parts[0], true /* lower */)
	hash := strings.TrimSpace(parts[1])
	if email == "" || hash == "" {
		return Admin{}, errors.New("email and password hash are required")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return Admin{}, errors.Wrap(err, "invalid password hash")
	}
	return Admin{Email: email, PasswordHash: []byte(hash)}, nil
}

func (a Admin) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// HashPassword returns the bcrypt hash to put in an ADMIN_n variable.
func HashPassword(pwd string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
}

type Admins []Admin

func (as Admins) Get(email string) (Admin, bool) {
	email = CleanString(email, true /* lower */)
	for _, a := range as {
		if a.Email == email {
			return a, true
		}
	}
	return Admin{}, false
}

func (as Admins) Authenticate(email, pwd string) (Admin, error) {
	admin, ok := as.Get(email)
	if !ok {
		return Admin{}, ErrAuthenticationFailed
	}
	if err := admin.CheckPassword(pwd); err != nil {
		return Admin{}, ErrAuthenticationFailed
	}
	return admin, nil
}
