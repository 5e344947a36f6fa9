package sitebook

import (
	"errors"
	"slices"
)

// ErrInvalidCredentials is returned by Login for an unknown user or a wrong
// password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Login checks the credentials against the document users and returns the
// matching user, without its password.
func (d *Document) Login(username, password string) (User, error) {
	i := slices.IndexFunc(d.Users, func(u User) bool {
		return u.Username == username && u.Password == password
	})
	if i < 0 {
		return User{}, ErrInvalidCredentials
	}
	u := d.Users[i]
	u.Password = ""
	return u, nil
}
