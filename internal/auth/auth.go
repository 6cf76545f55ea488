// Package auth provides HTTP basic authentication for the dashboard
// API. Credential verification is a pluggable CredentialChecker so the
// serving layer stays independent of where passwords live; the built-in
// checkers read bcrypt hashes from the static config list and from an
// htpasswd-style file.
package auth

import (
	"bufio"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/nvrdash/nvrdash/internal/config"
)

// CredentialChecker validates a username/password pair.
type CredentialChecker interface {
	Check(username, password string) bool
}

// StaticChecker checks against the configured user list.
type StaticChecker struct {
	users map[string]string // username -> bcrypt hash
}

// NewStaticChecker builds a checker from configured users.
func NewStaticChecker(users []config.AuthUser) *StaticChecker {
	m := make(map[string]string, len(users))
	for _, u := range users {
		m[u.Username] = u.PasswordHash
	}
	return &StaticChecker{users: m}
}

// Check implements CredentialChecker.
func (c *StaticChecker) Check(username, password string) bool {
	hash, ok := c.users[username]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HtpasswdChecker checks against an htpasswd file with bcrypt entries.
// The file is re-read on every check; it is small and operators edit it
// in place.
type HtpasswdChecker struct {
	path string
}

// NewHtpasswdChecker builds a checker for the given file.
func NewHtpasswdChecker(path string) *HtpasswdChecker {
	return &HtpasswdChecker{path: path}
}

// Check implements CredentialChecker.
func (c *HtpasswdChecker) Check(username, password string) bool {
	f, err := os.Open(c.path)
	if err != nil {
		return false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, hash, ok := strings.Cut(line, ":")
		if !ok || name != username {
			continue
		}
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	return false
}

// MultiChecker tries each checker in order.
type MultiChecker []CredentialChecker

// Check implements CredentialChecker.
func (m MultiChecker) Check(username, password string) bool {
	for _, c := range m {
		if c.Check(username, password) {
			return true
		}
	}
	return false
}

// NewChecker assembles the configured credential checkers.
func NewChecker(cfg config.AuthConfig) CredentialChecker {
	var checkers MultiChecker
	if len(cfg.Users) > 0 {
		checkers = append(checkers, NewStaticChecker(cfg.Users))
	}
	if cfg.HtpasswdFile != "" {
		checkers = append(checkers, NewHtpasswdChecker(cfg.HtpasswdFile))
	}
	return checkers
}

// Middleware returns the echo basic-auth middleware guarding API routes.
// When auth is disabled it passes every request through.
func Middleware(cfg config.AuthConfig, checker CredentialChecker) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: cfg.Realm,
		Validator: func(username, password string, c echo.Context) (bool, error) {
			return checker.Check(username, password), nil
		},
	})
}
