package auth

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Credential is a single username/password pair accepted by the login form.
type Credential struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type CredentialsFile struct {
	Users []Credential `yaml:"users"`
}

// Credentials is the table of accepted pairs. Passwords are compared as
// plain strings.
type Credentials struct {
	pairs []Credential
}

func DefaultCredentials() *Credentials {
	return &Credentials{pairs: []Credential{
		{Username: "matt", Password: "smith"},
		{Username: "admin", Password: "admin"},
	}}
}

// LoadCredentials reads a YAML credential table. An empty path yields the
// compiled-in pairs.
func LoadCredentials(path string) (*Credentials, error) {
	if path == "" {
		return DefaultCredentials(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var cf CredentialsFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return NewCredentials(cf.Users)
}

func NewCredentials(list []Credential) (*Credentials, error) {
	if len(list) == 0 {
		return nil, errors.New("at least one credential required")
	}
	pairs := make([]Credential, 0, len(list))
	for _, c := range list {
		if c.Username == "" || c.Password == "" {
			return nil, errors.New("username and password required")
		}
		pairs = append(pairs, c)
	}
	return &Credentials{pairs: pairs}, nil
}

// Check reports whether username and password exactly match one configured
// pair. Comparison is case-sensitive; empty values never match.
func (c *Credentials) Check(username, password string) bool {
	if username == "" || password == "" {
		return false
	}
	for _, p := range c.pairs {
		if p.Username == username && p.Password == password {
			return true
		}
	}
	return false
}

func (c *Credentials) Usernames() []string {
	names := make([]string, 0, len(c.pairs))
	for _, p := range c.pairs {
		names = append(names, p.Username)
	}
	return names
}
