package models

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleOrganizer Role = "organizer"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleStudent, RoleOrganizer:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Profile is owned by the identity provider; this service only reads it.
type Profile struct {
	ID          string
	FullName    string
	Email       string
	Mobile      string
	Role        Role
	ClassBranch string
	ClubName    string
	ClubRole    string
}

func (p *Profile) IsOrganizer() bool { return p != nil && p.Role == RoleOrganizer }
