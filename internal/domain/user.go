package domain

import "time"

// SystemArchivalUsername is the reserved operator identity used by the
// automatic archival sweep. It is provisioned by migration and must never be
// assigned to a human.
const SystemArchivalUsername = "system_archival"

// User is an operator who logs and manages incidents. Authorization is a
// single admin bit: admins additionally manage vocabulary, trigger sweeps and
// restore archived incidents.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
