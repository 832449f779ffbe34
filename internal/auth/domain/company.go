package domain

import "time"

// Company is a tenant. Its name is unique across the system.
type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
