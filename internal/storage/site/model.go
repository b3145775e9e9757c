package site

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Status is the lifecycle state of a construction site.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusOnHold    Status = "ON_HOLD"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}

// Site represents a site record.
type Site struct {
	ID        uuid.UUID
	Name      string
	Location  string
	ManagerID uuid.UUID
	Status    Status
	CreatedAt time.Time
}

// SiteCreate is the input for creating a new site.
type SiteCreate struct {
	Name      string
	Location  string
	ManagerID uuid.UUID
	Status    Status
}

// SiteFilter specifies filters for listing sites.
type SiteFilter struct {
	Status *Status
}

// Columns lists the selected and returned columns, in row order.
var Columns = []any{"id", "name", "location", "manager_id", "status", "created_at"}

type row struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Location  string    `db:"location"`
	ManagerID uuid.UUID `db:"manager_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func rowToSite(r row) *Site {
	return &Site{
		ID:        r.ID,
		Name:      r.Name,
		Location:  r.Location,
		ManagerID: r.ManagerID,
		Status:    Status(r.Status),
		CreatedAt: r.CreatedAt,
	}
}
