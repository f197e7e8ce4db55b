package client

import "time"

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
	ClientStatusPending  ClientStatus = "pending"
)

func (s ClientStatus) Valid() bool {
	switch s {
	case ClientStatusActive, ClientStatusInactive, ClientStatusPending:
		return true
	}
	return false
}

// Client is a care recipient. Clients are never hard-deleted; retention
// rules only allow status changes.
type Client struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	Status    ClientStatus
	CreatedAt time.Time
}
