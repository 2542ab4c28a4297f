package models

// Role distinguishes the room creator from everyone else
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Player represents a player in a room. Players are created on join and
// survive for the room's whole lifetime; a dropped connection only flips
// Connected, it never removes the entry.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	Points    int    `json:"points"`
	Connected bool   `json:"connected"`
}
