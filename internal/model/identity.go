package model

// Role distinguishes the Dungeon Master from players
type Role string

const (
	RoleDM     Role = "dm"
	RolePlayer Role = "player"
)

// Identity is who the current user is and which room they are in
type Identity struct {
	RoomCode RoomCode
	Username PlayerName
	Role     Role
}

// IsDM reports whether the identity belongs to the Dungeon Master
func (i Identity) IsDM() bool {
	return i.Role == RoleDM
}
