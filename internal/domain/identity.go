// Package domain contains the lobby entities shared by the registries.
// No transport or lifecycle logic here.
package domain

// ClientIdentity is what a connection announces about itself via join or id.
type ClientIdentity struct {
	PlayerID int `json:"playerId"`
	ClientID int `json:"clientId"`
}

// NewClientIdentity avoids raw literals in the orchestrator.
func NewClientIdentity(playerID, clientID int) *ClientIdentity {
	return &ClientIdentity{PlayerID: playerID, ClientID: clientID}
}

// IsSpoofedBy reports whether next claims a different client than the one
// already announced on the same connection.
func (c *ClientIdentity) IsSpoofedBy(next *ClientIdentity) bool {
	if c == nil || next == nil {
		return false
	}
	return c.ClientID != next.ClientID
}
