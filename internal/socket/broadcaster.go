package socket

import "time"

// Broadcaster turns data changes into change-feed events.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// Publish notifies the clients following entity that one of its rows changed.
func (b *Broadcaster) Publish(entity, action, id string, data interface{}) {
	b.hub.SendToRoom(EntityRoom(entity), Message{
		Type:      ChangeType(entity, action),
		EntityID:  id,
		Payload:   data,
		Timestamp: time.Now(),
	})
}

// NotifyMember sends a personal notice to a team member connected with a
// login code, e.g. when they are added to a chantier.
func (b *Broadcaster) NotifyMember(teamMemberID string, assigned bool, chantierID string) {
	t := MessageUnassigned
	if assigned {
		t = MessageAssigned
	}
	b.hub.SendToRoom(SubjectRoom(teamMemberID), Message{
		Type:      t,
		EntityID:  chantierID,
		Timestamp: time.Now(),
	})
}
