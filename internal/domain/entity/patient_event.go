package entity

import (
	"time"
)

const EventPatientCreated = "patient.created"

// PatientCreatedEvent is the immutable snapshot published after a patient
// has been persisted. Consumers own retry and durability.
type PatientCreatedEvent struct {
	EventType string    `json:"event_type"`
	PatientID string    `json:"patient_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPatientCreatedEvent(p *Patient) PatientCreatedEvent {
	return PatientCreatedEvent{
		EventType: EventPatientCreated,
		PatientID: p.ID,
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
}
