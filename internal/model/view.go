package model

import "time"

// View is a named, saved FilterSpec that restores dashboard state.
type View struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Spec      FilterSpec `json:"spec"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
