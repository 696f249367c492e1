package model

import "time"

// Setting is a key-value configuration row editable by Admins.
type Setting struct {
	Key       string    `json:"key"`   // settings.key (primary key)
	Value     string    `json:"value"` // settings.value
	UpdatedAt time.Time `json:"updated_at"`
}
