package domain

import "time"

// Variant is the severity of a user-visible notification
type Variant string

const (
	VariantError   Variant = "error"
	VariantWarning Variant = "warning"
	VariantSuccess Variant = "success"
	VariantInfo    Variant = "info"
)

// Notification is a toast message produced for the user
type Notification struct {
	Variant   Variant   `json:"variant"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
