package universal

import "fmt"

// ValidationError marks an inbound payload that is malformed or missing its
// minimal structure. It never reaches the dispatcher; webhooks surface it as
// a client error (or a bare acknowledgement where the platform demands one).
type ValidationError struct {
	Platform Platform
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid payload: %s", e.Platform, e.Reason)
}

// ConversionError marks a failed translation between a native schema and the
// canonical representation: a required field could not be located inbound, or
// required routing data was absent on the return leg.
type ConversionError struct {
	Platform Platform
	Field    string
	Reason   string
}

func (e *ConversionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: cannot convert %s: %s", e.Platform, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: conversion failed: %s", e.Platform, e.Reason)
}
