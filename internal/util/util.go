// Package util provides small shared helpers.
package util

import (
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// GenUUID generates a new UUID string.
func GenUUID() string {
	return uuid.New().String()
}

// GenShortID generates a short, URL-safe identifier. Used for request
// tracing where a full UUID is unnecessarily long.
func GenShortID() string {
	return shortuuid.New()
}
