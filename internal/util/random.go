package util

import (
	"fmt"

	"github.com/lithammer/shortuuid/v4"
)

// NewNotificationID generates a locally unique id for synthetic notifications.
func NewNotificationID() string {
	return fmt.Sprintf("local-%s", shortuuid.New()[:8])
}
