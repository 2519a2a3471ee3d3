package util

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatBRL renders an amount as Brazilian currency.
// Example: 1250.5 -> "R$ 1.250,50".
func FormatBRL(amount float64) string {
	return fmt.Sprintf("R$ %s", humanize.FormatFloat("#.###,##", amount))
}

// TruncateContent shortens display strings that exceed maxLength.
func TruncateContent(content string, maxLength int) string {
	if len(content) <= maxLength {
		return content
	}
	return content[:maxLength] + "..."
}
