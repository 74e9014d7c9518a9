package types

import "strings"

// Status is the verdict variant of a ScanResult.
type Status string

const (
	StatusSafe    Status = "safe"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
	StatusInfo    Status = "info"

	// StatusUnknown covers model output outside the four variants.
	StatusUnknown Status = ""
)

func ParseStatus(s string) Status {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusSafe, StatusWarning, StatusDanger, StatusInfo:
		return st
	default:
		return StatusUnknown
	}
}
