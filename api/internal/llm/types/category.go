package types

import "strings"

// Category selects the instruction template sent with a scan.
type Category string

const (
	CategoryAppSecurity  Category = "app-security"
	CategoryScamDetector Category = "scam-detector"
	CategoryDeepfake     Category = "deepfake"
	CategoryNetwork      Category = "network"
	CategoryDarkWeb      Category = "dark-web"

	// CategoryUnknown is any value outside the set above. It is scanned with
	// the app-security template.
	CategoryUnknown Category = ""
)

// Categories lists the known categories in display order.
var Categories = []Category{
	CategoryAppSecurity,
	CategoryScamDetector,
	CategoryDeepfake,
	CategoryNetwork,
	CategoryDarkWeb,
}

func ParseCategory(s string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryAppSecurity, CategoryScamDetector, CategoryDeepfake, CategoryNetwork, CategoryDarkWeb:
		return c
	default:
		return CategoryUnknown
	}
}

func (c Category) Known() bool { return c != CategoryUnknown }

func (c Category) String() string {
	if c == CategoryUnknown {
		return "unknown"
	}
	return string(c)
}
