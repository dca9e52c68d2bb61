package domain

import "strings"

// Platform a storefront rentals can be placed on, and where it is served
type Platform struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Discount    string   `json:"discount"`
	Countries   []string `json:"countries"`
}

const DefaultPlatform = "amazon"

var platforms = []Platform{
	{
		ID:          "amazon",
		Label:       "Amazon & Prime Video",
		Description: "70-80% of original rental price",
		Discount:    "70-80%",
		Countries: []string{
			"United States", "United Kingdom", "Germany", "Japan", "Italy",
			"Spain", "Sweden", "Belgium", "Poland", "Australia", "Mexico",
			"Portugal", "Finland", "New Zealand", "Brazil", "Canada", "Denmark",
		},
	},
	{
		ID:          "google",
		Label:       "Google Play",
		Description: "Full payment, discount varies by movie",
		Discount:    "Conditional",
		Countries:   []string{"India", "United States"},
	},
	{
		ID:          "itunes",
		Label:       "iTunes / Apple TV",
		Description: "Full payment, discount varies by movie",
		Discount:    "Conditional",
		Countries:   []string{"Germany", "United Kingdom", "Poland"},
	},
}

var flags = map[string]string{
	"United States":  "🇺🇸",
	"United Kingdom": "🇬🇧",
	"Germany":        "🇩🇪",
	"Japan":          "🇯🇵",
	"Italy":          "🇮🇹",
	"Spain":          "🇪🇸",
	"Sweden":         "🇸🇪",
	"Belgium":        "🇧🇪",
	"Poland":         "🇵🇱",
	"Australia":      "🇦🇺",
	"Mexico":         "🇲🇽",
	"Portugal":       "🇵🇹",
	"Finland":        "🇫🇮",
	"New Zealand":    "🇳🇿",
	"Brazil":         "🇧🇷",
	"Canada":         "🇨🇦",
	"Denmark":        "🇩🇰",
	"India":          "🇮🇳",
}

// clone copies p so callers cannot reach the catalog's country lists
func (p Platform) clone() Platform {
	p.Countries = append([]string(nil), p.Countries...)
	return p
}

// Platforms every platform, in tab order
func Platforms() []Platform {
	out := make([]Platform, len(platforms))
	for i, p := range platforms {
		out[i] = p.clone()
	}
	return out
}

// PlatformByID looks up a platform tab by id, case-insensitively
func PlatformByID(id string) (Platform, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range platforms {
		if p.ID == id {
			return p.clone(), true
		}
	}
	return Platform{}, false
}

// Flag the flag emoji for a country, or a globe
func Flag(country string) string {
	if f, ok := flags[country]; ok {
		return f
	}
	return "🌐"
}

// PlatformsIn lists the platforms serving country (case-insensitive match)
func PlatformsIn(country string) []Platform {
	var out []Platform
	for _, p := range platforms {
		for _, c := range p.Countries {
			if strings.EqualFold(c, strings.TrimSpace(country)) {
				out = append(out, p.clone())
				break
			}
		}
	}
	return out
}

// SearchCountries filters the countries of p by a case-insensitive substring
func SearchCountries(p Platform, q string) []string {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return append([]string(nil), p.Countries...)
	}
	var out []string
	for _, c := range p.Countries {
		if strings.Contains(strings.ToLower(c), q) {
			out = append(out, c)
		}
	}
	return out
}
