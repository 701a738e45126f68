package view

// Icon is a bundled image asset plus the glyph used on a terminal.
type Icon struct {
	Asset string
	Glyph string
}

type IconResolver interface {
	Resolve(code string) Icon
}

// BundledIcons maps forecast icon codes to assets.
type BundledIcons map[string]Icon

const fallbackIcon = "clear-day"

var DefaultIcons = BundledIcons{
	"clear-day":           {Asset: "clear_day.png", Glyph: "☀"},
	"clear-night":         {Asset: "clear_night.png", Glyph: "☾"},
	"rain":                {Asset: "rain.png", Glyph: "☂"},
	"snow":                {Asset: "snow.png", Glyph: "❄"},
	"sleet":               {Asset: "sleet.png", Glyph: "❄"},
	"wind":                {Asset: "wind.png", Glyph: "≋"},
	"fog":                 {Asset: "fog.png", Glyph: "≡"},
	"cloudy":              {Asset: "cloudy.png", Glyph: "☁"},
	"partly-cloudy-day":   {Asset: "partly_cloudy.png", Glyph: "⛅"},
	"partly-cloudy-night": {Asset: "cloudy_night.png", Glyph: "☁"},
}

// Resolve returns the icon for code, or the clear-day icon for unknown codes.
func (b BundledIcons) Resolve(code string) Icon {
	if icon, ok := b[code]; ok {
		return icon
	}
	return b[fallbackIcon]
}
