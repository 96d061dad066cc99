package fonts

import "strings"

// Style is the slant classification of a font face.
type Style uint8

const (
	StyleNormal Style = iota
	StyleItalic
	StyleOblique
)

// String returns the style name.
func (s Style) String() string {
	switch s {
	case StyleItalic:
		return "italic"
	case StyleOblique:
		return "oblique"
	default:
		return "normal"
	}
}

// Weight is a CSS-style numeric font weight (100–900).
type Weight uint16

// Common weight values.
const (
	WeightThin       Weight = 100
	WeightExtraLight Weight = 200
	WeightLight      Weight = 300
	WeightRegular    Weight = 400
	WeightMedium     Weight = 500
	WeightSemiBold   Weight = 600
	WeightBold       Weight = 700
	WeightExtraBold  Weight = 800
	WeightBlack      Weight = 900
)

// Info is the metadata for one font face, derived by probing the raw bytes.
type Info struct {
	Family string
	Style  Style
	Weight Weight
}

// Book is the ordered metadata index over all available faces. The order is
// fixed at catalog construction and matches the font entries 1:1.
type Book []Info

// Len returns the number of faces in the book.
func (b Book) Len() int { return len(b) }

// Info returns the metadata at index i.
func (b Book) Info(i int) (Info, bool) {
	if i < 0 || i >= len(b) {
		return Info{}, false
	}
	return b[i], true
}

// classifyStyle derives a Style from an OpenType subfamily name.
func classifyStyle(subfamily string) Style {
	s := strings.ToLower(subfamily)
	switch {
	case strings.Contains(s, "italic"):
		return StyleItalic
	case strings.Contains(s, "oblique"):
		return StyleOblique
	default:
		return StyleNormal
	}
}

// classifyWeight derives a Weight from an OpenType subfamily name.
// More specific keywords are checked first ("extralight" before "light").
func classifyWeight(subfamily string) Weight {
	s := strings.ToLower(strings.ReplaceAll(subfamily, " ", ""))
	switch {
	case strings.Contains(s, "thin"), strings.Contains(s, "hairline"):
		return WeightThin
	case strings.Contains(s, "extralight"), strings.Contains(s, "ultralight"):
		return WeightExtraLight
	case strings.Contains(s, "light"):
		return WeightLight
	case strings.Contains(s, "medium"):
		return WeightMedium
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		return WeightSemiBold
	case strings.Contains(s, "extrabold"), strings.Contains(s, "ultrabold"):
		return WeightExtraBold
	case strings.Contains(s, "black"), strings.Contains(s, "heavy"):
		return WeightBlack
	case strings.Contains(s, "bold"):
		return WeightBold
	default:
		return WeightRegular
	}
}
