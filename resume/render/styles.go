package render

// Theme captures the formatting a layout applies to key resume elements.
type Theme struct {
	Font         string
	Accent       string
	HeadingColor string
	NameColor    string
	NameSize     int
	HeadingSize  int
}

const (
	HeadingColor = "1F2937"
	NameColor    = "111111"
	HeadingSize  = 14
	NameSize     = 26
)

// Themes maps layout names to their formatting.
var Themes = map[string]Theme{
	"modern": {
		Font:         "'Inter', 'Helvetica Neue', Arial, sans-serif",
		Accent:       "2563EB",
		HeadingColor: HeadingColor,
		NameColor:    NameColor,
		NameSize:     NameSize,
		HeadingSize:  HeadingSize,
	},
	"classic": {
		Font:         "Georgia, 'Times New Roman', serif",
		Accent:       "7F1D1D",
		HeadingColor: "000000",
		NameColor:    "000000",
		NameSize:     28,
		HeadingSize:  HeadingSize,
	},
	"minimal": {
		Font:         "'Helvetica Neue', Arial, sans-serif",
		Accent:       "4B5563",
		HeadingColor: "374151",
		NameColor:    NameColor,
		NameSize:     22,
		HeadingSize:  12,
	},
}
