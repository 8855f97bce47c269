package classify

import "strings"

// Category is a simplified business activity category.
type Category string

// Business categories.
const (
	Office        Category = "Office"
	Retail        Category = "Retail"
	Industrial    Category = "Industrial"
	Entertainment Category = "Entertainment"
	AutoServices  Category = "Auto Services"
	Hospitality   Category = "Hospitality"
	Institutional Category = "Institutional"
	Healthcare    Category = "Healthcare"
)

// DefaultCategoryColor is used for a category without a palette entry.
const DefaultCategoryColor = "#888888"

// CategoryColors is the dashboard palette per category.
var CategoryColors = map[string]string{
	string(Office):        "#722F37",
	string(Retail):        "#E9B44C",
	string(Industrial):    "#8ECAE6",
	string(Entertainment): "#9DC183",
	string(AutoServices):  "#C9705F",
	string(Hospitality):   "#C3B1E1",
	string(Institutional): "#D4A373",
	string(Healthcare):    "#E8998D",
	"Other":               "#D4A59A",
}

// proposedUses maps the upstream proposed-use description to a category.
// Several uses appear under more than one spelling.
var proposedUses = map[string]Category{
	"OFFICE, BANK, AND PROFESSIONAL BUILDING": Office,
	"STORE AND MERCANTILE BUILDING":           Retail,
	"INDUSTRIAL BUILDING":                     Industrial,
	"AMUSEMENT & RECREATIONAL BUILDING":       Entertainment,
	"SERVICE STATION OR REPAIR GARAGE":        AutoServices,
	"HOTEL, MOTEL, OR TOURIST CABIN":          Hospitality,
	"HOTEL, MOTEL AND TOURIST CABIN":          Hospitality,
	"CHURCH OR RELIGIOUS BUILDING":            Institutional,
	"CHURCH OR OTHER RELIGIOUS BUILDING":      Institutional,
	"SCHOOL AND OTHER EDUCATIONAL BUILDING":   Institutional,
	"SCHOOL AND EDUCATIONAL BUILDING":         Institutional,
	"LODGE ASSOCIATION":                       Institutional,
	"HOSPITAL AND MEDICAL OFFICE":             Healthcare,
	"HOSPITAL AND INSTITUTIONAL BUILDING":     Healthcare,
	"PUBLIC WORKS & UTILITIES BUILDINGS":      Institutional,
}

// excludedUses are not new business activity: alterations, demolitions,
// housing filed as non-residential, and accessory structures.
var excludedUses = map[string]struct{}{
	"ADDITION/ALTERATION NONRESIDENTIAL BLDG": {},
	"ADDITION/ALTERATION RESIDENTIAL BLDG":    {},
	"DEMOLITION OF NONRESIDENTIAL BUILDING":   {},
	"FIVE OR MORE FAMILY BUILDING":            {},
	"TWO FAMILY BUILDING (DUPLEX)":            {},
	"RESIDENTIAL TOWNHOUSE":                   {},
	"RESIDENTIAL CONDOMINIUM":                 {},
	"RESIDENTIAL GARAGE OR CARPORT":           {},
	"SHEDS, BOATHOUSES, ACCESSORY BUILDINGS":  {},
	"MISCELLANEOUS SUCH AS FENCES":            {},
	"PARKING GARAGE (BLDGS & OPEN DECKED)":    {},
}

// Business maps a proposed-use description to a category. ok is false for
// excluded and unmapped uses; such permits are dropped from business stats.
func Business(proposedUse string) (Category, bool) {
	cleaned := strings.TrimSpace(proposedUse)
	if cleaned == "" {
		return "", false
	}
	if _, excluded := excludedUses[cleaned]; excluded {
		return "", false
	}
	c, ok := proposedUses[cleaned]
	return c, ok
}

// Color returns the palette color for c.
func (c Category) Color() string {
	if color, ok := CategoryColors[string(c)]; ok {
		return color
	}
	return DefaultCategoryColor
}
