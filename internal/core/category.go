package core

// The fixed category set. CSV imports may carry arbitrary category strings
// outside this set; they are kept verbatim, never coerced.
const (
	CategoryFood          = "Food"
	CategoryTransport     = "Transport"
	CategoryEntertainment = "Entertainment"
	CategoryIncome        = "Income"
	CategoryShopping      = "Shopping"
	CategoryBills         = "Bills"
	CategoryHealthcare    = "Healthcare"
	CategoryEducation     = "Education"
	CategoryOther         = "Other"
)

// DefaultIcon is used when a category has no glyph mapping.
const DefaultIcon = "💳"

var categoryIcons = map[string]string{
	CategoryFood:          "🍔",
	CategoryTransport:     "🚗",
	CategoryEntertainment: "🎬",
	CategoryIncome:        "💰",
	CategoryShopping:      "🛍️",
	CategoryBills:         "📄",
	CategoryHealthcare:    "🏥",
	CategoryEducation:     "📚",
	CategoryOther:         DefaultIcon,
}

// Categories returns the fixed category set in display order.
func Categories() []string {
	return []string{
		CategoryFood,
		CategoryTransport,
		CategoryEntertainment,
		CategoryIncome,
		CategoryShopping,
		CategoryBills,
		CategoryHealthcare,
		CategoryEducation,
		CategoryOther,
	}
}

// IconFor resolves the glyph for a category at creation time. Unrecognized
// categories get DefaultIcon.
func IconFor(category string) string {
	if icon, ok := categoryIcons[category]; ok {
		return icon
	}
	return DefaultIcon
}

// KnownCategory reports whether the category is part of the fixed set.
func KnownCategory(category string) bool {
	_, ok := categoryIcons[category]
	return ok
}
