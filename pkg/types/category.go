package types

// Category is the closed classification shared by needs and learnings. It is
// both the hard matching gate and the display grouping key.
type Category string

const (
	CategoryProduct     Category = "product"
	CategorySales       Category = "sales"
	CategoryFundraising Category = "fundraising"
	CategoryBranding    Category = "branding"
	CategoryUX          Category = "ux"
	CategoryMarketing   Category = "marketing"
	CategoryTech        Category = "tech"
	CategoryOps         Category = "ops"
	CategoryOther       Category = "other"
)

var Categories = []Category{
	CategoryProduct,
	CategorySales,
	CategoryFundraising,
	CategoryBranding,
	CategoryUX,
	CategoryMarketing,
	CategoryTech,
	CategoryOps,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalizes free-form input; anything unrecognized lands in
// "other" rather than failing the check-in.
func ParseCategory(s string) Category {
	c := Category(s)
	if !c.Valid() {
		return CategoryOther
	}
	return c
}
