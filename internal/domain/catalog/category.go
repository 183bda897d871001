package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is the fixed product family a product belongs to
type Category string

const (
	CategoryEquipments   Category = "equipments"
	CategoryConsumables  Category = "consumables"
	CategoryCADCAM       Category = "cadcam"
	CategoryImplantology Category = "implantology"
	CategoryOrthodontics Category = "orthodontics"
)

// CategoryAll is the pseudo category that disables category filtering
const CategoryAll = "all"

// AllCategoriesLabel is the display name of the "all" pseudo category
const AllCategoriesLabel = "Tous les produits"

var categoryLabels = map[Category]string{
	CategoryEquipments:   "Équipements",
	CategoryConsumables:  "Consommables",
	CategoryCADCAM:       "CAD/CAM",
	CategoryImplantology: "Implantologie",
	CategoryOrthodontics: "Orthodontie",
}

// Categories returns the known categories in display order
func Categories() []Category {
	return []Category{
		CategoryEquipments,
		CategoryConsumables,
		CategoryCADCAM,
		CategoryImplantology,
		CategoryOrthodontics,
	}
}

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// DisplayName returns the storefront label; unknown keys are title-cased
func (c Category) DisplayName() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return cases.Title(language.French).String(strings.ReplaceAll(string(c), "_", " "))
}

// ParseCategory normalizes and validates a category key
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", invalidCategoryError(s)
	}
	return c, nil
}

// CategoryCount is the number of active products in a category
type CategoryCount struct {
	Category Category
	Count    int64
}
