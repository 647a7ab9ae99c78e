package models

// Product categories.
const (
	CategoryIndoor     = "indoor"
	CategoryOutdoor    = "outdoor"
	CategoryCommercial = "commercial"
	CategoryDecorative = "decorative"
	CategoryIndustrial = "industrial"
	CategorySmart      = "smart"
)

// Categories lists every accepted category.
var Categories = []string{
	CategoryIndoor, CategoryOutdoor, CategoryCommercial,
	CategoryDecorative, CategoryIndustrial, CategorySmart,
}

type Product struct {
	Meta             `bson:",inline"`
	Name             string   `bson:"name" json:"name" schema:"name" validate:"required"`
	Summary          string   `bson:"summary" json:"summary" schema:"summary"`
	Price            float64  `bson:"price" json:"price" schema:"price" validate:"gte=0"`
	Category         string   `bson:"category" json:"category" schema:"category" validate:"required,oneof=indoor outdoor commercial decorative industrial smart"`
	Images           []string `bson:"images" json:"images" schema:"-"`
	Description      string   `bson:"description" json:"description" schema:"description"`
	Wattage          string   `bson:"wattage" json:"wattage" schema:"wattage"`
	Lumens           string   `bson:"lumens" json:"lumens" schema:"lumens"`
	ColorTemperature string   `bson:"colorTemperature" json:"colorTemperature" schema:"colorTemperature"`
	Warranty         string   `bson:"warranty" json:"warranty" schema:"warranty"`
}
