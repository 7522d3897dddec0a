package valueobjects

import "fmt"

type Category string

const (
	CategorySoftware Category = "software"
	CategoryHardware Category = "hardware"
	CategoryNetwork  Category = "network"
	CategoryAccount  Category = "account"
	CategoryOther    Category = "other"
)

var validCategories = map[Category]bool{
	CategorySoftware: true,
	CategoryHardware: true,
	CategoryNetwork:  true,
	CategoryAccount:  true,
	CategoryOther:    true,
}

func (c Category) String() string {
	return string(c)
}

func (c Category) IsValid() bool {
	return validCategories[c]
}

func NewCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return c, nil
}
