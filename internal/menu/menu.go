// Package menu holds the dish catalog of the food-ordering screens.
package menu

import (
	"empower/pkg/models"

	"github.com/shopspring/decimal"
)

var dishes = []models.Dish{
	{Name: "Starlight Risotto", Category: models.Main, Price: 100, Description: "A creamy risotto, infused with herbs and Parmesan cheese."},
	{Name: "Crimson Ember Steak", Category: models.Main, Price: 150, Description: "Juicy steak with a smoky flavor and red wine reduction."},
	{Name: "Golden Bread Sticks", Category: models.Starter, Price: 180, Description: "Warm, crispy breadsticks with garlic butter."},
	{Name: "Twilight Tiramisu", Category: models.Dessert, Price: 100, Description: "Classic dessert with coffee-soaked ladyfingers and mascarpone."},
	{Name: "Emerald Soup", Category: models.Starter, Price: 400, Description: "A creamy soup made from fresh green vegetables."},
}

func ByCategory(category models.DishCategory) []models.Dish {
	var out []models.Dish
	for _, d := range dishes {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

func Find(name string) (models.Dish, bool) {
	for _, d := range dishes {
		if d.Name == name {
			return d, true
		}
	}
	return models.Dish{}, false
}

type Stats struct {
	Count        int             `json:"count"`
	AveragePrice decimal.Decimal `json:"-"`
}

// AverageString formats the average price with two decimals, e.g. "125.00".
func (s Stats) AverageString() string {
	return s.AveragePrice.StringFixed(2)
}

// CategoryStats counts the dishes in category and averages their price. An
// empty category averages to zero.
func CategoryStats(category models.DishCategory) Stats {
	in := ByCategory(category)
	if len(in) == 0 {
		return Stats{AveragePrice: decimal.Zero}
	}
	var total int64
	for _, d := range in {
		total += d.Price
	}
	return Stats{
		Count:        len(in),
		AveragePrice: decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(len(in)))),
	}
}
