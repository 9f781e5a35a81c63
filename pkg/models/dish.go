package models

type DishCategory string

const (
	Starter DishCategory = "starter"
	Main    DishCategory = "main"
	Dessert DishCategory = "dessert"
)

type Dish struct {
	Name        string       `json:"name"`
	Category    DishCategory `json:"category"`
	Price       int64        `json:"price"`
	Description string       `json:"description"`
}
