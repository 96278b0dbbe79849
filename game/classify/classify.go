// Package classify sorts recorded-game object type codes into the categories
// the minimap draws: food, stone, gold, relics and walls. Every other code is
// CategoryNone and is not drawn.
package classify

// Category is the drawing category of an object type code.
type Category int

const (
	CategoryNone Category = iota
	CategoryFood
	CategoryStone
	CategoryGold
	CategoryRelic
	CategoryWall
)

func (c Category) String() string {
	switch c {
	case CategoryFood:
		return "food"
	case CategoryStone:
		return "stone"
	case CategoryGold:
		return "gold"
	case CategoryRelic:
		return "relic"
	case CategoryWall:
		return "wall"
	default:
		return "none"
	}
}

// Object type codes with a fixed meaning.
const (
	StonePile = 102
	GoldPile  = 66
	Relic     = 285

	PalisadeWall  = 72
	StoneWall     = 117
	FortifiedWall = 155
)

// FoodCodes covers berry bushes, fish and huntable or herdable animals.
var FoodCodes = []int{59, 833, 594, 65, 48, 810, 1026, 822, 1031, 1139, 69, 455, 456, 458, 457, 450, 451, 452}

// WallCodes covers palisade, stone and fortified walls plus the stone gate
// (64, 81, 88, 95) and palisade gate (662, 666, 670, 674) variants.
var WallCodes = []int{PalisadeWall, StoneWall, FortifiedWall, 64, 81, 88, 95, 662, 666, 670, 674}

// Classifier maps object type codes to categories.
type Classifier struct {
	codes map[int]Category
}

// New builds a classifier from explicit membership sets. A code listed in
// more than one set keeps the first category in the order food, stone, gold,
// relic, wall.
func New(food []int, stone, gold, relic int, walls []int) *Classifier {
	c := &Classifier{codes: make(map[int]Category, len(food)+len(walls)+3)}
	add := func(code int, cat Category) {
		if _, exists := c.codes[code]; !exists {
			c.codes[code] = cat
		}
	}
	for _, code := range food {
		add(code, CategoryFood)
	}
	add(stone, CategoryStone)
	add(gold, CategoryGold)
	add(relic, CategoryRelic)
	for _, code := range walls {
		add(code, CategoryWall)
	}
	return c
}

// Default returns the classifier for the stock object tables.
func Default() *Classifier {
	return New(FoodCodes, StonePile, GoldPile, Relic, WallCodes)
}

// Classify returns the category of an object type code.
func (c *Classifier) Classify(code int) Category {
	return c.codes[code]
}

// IsResource reports whether the category is drawn during the resource pass.
func (c Category) IsResource() bool {
	return c == CategoryFood || c == CategoryStone || c == CategoryGold || c == CategoryRelic
}
