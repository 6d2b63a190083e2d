package item

import "fmt"

// Rating is the star rarity of an item.
type Rating int

const (
	ThreeStar Rating = 3
	FourStar  Rating = 4
	FiveStar  Rating = 5
)

// Ratings lists every rarity a pool must carry, lowest first.
var Ratings = []Rating{ThreeStar, FourStar, FiveStar}

func (r Rating) Valid() bool { return r >= ThreeStar && r <= FiveStar }

func (r Rating) String() string { return fmt.Sprintf("%d*", int(r)) }

// Category distinguishes characters from weapons.
type Category string

const (
	Character Category = "character"
	Weapon    Category = "weapon"
)

func (c Category) Valid() bool { return c == Character || c == Weapon }

// Item is one pullable entry of a banner catalog. Values are never mutated
// after the catalog is loaded.
type Item struct {
	Name     string   `json:"name" yaml:"name"`
	Rating   Rating   `json:"rating" yaml:"rating"`
	Category Category `json:"category" yaml:"category"`
	Featured bool     `json:"featured,omitempty" yaml:"featured,omitempty"` // rate-up 5* only
	Image    string   `json:"image" yaml:"image"`                           // resolved by the catalog owner
}
