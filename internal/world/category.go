package world

import (
	"fmt"
	"strings"
)

// Category is one content category. The declaration order is the fixed
// execution order of a full init.
type Category int

const (
	Auth Category = iota
	Config
	Factions
	Rooms
	Nodes
	Items
	NPCs
	Listings
	Auctions
	Quests
	Skills
	Traits
	Recipes
	Relationships
	Goals
	Setup
)

// Order is every category in execution order.
var Order = []Category{
	Auth, Config, Factions, Rooms, Nodes, Items, NPCs, Listings,
	Auctions, Quests, Skills, Traits, Recipes, Relationships, Goals, Setup,
}

var categoryNames = [...]string{
	Auth:          "auth",
	Config:        "config",
	Factions:      "factions",
	Rooms:         "rooms",
	Nodes:         "nodes",
	Items:         "items",
	NPCs:          "npcs",
	Listings:      "listings",
	Auctions:      "auctions",
	Quests:        "quests",
	Skills:        "skills",
	Traits:        "traits",
	Recipes:       "recipes",
	Relationships: "relationships",
	Goals:         "goals",
	Setup:         "setup",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Singular returns the category's name for a single row, as used in log
// messages ("could not delete quest 7").
func (c Category) Singular() string {
	name := c.String()
	switch c {
	case Auth, Config, Setup:
		return name
	}
	return strings.TrimSuffix(name, "s")
}

// Indexed reports whether rows of the category are addressed by index and so
// support scoped init, delete and revise.
func (c Category) Indexed() bool {
	return c != Auth && c != Setup
}

// Removable reports whether the category has a delete path.
func (c Category) Removable() bool {
	return c.Indexed() && c != Config
}

// ParseCategory parses a category name. Singular forms are accepted.
func ParseCategory(s string) (Category, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Order {
		if want == c.String() || want == c.Singular() {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// Action is what a scoped run does to its indices.
type Action string

const (
	ActionInit   Action = "init"
	ActionDelete Action = "delete"
	ActionRevise Action = "revise"
)

// ParseAction parses an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionInit, ActionDelete, ActionRevise:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q (want init, delete or revise)", s)
}

// Ref names one row of one category.
type Ref struct {
	Category Category
	Index    uint32
}

func (r Ref) String() string {
	return fmt.Sprintf("%s %d", r.Category.Singular(), r.Index)
}
