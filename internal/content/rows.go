package content

import "math/big"

// Condition is a requirement or objective check shared by several
// categories: a typed, logic-qualified comparison against an index/value pair.
type Condition struct {
	Type  string
	Logic string
	Index uint32
	Value *big.Int
}

// Reward is a basic or droptable reward. A droptable reward has Type
// ITEM_DROPTABLE and uses Keys/Weights; Value is its roll count.
type Reward struct {
	Type    string
	Index   uint32
	Value   *big.Int
	Keys    []uint32
	Weights []*big.Int
}

// RewardDroptable is the reward type that uses the droptable builders.
const RewardDroptable = "ITEM_DROPTABLE"

// IsDroptable reports whether the reward uses the droptable builder.
func (r Reward) IsDroptable() bool {
	return r.Type == RewardDroptable
}

// ConfigKind selects the config setter used for a config row.
type ConfigKind string

const (
	ConfigUint    ConfigKind = "uint"
	ConfigArray   ConfigKind = "array"
	ConfigString  ConfigKind = "string"
	ConfigAddress ConfigKind = "address"
	ConfigBool    ConfigKind = "bool"
)

type ConfigRow struct {
	Index uint32
	Name  string
	Kind  ConfigKind
	Uint  *big.Int
	Array []uint32
	Text  string
}

type FactionRow struct {
	Index       uint32
	Name        string
	Description string
	Media       string
}

type RoomRow struct {
	Index       uint32
	Name        string
	X, Y, Z     int32
	Exits       []uint32
	Description string
	Gates       []Gate
}

// Gate restricts movement into a room from Source (0 = any room).
type Gate struct {
	Source uint32
	Condition
}

type NodeRow struct {
	Index        uint32
	Name         string
	Type         string
	Item         uint32
	Room         uint32
	Affinity     string
	Description  string
	ScavCost     *big.Int
	Requirements []Condition
	Scavenge     []Reward
}

// Item types handled by the consumable builder.
var ConsumableTypes = []string{"FOOD", "REVIVE", "CONSUMABLE", "MATERIAL", "MISC"}

// ItemTypeLootbox is the item type built from a droptable.
const ItemTypeLootbox = "LOOTBOX"

type ItemRow struct {
	Index        uint32
	Name         string
	Type         string
	Description  string
	Media        string
	Effects      []Allocation
	Droptable    *Droptable
	Flags        []string
	Requirements []ItemRequirement
}

// Allocation is one stat effect granted by an item, joined from the
// allocations table by effect name.
type Allocation struct {
	Type  string
	Index uint32
	Value int32
}

type Droptable struct {
	Name    string
	Keys    []uint32
	Weights []*big.Int
}

// ItemRequirement gates one use case of an item.
type ItemRequirement struct {
	Use string
	Condition
}

type NPCRow struct {
	Index uint32
	Name  string
	Room  uint32
}

type ListingRow struct {
	Index        uint32
	NPC          uint32
	Item         uint32
	Currency     uint32
	Value        int32
	BuyPricing   string
	BuyScale     int32
	BuyDecay     int32
	SellPricing  string
	SellScale    int32
	Requirements []Condition
}

type AuctionRow struct {
	Index    uint32
	Item     uint32
	Currency uint32
	Target   uint32
	Period   int32
	Decay    int32
	Rate     int32
	Max      int32
}

type QuestRow struct {
	Index        uint32
	Title        string
	Description  string
	Resolution   string
	Repeatable   bool
	Duration     *big.Int
	Objectives   []Objective
	Requirements []Condition
	Rewards      []Reward
}

type Objective struct {
	Name string
	Condition
}

type SkillRow struct {
	Index        uint32
	Name         string
	For          string
	Type         string
	Tree         string
	Tier         uint32
	Cost         uint32
	Max          uint32
	Description  string
	Media        string
	Bonuses      []Bonus
	Requirements []Condition
}

type Bonus struct {
	Type  string
	Value int64
}

type TraitRow struct {
	Index    uint32
	Name     string
	Type     string
	Health   int32
	Power    int32
	Violence int32
	Harmony  int32
	Slots    int32
	Rarity   uint32
	Affinity string
}

type RecipeRow struct {
	Index         uint32
	Inputs        []uint32
	InputAmounts  []*big.Int
	Outputs       []uint32
	OutputAmounts []*big.Int
	Experience    *big.Int
	Stamina       int32
	Requirements  []Condition
}

type RelationshipRow struct {
	Index     uint32
	NPC       uint32
	Name      string
	Whitelist []uint32
	Blacklist []uint32
}

type GoalRow struct {
	Index        uint32
	Name         string
	Description  string
	Room         uint32
	Objective    GoalObjective
	Requirements []Condition
	Rewards      []GoalReward
}

type GoalObjective struct {
	Type  string
	Logic string
	Index uint32
	Value uint64
}

// GoalReward pays out to contributors above Cutoff.
type GoalReward struct {
	Name   string
	Cutoff *big.Int
	Reward
}
