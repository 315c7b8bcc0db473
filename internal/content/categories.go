package content

import (
	"errors"
	"io/fs"
	"math/big"
	"path"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/roach88/worldsmith/internal/ids"
)

// Table file names, relative to the content root.
const (
	FileConfig              = "config.csv"
	FileFactions            = "factions.csv"
	FileRooms               = "rooms.csv"
	FileRoomGates           = "room_gates.csv"
	FileNodes               = "nodes.csv"
	FileNodeRequirements    = "node_requirements.csv"
	FileNodeScavenge        = "node_scavenge.csv"
	FileItems               = "items.csv"
	FileAllocations         = "allocations.csv"
	FileDroptables          = "droptables.csv"
	FileItemRequirements    = "item_requirements.csv"
	FileNPCs                = "npcs.csv"
	FileListings            = "listings.csv"
	FileListingRequirements = "listing_requirements.csv"
	FileAuctions            = "auctions.csv"
	FileQuests              = "quests.csv"
	FileQuestObjectives     = "quest_objectives.csv"
	FileQuestRequirements   = "quest_requirements.csv"
	FileQuestRewards        = "quest_rewards.csv"
	FileSkills              = "skills.csv"
	FileSkillBonuses        = "skill_bonuses.csv"
	FileSkillRequirements   = "skill_requirements.csv"
	FileTraits              = "traits.csv"
	FileRecipes             = "recipes.csv"
	FileRecipeRequirements  = "recipe_requirements.csv"
	FileRelationships       = "relationships.csv"
	FileGoals               = "goals.csv"
	FileGoalRequirements    = "goal_requirements.csv"
	FileGoalRewards         = "goal_rewards.csv"
	FixturesDir             = "fixtures"
)

// Config loads global config rows. The Type column picks the setter.
func (l *Loader) Config(sel Selection) ([]ConfigRow, error) {
	t, err := l.table(FileConfig, true)
	if err != nil {
		return nil, err
	}
	return selectRows(l, t, sel, func(rec Record, idx uint32) (ConfigRow, error) {
		name, err := rec.Require("Name")
		if err != nil {
			return ConfigRow{}, err
		}
		row := ConfigRow{Index: idx, Name: name, Kind: ConfigKind(strings.ToLower(rec.Get("Type")))}
		switch row.Kind {
		case ConfigUint:
			row.Uint, err = rec.Big("Value")
		case ConfigBool:
			var b bool
			b, err = rec.Bool("Value")
			row.Uint = new(big.Int)
			if b {
				row.Uint.SetInt64(1)
			}
		case ConfigArray:
			row.Array, err = rec.Uint32List("Value")
			if err == nil && len(row.Array) > 8 {
				err = rec.fail("Value", "array config holds at most 8 values, got %d", len(row.Array))
			}
		case ConfigString:
			row.Text = rec.Get("Value")
		case ConfigAddress:
			row.Text = rec.Get("Value")
			if !common.IsHexAddress(row.Text) {
				err = rec.fail("Value", "invalid address %q", row.Text)
			}
		default:
			err = rec.fail("Type", "unknown config type %q", rec.Get("Type"))
		}
		return row, err
	}), nil
}

// Factions loads faction rows.
func (l *Loader) Factions(sel Selection) ([]FactionRow, error) {
	t, err := l.table(FileFactions, true)
	if err != nil {
		return nil, err
	}
	return selectRows(l, t, sel, func(rec Record, idx uint32) (FactionRow, error) {
		name, err := rec.Require("Name")
		if err != nil {
			return FactionRow{}, err
		}
		return FactionRow{Index: idx, Name: name, Description: rec.Get("Description"), Media: rec.Get("Media")}, nil
	}), nil
}

// Rooms loads rooms joined with their gates. A gate's Goal column, when set,
// replaces its Value with the goal reference of that goal index.
func (l *Loader) Rooms(sel Selection) ([]RoomRow, error) {
	t, err := l.table(FileRooms, true)
	if err != nil {
		return nil, err
	}
	gates, err := subTable(l, FileRoomGates, "Room", func(rec Record) (Gate, error) {
		cond, err := parseCondition(rec)
		if err != nil {
			return Gate{}, err
		}
		src, err := rec.OptUint32("Source")
		if err != nil {
			return Gate{}, err
		}
		if rec.Get("Goal") != "" {
			goal, err := rec.Uint32("Goal")
			if err != nil {
				return Gate{}, err
			}
			cond.Value = ids.GoalIDInt(goal)
		}
		return Gate{Source: src, Condition: cond}, nil
	})
	if err != nil {
		return nil, err
	}
	return selectRows(l, t, sel, func(rec Record, idx uint32) (RoomRow, error) {
		row := RoomRow{Index: idx, Description: rec.Get("Description"), Gates: gates[idx]}
		var err error
		if row.Name, err = rec.Require("Name"); err != nil {
			return row, err
		}
		if row.X, err = rec.Int32("X"); err != nil {
			return row, err
		}
		if row.Y, err = rec.Int32("Y"); err != nil {
			return row, err
		}
		if row.Z, err = rec.Int32("Z"); err != nil {
			return row, err
		}
		row.Exits, err = rec.Uint32List("Exits")
		return row, err
	}), nil
}

// Nodes loads harvest nodes joined with requirements and scavenge rewards.
func (l *Loader) Nodes(sel Selection) ([]NodeRow, error) {
	t, err := l.table(FileNodes, true)
	if err != nil {
		return nil, err
	}
	reqs, err := subTable(l, FileNodeRequirements, "Node", parseCondition)
	if err != nil {
		return nil, err
	}
	scav, err := subTable(l, FileNodeScavenge, "Node", parseReward)
	if err != nil {
		return nil, err
	}
	return selectRows(l, t, sel, func(rec Record, idx uint32) (NodeRow, error) {
		row := NodeRow{
			Index:        idx,
			Affinity:     rec.Get("Affinity"),
			Description:  rec.Get("Description"),
			Requirements: reqs[idx],
			Scavenge:     scav[idx],
		}
		var err error
		if row.Name, err = rec.Require("Name"); err != nil {
			return row, err
		}
		if row.Type, err = rec.Require("Type"); err != nil {
			return row, err
		}
		if row.Item, err = rec.OptUint32("Item"); err != nil {
			return row, err
		}
		if row.Room, err = rec.Uint32("Room"); err != nil {
			return row, err
		}
		row.ScavCost, err = rec.Big("Scav Cost")
		return row, err
	}), nil
}

// Items loads items joined with allocations (by effect name), droptables (by
// droptable name) and use requirements. Items of an unknown Type are row
// errors.
func (l *Loader) Items(sel Selection) ([]ItemRow, error) {
	t, err := l.table(FileItems, true)
	if err != nil {
		return nil, err
	}
	allocTable, err := l.table(FileAllocations, false)
	if err != nil {
		return nil, err
	}
	allocs := make(map[string][]Allocation)
	for _, rec := range allocTable.Records {
		name, err := rec.Require("Name")
		if err != nil {
			l.skip(err)
			continue
		}
		a, err := parseAllocation(rec)
		if err != nil {
			l.skip(err)
			continue
		}
		allocs[name] = append(allocs[name], a)
	}
	dropTable, err := l.table(FileDroptables, false)
	if err != nil {
		return nil, err
	}
	drops := make(map[string]*Droptable)
	for _, rec := range dropTable.Records {
		name, err := rec.Require("Name")
		if err != nil {
			l.skip(err)
			continue
		}
		keys, weights, err := parseDrops(rec)
		if err != nil {
			l.skip(err)
			continue
		}
		drops[name] = &Droptable{Name: name, Keys: keys, Weights: weights}
	}
	reqs, err := subTable(l, FileItemRequirements, "Item", func(rec Record) (ItemRequirement, error) {
		cond, err := parseCondition(rec)
		if err != nil {
			return ItemRequirement{}, err
		}
		use, err := rec.Require("Use")
		return ItemRequirement{Use: use, Condition: cond}, err
	})
	if err != nil {
		return nil, err
	}

	return selectRows(l, t, sel, func(rec Record, idx uint32) (ItemRow, error) {
		row := ItemRow{
			Index:        idx,
			Type:         strings.ToUpper(rec.Get("Type")),
			Description:  rec.Get("Description"),
			Media:        rec.Get("Media"),
			Flags:        rec.StringList("Flags"),
			Requirements: reqs[idx],
		}
		var err error
		if row.Name, err = rec.Require("Name"); err != nil {
			return row, err
		}
		switch {
		case slices.Contains(ConsumableTypes, row.Type):
		case row.Type == ItemTypeLootbox:
			name := rec.Get("Droptable")
			dt, ok := drops[name]
			if !ok {
				return row, rec.fail("Droptable", "lootbox droptable %q not found", name)
			}
			row.Droptable = dt
		default:
			return row, rec.fail("Type", "unknown item type %q", rec.Get("Type"))
		}
		for _, effect := range rec.StringList("Effects") {
			a, ok := allocs[effect]
			if !ok {
				return row, rec.fail("Effects", "allocation %q not found", effect)
			}
			row.Effects = append(row.Effects, a...)
		}
		return row, nil
	}), nil
}

func parseAllocation(rec Record) (Allocation, error) {
	typ, err := rec.Require("Type")
	if err != nil {
		return Allocation{}, err
	}
	idx, err := rec.OptUint32("Index")
	if err != nil {
		return Allocation{}, err
	}
	val, err := rec.Int32("Value")
	return Allocation{Type: typ, Index: idx, Value: val}, err
}

// NPCs loads merchant rows.
func (l *Loader) NPCs(sel Selection) ([]NPCRow, error) {
	t, err := l.table(FileNPCs, true)
	if err != nil {
		return nil, err
	}
	return selectRows(l, t, sel, func(rec Record, idx uint32) (NPCRow, error) {
		row := NPCRow{Index: idx}
		var err error
		if row.Name, err = rec.Require("Name"); err != nil {
			return row, err
		}
		row.Room, err = rec.Uint32("Room")
		return row, err
	}), nil
}

// Listings loads merchant listings joined with their requirements.
func (l *Loader) Listings(sel Selection) ([]ListingRow, error) {
	t, err := l.table(FileListings, true)
	if err != nil {
		return nil, err
	}
	reqs, err := subTable(l, FileListingRequirements, "Listing", parseCondition)
	if err != nil {
		return nil, err
	}
	return selectRows(l, t, sel, func(rec Record, idx uint32) (ListingRow, error) {
		row := ListingRow{
			Index:        idx,
			BuyPricing:   rec.Get("Buy Pricing"),
			SellPricing:  rec.Get("Sell Pricing"),
			Requirements: reqs[idx],
		}
		var err error
		for _, f := range []struct {
			col string
			dst *uint32
		}{{"NPC", &row.NPC}, {"Item", &row.Item}, {"Currency", &row.Currency}} {
			if *f.dst, err = rec.Uint32(f.col); err != nil {
				return row, err
			}
		}
		for _, f := range []struct {
			col string
			dst *int32
		}{{"Value", &row.Value}, {"Buy Scale", &row.BuyScale}, {"Buy Decay", &row.BuyDecay}, {"Sell Scale", &row.SellScale}} {
			if *f.dst, err = rec.Int32(f.col); err != nil {
				return row, err
			}
		}
		return row, nil
	}), nil
}

// Auctions loads item auctions.
func (l *Loader) Auctions(sel Selection) ([]AuctionRow, error) {
	t, err := l.table(FileAuctions, true)
	if err != nil {
		return nil, err
	}
	return selectRows(l, t, sel, func(rec Record, idx uint32) (AuctionRow, error) {
		row := AuctionRow{Index: idx}
		var err error
		if row.Item, err = rec.Uint32("Item"); err != nil {
			return row, err
		}
		if row.Currency, err = rec.Uint32("Currency"); err != nil {
			return row, err
		}
		if row.Target, err = rec.OptUint32("Target"); err != nil {
			return row, err
		}
		for _, f := range []struct {
			col string
			dst *int32
		}{{"Period", &row.Period}, {"Decay", &row.Decay}, {"Rate", &row.Rate}, {"Max", &row.Max}} {
			if *f.dst, err = rec.Int32(f.col); err != nil {
				return row, err
			}
		}
		return row, nil
	}), nil
}

// Quests loads quests joined with objectives, requirements and rewards.
func (l *Loader) Quests(sel Selection) ([]QuestRow, error) {
	t, err := l.table(FileQuests, true)
	if err != nil {
		return nil, err
	}
	objs, err := subTable(l, FileQuestObjectives, "Quest", func(rec Record) (Objective, error) {
		cond, err := parseCondition(rec)
		if err != nil {
			return Objective{}, err
		}
		name, err := rec.Require("Name")
		return Objective{Name: name, Condition: cond}, err
	})
	if err != nil {
		return nil, err
	}
	reqs, err := subTable(l, FileQuestRequirements, "Quest", parseCondition)
	if err != nil {
		return nil, err
	}
	rewards, err := subTable(l, FileQuestRewards, "Quest", parseReward)
	if err != nil {
		return nil, err
	}
	return selectRows(l, t, sel, func(rec Record, idx uint32) (QuestRow, error) {
		row := QuestRow{
			Index:        idx,
			Description:  rec.Get("Description"),
			Resolution:   rec.Get("Resolution"),
			Objectives:   objs[idx],
			Requirements: reqs[idx],
			Rewards:      rewards[idx],
		}
		var err error
		if row.Title, err = rec.Require("Title"); err != nil {
			return row, err
		}
		if row.Repeatable, err = rec.Bool("Repeatable"); err != nil {
			return row, err
		}
		row.Duration, err = rec.Big("Duration")
		return row, err
	}), nil
}

// FixtureQuests loads the fixture quests kept under fixtures/. A missing
// fixtures table yields no rows.
func (l *Loader) FixtureQuests(sel Selection) ([]QuestRow, error) {
	sub := l.Sub(FixturesDir)
	if _, err := fs.Stat(l.fsys, path.Join(sub.prefix, FileQuests)); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return sub.Quests(sel)
}

// Skills loads skills joined with bonuses and requirements.
func (l *Loader) Skills(sel Selection) ([]SkillRow, error) {
	t, err := l.table(FileSkills, true)
	if err != nil {
		return nil, err
	}
	bonuses, err := subTable(l, FileSkillBonuses, "Skill", func(rec Record) (Bonus, error) {
		typ, err := rec.Require("Type")
		if err != nil {
			return Bonus{}, err
		}
		val, err := rec.Int64("Value")
		return Bonus{Type: typ, Value: val}, err
	})
	if err != nil {
		return nil, err
	}
	reqs, err := subTable(l, FileSkillRequirements, "Skill", parseCondition)
	if err != nil {
		return nil, err
	}
	return selectRows(l, t, sel, func(rec Record, idx uint32) (SkillRow, error) {
		row := SkillRow{
			Index:        idx,
			For:          rec.Get("For"),
			Tree:         rec.Get("Tree"),
			Description:  rec.Get("Description"),
			Media:        rec.Get("Media"),
			Bonuses:      bonuses[idx],
			Requirements: reqs[idx],
		}
		var err error
		if row.Name, err = rec.Require("Name"); err != nil {
			return row, err
		}
		if row.Type, err = rec.Require("Type"); err != nil {
			return row, err
		}
		for _, f := range []struct {
			col string
			dst *uint32
		}{{"Tier", &row.Tier}, {"Cost", &row.Cost}, {"Max", &row.Max}} {
			if *f.dst, err = rec.OptUint32(f.col); err != nil {
				return row, err
			}
		}
		return row, nil
	}), nil
}

// Traits loads pet trait rows.
func (l *Loader) Traits(sel Selection) ([]TraitRow, error) {
	t, err := l.table(FileTraits, true)
	if err != nil {
		return nil, err
	}
	return selectRows(l, t, sel, func(rec Record, idx uint32) (TraitRow, error) {
		row := TraitRow{Index: idx, Affinity: rec.Get("Affinity")}
		var err error
		if row.Name, err = rec.Require("Name"); err != nil {
			return row, err
		}
		if row.Type, err = rec.Require("Type"); err != nil {
			return row, err
		}
		for _, f := range []struct {
			col string
			dst *int32
		}{{"Health", &row.Health}, {"Power", &row.Power}, {"Violence", &row.Violence}, {"Harmony", &row.Harmony}, {"Slots", &row.Slots}} {
			if *f.dst, err = rec.Int32(f.col); err != nil {
				return row, err
			}
		}
		row.Rarity, err = rec.OptUint32("Rarity")
		return row, err
	}), nil
}

// Recipes loads crafting recipes joined with their requirements. Input and
// output lists must pair up with their amounts.
func (l *Loader) Recipes(sel Selection) ([]RecipeRow, error) {
	t, err := l.table(FileRecipes, true)
	if err != nil {
		return nil, err
	}
	reqs, err := subTable(l, FileRecipeRequirements, "Recipe", parseCondition)
	if err != nil {
		return nil, err
	}
	return selectRows(l, t, sel, func(rec Record, idx uint32) (RecipeRow, error) {
		row := RecipeRow{Index: idx, Requirements: reqs[idx]}
		var err error
		if row.Inputs, err = rec.Uint32List("Inputs"); err != nil {
			return row, err
		}
		if row.InputAmounts, err = rec.BigList("Input Amounts"); err != nil {
			return row, err
		}
		if row.Outputs, err = rec.Uint32List("Outputs"); err != nil {
			return row, err
		}
		if row.OutputAmounts, err = rec.BigList("Output Amounts"); err != nil {
			return row, err
		}
		if len(row.Inputs) != len(row.InputAmounts) {
			return row, rec.fail("Input Amounts", "%d inputs but %d amounts", len(row.Inputs), len(row.InputAmounts))
		}
		if len(row.Outputs) != len(row.OutputAmounts) {
			return row, rec.fail("Output Amounts", "%d outputs but %d amounts", len(row.Outputs), len(row.OutputAmounts))
		}
		if row.Experience, err = rec.Big("Experience"); err != nil {
			return row, err
		}
		row.Stamina, err = rec.Int32("Stamina")
		return row, err
	}), nil
}

// Relationships loads NPC relationship rows.
func (l *Loader) Relationships(sel Selection) ([]RelationshipRow, error) {
	t, err := l.table(FileRelationships, true)
	if err != nil {
		return nil, err
	}
	return selectRows(l, t, sel, func(rec Record, idx uint32) (RelationshipRow, error) {
		row := RelationshipRow{Index: idx}
		var err error
		if row.NPC, err = rec.Uint32("NPC"); err != nil {
			return row, err
		}
		if row.Name, err = rec.Require("Name"); err != nil {
			return row, err
		}
		if row.Whitelist, err = rec.Uint32List("Whitelist"); err != nil {
			return row, err
		}
		row.Blacklist, err = rec.Uint32List("Blacklist")
		return row, err
	}), nil
}

// Goals loads community goals joined with requirements and tiered rewards.
func (l *Loader) Goals(sel Selection) ([]GoalRow, error) {
	t, err := l.table(FileGoals, true)
	if err != nil {
		return nil, err
	}
	reqs, err := subTable(l, FileGoalRequirements, "Goal", parseCondition)
	if err != nil {
		return nil, err
	}
	rewards, err := subTable(l, FileGoalRewards, "Goal", func(rec Record) (GoalReward, error) {
		r, err := parseReward(rec)
		if err != nil {
			return GoalReward{}, err
		}
		cutoff, err := rec.Big("Cutoff")
		return GoalReward{Name: rec.Get("Name"), Cutoff: cutoff, Reward: r}, err
	})
	if err != nil {
		return nil, err
	}
	return selectRows(l, t, sel, func(rec Record, idx uint32) (GoalRow, error) {
		row := GoalRow{
			Index:        idx,
			Description:  rec.Get("Description"),
			Requirements: reqs[idx],
			Rewards:      rewards[idx],
		}
		var err error
		if row.Name, err = rec.Require("Name"); err != nil {
			return row, err
		}
		if row.Room, err = rec.OptUint32("Room"); err != nil {
			return row, err
		}
		if row.Objective.Type, err = rec.Require("Objective Type"); err != nil {
			return row, err
		}
		row.Objective.Logic = rec.Get("Objective Logic")
		if row.Objective.Index, err = rec.OptUint32("Objective Index"); err != nil {
			return row, err
		}
		row.Objective.Value, err = rec.Uint64("Objective Value")
		return row, err
	}), nil
}
