package world

import (
	"fmt"
	"math/big"

	"github.com/roach88/worldsmith/internal/admin"
	"github.com/roach88/worldsmith/internal/content"
)

// lifecycle is the capability set of a category. init returns the number of
// rows it emitted; a nil remove means the category cannot be deleted.
type lifecycle struct {
	init   func(r *run, sel content.Selection) (int, error)
	remove func(r *run, indices []uint32) error
}

var lifecycles = [...]lifecycle{
	Auth:   {init: initAuth},
	Config: {init: initConfig},
	Factions: {
		init:   initFactions,
		remove: removeByIndex(func(a *admin.API, i uint32) error { return a.Factions.Remove(i) }),
	},
	Rooms: {
		init:   initRooms,
		remove: removeByIndex(func(a *admin.API, i uint32) error { return a.Rooms.Remove(i) }),
	},
	Nodes: {
		init:   initNodes,
		remove: removeByIndex(func(a *admin.API, i uint32) error { return a.Nodes.Remove(i) }),
	},
	Items: {
		init:   initItems,
		remove: removeByIndex(func(a *admin.API, i uint32) error { return a.Items.Remove(i) }),
	},
	NPCs: {
		init:   initNPCs,
		remove: removeByIndex(func(a *admin.API, i uint32) error { return a.NPCs.Remove(i) }),
	},
	Listings: {
		init: initListings,
		remove: removeByRow((*content.Loader).Listings,
			func(l content.ListingRow) uint32 { return l.Index },
			func(a *admin.API, l content.ListingRow) error { return a.Listings.Remove(l.NPC, l.Item) }),
	},
	Auctions: {
		init: initAuctions,
		remove: removeByRow((*content.Loader).Auctions,
			func(au content.AuctionRow) uint32 { return au.Index },
			func(a *admin.API, au content.AuctionRow) error { return a.Auctions.Remove(au.Item) }),
	},
	Quests: {
		init:   initQuests,
		remove: removeByIndex(func(a *admin.API, i uint32) error { return a.Quests.Remove(i) }),
	},
	Skills: {
		init:   initSkills,
		remove: removeByIndex(func(a *admin.API, i uint32) error { return a.Skills.Remove(i) }),
	},
	Traits: {
		init: initTraits,
		remove: removeByRow((*content.Loader).Traits,
			func(t content.TraitRow) uint32 { return t.Index },
			func(a *admin.API, t content.TraitRow) error { return a.Traits.Remove(t.Index, t.Type) }),
	},
	Recipes: {
		init:   initRecipes,
		remove: removeByIndex(func(a *admin.API, i uint32) error { return a.Recipes.Remove(i) }),
	},
	Relationships: {
		init: initRelationships,
		remove: removeByRow((*content.Loader).Relationships,
			func(rel content.RelationshipRow) uint32 { return rel.Index },
			func(a *admin.API, rel content.RelationshipRow) error { return a.Relationships.Remove(rel.NPC, rel.Index) }),
	},
	Goals: {
		init:   initGoals,
		remove: removeByIndex(func(a *admin.API, i uint32) error { return a.Goals.Remove(i) }),
	},
	Setup: {init: initSetup},
}

// removeByIndex deletes rows whose on-chain key is their index.
func removeByIndex(remove func(a *admin.API, index uint32) error) func(*run, []uint32) error {
	return func(r *run, indices []uint32) error {
		for _, idx := range indices {
			err := r.delete(idx, func() error { return remove(r.api, idx) })
			if err != nil {
				return err
			}
		}
		return nil
	}
}

// removeByRow deletes rows keyed on chain by other columns, which are looked
// up in the content tables. Rows skipped by that lookup are not counted
// again; the init half of a revise reports them.
func removeByRow[T any](
	load func(*content.Loader, content.Selection) ([]T, error),
	index func(T) uint32,
	remove func(*admin.API, T) error,
) func(*run, []uint32) error {
	return func(r *run, indices []uint32) error {
		before := r.o.loader.Skipped()
		rows, err := load(r.o.loader, content.ByIndex(indices...))
		if err != nil {
			return err
		}
		r.baseSkipped += r.o.loader.Skipped() - before

		byIndex := make(map[uint32]T, len(rows))
		for _, row := range rows {
			byIndex[index(row)] = row
		}
		for _, idx := range indices {
			err := r.delete(idx, func() error {
				row, ok := byIndex[idx]
				if !ok {
					return fmt.Errorf("no content row for index %d", idx)
				}
				return remove(r.api, row)
			})
			if err != nil {
				return err
			}
		}
		return nil
	}
}

func initAuth(r *run, _ content.Selection) (int, error) {
	for i, g := range r.o.profile.Roles {
		if err := r.row(uint32(i), func() error { return r.api.Auth.GrantRole(g.Account, g.Role) }); err != nil {
			return 0, err
		}
	}
	return len(r.o.profile.Roles), nil
}

func initConfig(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.Config(sel)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		err := r.row(row.Index, func() error {
			switch row.Kind {
			case content.ConfigArray:
				return r.api.Config.SetArray(row.Name, row.Array)
			case content.ConfigString:
				return r.api.Config.SetString(row.Name, row.Text)
			case content.ConfigAddress:
				return r.api.Config.SetAddress(row.Name, row.Text)
			default:
				return r.api.Config.Set(row.Name, row.Uint)
			}
		})
		if err != nil {
			return 0, err
		}
	}
	if sel.Scoped() {
		return len(rows), nil
	}
	// Overrides land after the table so they win on chain.
	for _, ov := range r.o.profile.ConfigOverrides {
		if err := r.wait(); err != nil {
			return 0, err
		}
		if err := r.api.Config.Set(ov.Name, new(big.Int).SetUint64(ov.Value)); err != nil {
			return 0, fmt.Errorf("config override %s: %w", ov.Name, err)
		}
	}
	return len(rows), nil
}

func initFactions(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.Factions(sel)
	if err != nil {
		return 0, err
	}
	for _, f := range rows {
		if err := r.row(f.Index, func() error {
			return r.api.Factions.Create(f.Index, f.Name, f.Description, f.Media)
		}); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func initRooms(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.Rooms(sel)
	if err != nil {
		return 0, err
	}
	for _, room := range rows {
		err := r.row(room.Index, func() error {
			if err := r.api.Rooms.Create(room.X, room.Y, room.Z, room.Index, room.Name, room.Description, room.Exits); err != nil {
				return err
			}
			for _, g := range room.Gates {
				err := r.api.Rooms.CreateGate(room.Index, g.Source, g.Index, g.Value, g.Logic, g.Type)
				if err := r.sub(room.Index, "gate", err); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func initNodes(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.Nodes(sel)
	if err != nil {
		return 0, err
	}
	for _, n := range rows {
		err := r.row(n.Index, func() error {
			if err := r.api.Nodes.Create(n.Index, n.Type, n.Item, n.Room, n.Name, n.Description, n.Affinity); err != nil {
				return err
			}
			for _, c := range n.Requirements {
				err := r.api.Nodes.AddRequirement(n.Index, c.Type, c.Logic, c.Index, c.Value)
				if err := r.sub(n.Index, "requirement", err); err != nil {
					return err
				}
			}
			if n.ScavCost == nil || n.ScavCost.Sign() == 0 {
				if len(n.Scavenge) > 0 {
					return r.sub(n.Index, "scavenge", fmt.Errorf("%d scavenge rewards but no scavenge cost", len(n.Scavenge)))
				}
				return nil
			}
			if err := r.api.Nodes.AddScavenge(n.Index, n.ScavCost); err != nil {
				return r.sub(n.Index, "scavenge", err)
			}
			for _, rw := range n.Scavenge {
				var err error
				if rw.IsDroptable() {
					err = r.api.Nodes.AddScavengeDroptable(n.Index, rw.Keys, rw.Weights, rw.Value)
				} else {
					err = r.api.Nodes.AddScavengeReward(n.Index, rw.Type, rw.Index, rw.Value)
				}
				if err := r.sub(n.Index, "scavenge reward", err); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func initItems(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.Items(sel)
	if err != nil {
		return 0, err
	}
	for _, it := range rows {
		err := r.row(it.Index, func() error {
			var err error
			if it.Type == content.ItemTypeLootbox {
				err = r.api.Items.CreateLootbox(it.Index, it.Name, it.Description, it.Droptable.Keys, it.Droptable.Weights, it.Media)
			} else {
				err = r.api.Items.CreateConsumable(it.Index, it.Type, it.Name, it.Description, it.Media)
			}
			if err != nil {
				return err
			}
			for _, a := range it.Effects {
				err := r.api.Items.AddAllocation(it.Index, a.Type, a.Index, a.Value)
				if err := r.sub(it.Index, "allocation", err); err != nil {
					return err
				}
			}
			for _, f := range it.Flags {
				if err := r.sub(it.Index, "flag", r.api.Items.AddFlag(it.Index, f)); err != nil {
					return err
				}
			}
			for _, req := range it.Requirements {
				err := r.api.Items.AddRequirement(it.Index, req.Use, req.Type, req.Logic, req.Index, req.Value)
				if err := r.sub(it.Index, "requirement", err); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func initNPCs(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.NPCs(sel)
	if err != nil {
		return 0, err
	}
	for _, n := range rows {
		if err := r.row(n.Index, func() error { return r.api.NPCs.Create(n.Index, n.Name, n.Room) }); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func initListings(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.Listings(sel)
	if err != nil {
		return 0, err
	}
	for _, l := range rows {
		err := r.row(l.Index, func() error {
			if err := r.api.Listings.Create(l.NPC, l.Item, l.Currency, l.Value); err != nil {
				return err
			}
			if l.BuyPricing != "" {
				err := r.api.Listings.SetBuyPrice(l.NPC, l.Item, l.BuyPricing, l.BuyScale, l.BuyDecay)
				if err := r.sub(l.Index, "buy price", err); err != nil {
					return err
				}
			}
			if l.SellPricing != "" {
				err := r.api.Listings.SetSellPrice(l.NPC, l.Item, l.SellPricing, l.SellScale)
				if err := r.sub(l.Index, "sell price", err); err != nil {
					return err
				}
			}
			for _, c := range l.Requirements {
				err := r.api.Listings.AddRequirement(l.NPC, l.Item, c.Type, c.Logic, c.Index, c.Value)
				if err := r.sub(l.Index, "requirement", err); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func initAuctions(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.Auctions(sel)
	if err != nil {
		return 0, err
	}
	for _, a := range rows {
		err := r.row(a.Index, func() error {
			return r.api.Auctions.Create(a.Item, a.Currency, a.Target, a.Period, a.Decay, a.Rate, a.Max)
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func initQuests(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.Quests(sel)
	if err != nil {
		return 0, err
	}
	if r.o.profile.FixtureQuests {
		fixtures, err := r.o.loader.FixtureQuests(sel)
		if err != nil {
			return 0, err
		}
		rows = append(rows, fixtures...)
	}
	for _, q := range rows {
		if err := r.row(q.Index, func() error { return buildQuest(r, q) }); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func buildQuest(r *run, q content.QuestRow) error {
	if err := r.api.Quests.Create(q.Index, q.Title, q.Description, q.Resolution, q.Repeatable, q.Duration); err != nil {
		return err
	}
	for _, o := range q.Objectives {
		err := r.api.Quests.AddObjective(q.Index, o.Name, o.Logic, o.Type, o.Index, o.Value)
		if err := r.sub(q.Index, "objective", err); err != nil {
			return err
		}
	}
	for _, c := range q.Requirements {
		err := r.api.Quests.AddRequirement(q.Index, c.Logic, c.Type, c.Index, c.Value)
		if err := r.sub(q.Index, "requirement", err); err != nil {
			return err
		}
	}
	for _, rw := range q.Rewards {
		var err error
		if rw.IsDroptable() {
			err = r.api.Quests.AddRewardDroptable(q.Index, rw.Keys, rw.Weights, rw.Value)
		} else {
			err = r.api.Quests.AddReward(q.Index, rw.Type, rw.Index, rw.Value)
		}
		if err := r.sub(q.Index, "reward", err); err != nil {
			return err
		}
	}
	return nil
}

func initSkills(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.Skills(sel)
	if err != nil {
		return 0, err
	}
	for _, s := range rows {
		err := r.row(s.Index, func() error {
			if err := r.api.Skills.Create(s.Index, s.For, s.Type, s.Tree, s.Name, s.Description, s.Cost, s.Max, s.Tier, s.Media); err != nil {
				return err
			}
			for _, b := range s.Bonuses {
				if err := r.sub(s.Index, "bonus", r.api.Skills.AddBonus(s.Index, b.Type, b.Value)); err != nil {
					return err
				}
			}
			for _, c := range s.Requirements {
				err := r.api.Skills.AddRequirement(s.Index, c.Type, c.Logic, c.Index, c.Value)
				if err := r.sub(s.Index, "requirement", err); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func initTraits(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.Traits(sel)
	if err != nil {
		return 0, err
	}
	for _, t := range rows {
		err := r.row(t.Index, func() error {
			return r.api.Traits.Create(t.Index, t.Health, t.Power, t.Violence, t.Harmony, t.Slots, t.Rarity, t.Affinity, t.Name, t.Type)
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func initRecipes(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.Recipes(sel)
	if err != nil {
		return 0, err
	}
	for _, rc := range rows {
		err := r.row(rc.Index, func() error {
			err := r.api.Recipes.Create(rc.Index, rc.Inputs, rc.InputAmounts, rc.Outputs, rc.OutputAmounts, rc.Experience, rc.Stamina)
			if err != nil {
				return err
			}
			for _, c := range rc.Requirements {
				err := r.api.Recipes.AddRequirement(rc.Index, c.Type, c.Logic, c.Index, c.Value)
				if err := r.sub(rc.Index, "requirement", err); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func initRelationships(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.Relationships(sel)
	if err != nil {
		return 0, err
	}
	for _, rel := range rows {
		err := r.row(rel.Index, func() error {
			return r.api.Relationships.Create(rel.NPC, rel.Index, rel.Name, rel.Whitelist, rel.Blacklist)
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func initGoals(r *run, sel content.Selection) (int, error) {
	rows, err := r.o.loader.Goals(sel)
	if err != nil {
		return 0, err
	}
	for _, g := range rows {
		err := r.row(g.Index, func() error {
			obj := g.Objective
			if err := r.api.Goals.Create(g.Index, g.Name, g.Description, g.Room, obj.Type, obj.Logic, obj.Index, obj.Value); err != nil {
				return err
			}
			for _, c := range g.Requirements {
				err := r.api.Goals.AddRequirement(g.Index, c.Type, c.Logic, c.Index, c.Value)
				if err := r.sub(g.Index, "requirement", err); err != nil {
					return err
				}
			}
			for _, rw := range g.Rewards {
				var err error
				if rw.IsDroptable() {
					err = r.api.Goals.AddRewardDroptable(g.Index, rw.Name, rw.Cutoff, rw.Keys, rw.Weights, rw.Value)
				} else {
					err = r.api.Goals.AddReward(g.Index, rw.Name, rw.Cutoff, rw.Type, rw.Index, rw.Value)
				}
				if err := r.sub(g.Index, "reward", err); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// initSetup seeds the gacha pool and creates the profile's development
// accounts.
func initSetup(r *run, _ content.Selection) (int, error) {
	p := r.o.profile
	n := 0
	if p.GachaSeed > 0 {
		seed := new(big.Int).SetUint64(p.GachaSeed)
		if err := r.row(0, func() error { return r.api.Setup.SeedGachaPool(seed) }); err != nil {
			return 0, err
		}
		n++
	}
	for i, acct := range p.Accounts {
		err := r.row(uint32(i), func() error {
			if err := r.api.Setup.CreateAccount(acct.Owner, acct.Operator, acct.Name); err != nil {
				return err
			}
			if acct.Pets > 0 {
				if err := r.api.Setup.MintPets(acct.Owner, new(big.Int).SetUint64(acct.Pets)); err != nil {
					return err
				}
			}
			if acct.HarvestNode > 0 {
				return r.api.Setup.StartHarvest(acct.Owner, acct.HarvestNode)
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}
