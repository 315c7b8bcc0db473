package admin

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AuthAPI manages world roles.
type AuthAPI struct{ a *API }

// GrantRole assigns role to account.
func (x AuthAPI) GrantRole(account, role string) error {
	if !common.IsHexAddress(account) {
		return fmt.Errorf("auth: invalid address %q", account)
	}
	if role == "" {
		return fmt.Errorf("auth: role is required")
	}
	return x.a.call(SystemAuthManageRole, account, role)
}

// ConfigAPI sets global config values.
type ConfigAPI struct{ a *API }

func (x ConfigAPI) Set(name string, value *big.Int) error {
	if err := requireName("config", name); err != nil {
		return err
	}
	return x.a.call(SystemConfigSet, name, value)
}

// SetArray writes up to eight packed uint32 values; missing slots are zero.
func (x ConfigAPI) SetArray(name string, values []uint32) error {
	if err := requireName("config", name); err != nil {
		return err
	}
	if len(values) > 8 {
		return fmt.Errorf("config %s: at most 8 values, got %d", name, len(values))
	}
	return x.a.call(SystemConfigSetArray, name, values)
}

func (x ConfigAPI) SetString(name, value string) error {
	if err := requireName("config", name); err != nil {
		return err
	}
	return x.a.call(SystemConfigSetString, name, value)
}

func (x ConfigAPI) SetAddress(name, value string) error {
	if err := requireName("config", name); err != nil {
		return err
	}
	return x.a.call(SystemConfigSetAddress, name, value)
}

// FactionsAPI registers factions.
type FactionsAPI struct{ a *API }

func (x FactionsAPI) Create(index uint32, name, description, media string) error {
	if err := requireName("faction", name); err != nil {
		return err
	}
	return x.a.call(SystemFactionCreate, index, name, description, media)
}

func (x FactionsAPI) Remove(index uint32) error {
	return x.a.call(SystemFactionRemove, index)
}

// RoomsAPI registers rooms and their gates.
type RoomsAPI struct{ a *API }

func (x RoomsAPI) Create(xPos, yPos, zPos int32, index uint32, name, description string, exits []uint32) error {
	if err := requireName("room", name); err != nil {
		return err
	}
	if exits == nil {
		exits = []uint32{}
	}
	return x.a.call(SystemRoomCreate, xPos, yPos, zPos, index, name, description, exits)
}

// CreateGate restricts entry into room from source (0 = any room).
func (x RoomsAPI) CreateGate(room, source, condIndex uint32, condValue *big.Int, logic, condType string) error {
	return x.a.call(SystemRoomCreateGate, room, source, condIndex, condValue, logic, condType)
}

func (x RoomsAPI) Remove(index uint32) error {
	return x.a.call(SystemRoomRemove, index)
}

// NodesAPI registers harvest nodes, their requirements and scavenge bars.
type NodesAPI struct{ a *API }

func (x NodesAPI) Create(index uint32, nodeType string, item, room uint32, name, description, affinity string) error {
	if err := requireName("node", name); err != nil {
		return err
	}
	return x.a.call(SystemNodeCreate, index, nodeType, item, room, name, description, affinity)
}

func (x NodesAPI) AddRequirement(node uint32, condType, logic string, condIndex uint32, value *big.Int) error {
	return x.a.call(SystemNodeAddRequirement, node, condType, logic, condIndex, value)
}

// AddScavenge attaches a scavenge bar with the given cost per roll.
func (x NodesAPI) AddScavenge(node uint32, cost *big.Int) error {
	return x.a.call(SystemNodeAddScavenge, node, cost)
}

func (x NodesAPI) AddScavengeReward(node uint32, rewardType string, rewardIndex uint32, value *big.Int) error {
	return x.a.call(SystemNodeAddScavengeRewardBasic, node, rewardType, rewardIndex, value)
}

func (x NodesAPI) AddScavengeDroptable(node uint32, keys []uint32, weights []*big.Int, value *big.Int) error {
	if err := requireDrops(fmt.Sprintf("node %d scavenge", node), keys, weights); err != nil {
		return err
	}
	return x.a.call(SystemNodeAddScavengeRewardDroptable, node, keys, weights, value)
}

func (x NodesAPI) Remove(index uint32) error {
	return x.a.call(SystemNodeRemove, index)
}

// ItemsAPI registers items with their effects, flags and use requirements.
type ItemsAPI struct{ a *API }

func (x ItemsAPI) CreateConsumable(index uint32, itemType, name, description, media string) error {
	if err := requireName("item", name); err != nil {
		return err
	}
	return x.a.call(SystemItemCreateConsumable, index, itemType, name, description, media)
}

func (x ItemsAPI) CreateLootbox(index uint32, name, description string, keys []uint32, weights []*big.Int, media string) error {
	if err := requireName("item", name); err != nil {
		return err
	}
	if err := requireDrops(fmt.Sprintf("lootbox %d", index), keys, weights); err != nil {
		return err
	}
	return x.a.call(SystemItemCreateLootbox, index, name, description, keys, weights, media)
}

func (x ItemsAPI) AddAllocation(item uint32, allocType string, allocIndex uint32, value int32) error {
	return x.a.call(SystemItemAddAlloc, item, allocType, allocIndex, value)
}

func (x ItemsAPI) AddFlag(item uint32, flag string) error {
	return x.a.call(SystemItemAddFlag, item, flag)
}

// AddRequirement gates the item's use case (e.g. USE, CRAFT) on a condition.
func (x ItemsAPI) AddRequirement(item uint32, use, condType, logic string, condIndex uint32, value *big.Int) error {
	return x.a.call(SystemItemAddRequirement, item, use, condType, logic, condIndex, value)
}

func (x ItemsAPI) Remove(index uint32) error {
	return x.a.call(SystemItemRemove, index)
}

// NPCsAPI registers merchants.
type NPCsAPI struct{ a *API }

func (x NPCsAPI) Create(index uint32, name string, room uint32) error {
	if err := requireName("npc", name); err != nil {
		return err
	}
	return x.a.call(SystemNPCCreate, index, name, room)
}

func (x NPCsAPI) Remove(index uint32) error {
	return x.a.call(SystemNPCRemove, index)
}

// ListingsAPI registers merchant listings, keyed on chain by (npc, item).
type ListingsAPI struct{ a *API }

func (x ListingsAPI) Create(npc, item, currency uint32, value int32) error {
	return x.a.call(SystemListingCreate, npc, item, currency, value)
}

func (x ListingsAPI) SetBuyPrice(npc, item uint32, pricing string, scale, decay int32) error {
	return x.a.call(SystemListingSetPriceBuy, npc, item, pricing, scale, decay)
}

func (x ListingsAPI) SetSellPrice(npc, item uint32, pricing string, scale int32) error {
	return x.a.call(SystemListingSetPriceSell, npc, item, pricing, scale)
}

func (x ListingsAPI) AddRequirement(npc, item uint32, condType, logic string, condIndex uint32, value *big.Int) error {
	return x.a.call(SystemListingAddRequirement, npc, item, condType, logic, condIndex, value)
}

func (x ListingsAPI) Remove(npc, item uint32) error {
	return x.a.call(SystemListingRemove, npc, item)
}

// AuctionsAPI registers item auctions, keyed on chain by item.
type AuctionsAPI struct{ a *API }

func (x AuctionsAPI) Create(item, currency, target uint32, period, decay, rate, limit int32) error {
	return x.a.call(SystemAuctionCreate, item, currency, target, period, decay, rate, limit)
}

func (x AuctionsAPI) Remove(item uint32) error {
	return x.a.call(SystemAuctionRemove, item)
}

// QuestsAPI registers quests with objectives, requirements and rewards.
type QuestsAPI struct{ a *API }

func (x QuestsAPI) Create(index uint32, title, description, resolution string, repeatable bool, duration *big.Int) error {
	if err := requireName("quest", title); err != nil {
		return err
	}
	return x.a.call(SystemQuestCreate, index, title, description, resolution, repeatable, duration)
}

func (x QuestsAPI) AddObjective(quest uint32, name, logic, condType string, condIndex uint32, value *big.Int) error {
	return x.a.call(SystemQuestAddObjective, quest, name, logic, condType, condIndex, value)
}

func (x QuestsAPI) AddRequirement(quest uint32, logic, condType string, condIndex uint32, value *big.Int) error {
	return x.a.call(SystemQuestAddRequirement, quest, logic, condType, condIndex, value)
}

func (x QuestsAPI) AddReward(quest uint32, rewardType string, rewardIndex uint32, value *big.Int) error {
	return x.a.call(SystemQuestAddRewardBasic, quest, rewardType, rewardIndex, value)
}

func (x QuestsAPI) AddRewardDroptable(quest uint32, keys []uint32, weights []*big.Int, value *big.Int) error {
	if err := requireDrops(fmt.Sprintf("quest %d reward", quest), keys, weights); err != nil {
		return err
	}
	return x.a.call(SystemQuestAddRewardDroptable, quest, keys, weights, value)
}

func (x QuestsAPI) Remove(index uint32) error {
	return x.a.call(SystemQuestRemove, index)
}

// SkillsAPI registers skills with bonuses and requirements.
type SkillsAPI struct{ a *API }

func (x SkillsAPI) Create(index uint32, forType, skillType, tree, name, description string, cost, maxLevel, tier uint32, media string) error {
	if err := requireName("skill", name); err != nil {
		return err
	}
	return x.a.call(SystemSkillCreate, index, forType, skillType, tree, name, description, cost, maxLevel, tier, media)
}

func (x SkillsAPI) AddBonus(skill uint32, bonusType string, value int64) error {
	return x.a.call(SystemSkillAddBonus, skill, bonusType, value)
}

func (x SkillsAPI) AddRequirement(skill uint32, condType, logic string, condIndex uint32, value *big.Int) error {
	return x.a.call(SystemSkillAddRequirement, skill, condType, logic, condIndex, value)
}

func (x SkillsAPI) Remove(index uint32) error {
	return x.a.call(SystemSkillRemove, index)
}

// TraitsAPI registers pet traits, keyed on chain by (index, type).
type TraitsAPI struct{ a *API }

func (x TraitsAPI) Create(index uint32, health, power, violence, harmony, slots int32, rarity uint32, affinity, name, traitType string) error {
	if err := requireName("trait", name); err != nil {
		return err
	}
	if traitType == "" {
		return fmt.Errorf("trait %d: type is required", index)
	}
	return x.a.call(SystemTraitCreate, index, health, power, violence, harmony, slots, rarity, affinity, name, traitType)
}

func (x TraitsAPI) Remove(index uint32, traitType string) error {
	return x.a.call(SystemTraitRemove, index, traitType)
}

// RecipesAPI registers crafting recipes.
type RecipesAPI struct{ a *API }

func (x RecipesAPI) Create(index uint32, inputs []uint32, inputAmounts []*big.Int, outputs []uint32, outputAmounts []*big.Int, experience *big.Int, stamina int32) error {
	if len(inputs) != len(inputAmounts) || len(outputs) != len(outputAmounts) {
		return fmt.Errorf("recipe %d: item and amount lists differ in length", index)
	}
	return x.a.call(SystemRecipeCreate, index, inputs, inputAmounts, outputs, outputAmounts, experience, stamina)
}

func (x RecipesAPI) AddRequirement(recipe uint32, condType, logic string, condIndex uint32, value *big.Int) error {
	return x.a.call(SystemRecipeAddRequirement, recipe, condType, logic, condIndex, value)
}

func (x RecipesAPI) Remove(index uint32) error {
	return x.a.call(SystemRecipeRemove, index)
}

// RelationshipsAPI registers NPC relationship flags, keyed by (npc, index).
type RelationshipsAPI struct{ a *API }

func (x RelationshipsAPI) Create(npc, index uint32, name string, whitelist, blacklist []uint32) error {
	if err := requireName("relationship", name); err != nil {
		return err
	}
	return x.a.call(SystemRelationshipCreate, npc, index, name, nonNil(whitelist), nonNil(blacklist))
}

func (x RelationshipsAPI) Remove(npc, index uint32) error {
	return x.a.call(SystemRelationshipRemove, npc, index)
}

// GoalsAPI registers community goals with requirements and tiered rewards.
type GoalsAPI struct{ a *API }

func (x GoalsAPI) Create(index uint32, name, description string, room uint32, objType, objLogic string, objIndex uint32, objValue uint64) error {
	if err := requireName("goal", name); err != nil {
		return err
	}
	return x.a.call(SystemGoalCreate, index, name, description, room, objType, objLogic, objIndex, objValue)
}

func (x GoalsAPI) AddRequirement(goal uint32, condType, logic string, condIndex uint32, value *big.Int) error {
	return x.a.call(SystemGoalAddRequirement, goal, condType, logic, condIndex, value)
}

// AddReward pays rewardType/rewardIndex to contributors at or above cutoff.
func (x GoalsAPI) AddReward(goal uint32, name string, cutoff *big.Int, rewardType string, rewardIndex uint32, value *big.Int) error {
	return x.a.call(SystemGoalAddRewardBasic, goal, name, cutoff, rewardType, rewardIndex, value)
}

func (x GoalsAPI) AddRewardDroptable(goal uint32, name string, cutoff *big.Int, keys []uint32, weights []*big.Int, value *big.Int) error {
	if err := requireDrops(fmt.Sprintf("goal %d reward", goal), keys, weights); err != nil {
		return err
	}
	return x.a.call(SystemGoalAddRewardDroptable, goal, name, cutoff, keys, weights, value)
}

func (x GoalsAPI) Remove(index uint32) error {
	return x.a.call(SystemGoalRemove, index)
}

// SetupAPI covers environment setup: the gacha seed pool and the local-only
// development accounts, pets and harvests.
type SetupAPI struct{ a *API }

// SeedGachaPool mints amount pets into the gacha pool.
func (x SetupAPI) SeedGachaPool(amount *big.Int) error {
	return x.a.call(SystemPetGachaSeed, amount)
}

func (x SetupAPI) CreateAccount(owner, operator, name string) error {
	if err := requireName("account", name); err != nil {
		return err
	}
	return x.a.call(SystemDevAccountCreate, owner, operator, name)
}

func (x SetupAPI) MintPets(owner string, amount *big.Int) error {
	return x.a.call(SystemDevPetMint, owner, amount)
}

func (x SetupAPI) StartHarvest(owner string, node uint32) error {
	return x.a.call(SystemDevHarvestStart, owner, node)
}

func nonNil(s []uint32) []uint32 {
	if s == nil {
		return []uint32{}
	}
	return s
}
