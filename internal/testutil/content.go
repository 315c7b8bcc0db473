package testutil

import (
	"maps"
	"os"
	"path/filepath"
	"testing"
)

// worldTables is a small but complete content tree: every category has at
// least one enabled row and most have sub-table rows. A few rows are
// deliberately excluded or malformed:
//   - config 5 and room 3 have a status outside the allowed set
//   - item 1003 has an unknown type and is skipped as a row error
var worldTables = map[string]string{
	"config.csv": `Index,Name,Type,Value,Status
1,KAMI_STANDARD_COOLDOWN,uint,180,Ready
2,KAMI_HARVEST_BOUNTY,array,"1,2,3",Ingame
3,GAME_NAME,string,Worldsmith,Ready
4,TREASURY,address,0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed,Ready
5,DEBUG_MODE,bool,true,Deprecated
`,
	"factions.csv": `Index,Name,Description,Media,Status
1,Agency,The agency.,agency.png,Ready
`,
	"rooms.csv": `Index,Name,X,Y,Z,Exits,Description,Status
1,Misty Riverside,1,0,0,"2,3",A misty riverside.,Ready
2,Tunnel,2,0,0,1,A dark tunnel.,Ingame
3,Vault,3,0,0,,Sealed.,Disabled
`,
	"room_gates.csv": `Room,Source,Type,Logic,Index,Value,Goal
2,1,GOAL,COMPLETE,0,,1
`,
	"nodes.csv": `Index,Name,Type,Item,Room,Affinity,Description,Scav Cost,Status
1,Riverside Node,HARVEST,0,1,NORMAL,Harvest here.,100,Ready
2,Tunnel Node,HARVEST,0,2,SCRAP,No scavenging.,0,Ready
`,
	"node_requirements.csv": `Node,Type,Logic,Index,Value
1,LEVEL,CURR_MIN,0,5
`,
	"node_scavenge.csv": `Node,Type,Index,Value,Keys,Weights
1,ITEM,1001,1,,
1,ITEM_DROPTABLE,,1,"1001,1002","9,1"
`,
	"items.csv": `Index,Name,Type,Description,Media,Effects,Droptable,Flags,Status
1001,Gum,FOOD,Chewy.,gum.png,HEAL_SMALL,,TRADEABLE,Ready
1002,Box,LOOTBOX,A box.,box.png,,BASIC_BOX,,Ready
1003,Mystery,WEIRD,?,,,,,Ready
`,
	"allocations.csv": `Name,Type,Index,Value
HEAL_SMALL,STAT_HEALTH,0,25
`,
	"droptables.csv": `Name,Keys,Weights
BASIC_BOX,"1001,1002","3,1"
`,
	"item_requirements.csv": `Item,Use,Type,Logic,Index,Value
1001,USE,LEVEL,CURR_MIN,0,1
`,
	"npcs.csv": `Index,Name,Room,Status
1,Mina,1,Ready
`,
	"listings.csv": `Index,NPC,Item,Currency,Value,Buy Pricing,Buy Scale,Buy Decay,Sell Pricing,Sell Scale,Status
1,1,1001,1,10,FIXED,0,0,SCALED,500,Ready
`,
	"listing_requirements.csv": `Listing,Type,Logic,Index,Value
1,LEVEL,CURR_MIN,0,3
`,
	"auctions.csv": `Index,Item,Currency,Target,Period,Decay,Rate,Max,Status
1,1002,1,100,86400,10,5,1000,Ready
`,
	"quests.csv": `Index,Title,Description,Resolution,Repeatable,Duration,Status
1,Welcome,Say hi.,Hi!,false,0,Ready
7,Daily,Do the daily.,Done.,true,86400,For Implementation
`,
	"quest_objectives.csv": `Quest,Name,Logic,Type,Index,Value
1,Visit the river,BOOL_IS,ROOM,1,0
7,Harvest,CURR_MIN,HARVEST,0,10
`,
	"quest_requirements.csv": `Quest,Logic,Type,Index,Value
7,BOOL_IS,QUEST,1,0
`,
	"quest_rewards.csv": `Quest,Type,Index,Value,Keys,Weights
1,ITEM,1001,3,,
7,ITEM_DROPTABLE,,1,"1001,1002","1,1"
`,
	"skills.csv": `Index,Name,For,Type,Tree,Tier,Cost,Max,Description,Media,Status
1,Vigor,KAMI,STAT,ENLIGHTENED,1,1,5,More health.,vigor.png,Ready
`,
	"skill_bonuses.csv": `Skill,Type,Value
1,STAT_HEALTH,10
`,
	"skill_requirements.csv": `Skill,Type,Logic,Index,Value
1,LEVEL,CURR_MIN,0,2
`,
	"traits.csv": `Index,Name,Type,Health,Power,Violence,Harmony,Slots,Rarity,Affinity,Status
1,Plain Body,BODY,50,10,10,10,0,9,NORMAL,Ready
`,
	"recipes.csv": `Index,Inputs,Input Amounts,Outputs,Output Amounts,Experience,Stamina,Status
1,1001,2,1002,1,10,5,Ready
`,
	"relationships.csv": `Index,NPC,Name,Whitelist,Blacklist,Status
1,1,Friend,,,Ready
`,
	"goals.csv": `Index,Name,Description,Room,Objective Type,Objective Logic,Objective Index,Objective Value,Status
1,Open the Tunnel,Donate gum.,1,ITEM,CURR_MIN,1001,1000,Ready
`,
	"goal_requirements.csv": `Goal,Type,Logic,Index,Value
1,LEVEL,CURR_MIN,0,1
`,
	"goal_rewards.csv": `Goal,Name,Cutoff,Type,Index,Value,Keys,Weights
1,Bronze,10,ITEM,1001,1,,
1,Gold,100,ITEM_DROPTABLE,,1,"1001,1002","1,1"
`,
	"fixtures/quests.csv": `Index,Title,Description,Resolution,Repeatable,Duration,Status
9001,Fixture Quest,Test only.,Ok.,false,0,Ready
`,
	"fixtures/quest_objectives.csv": `Quest,Name,Logic,Type,Index,Value
9001,Say hello,BOOL_IS,NPC,1,0
`,
}

// WorldTables returns a fresh copy of the fixture content tree, keyed by
// path relative to the content root. Callers may edit or delete entries
// before writing.
func WorldTables() map[string]string {
	return maps.Clone(worldTables)
}

// WriteTables writes tables under a new temp directory and returns it.
func WriteTables(t testing.TB, tables map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range tables {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return dir
}

// WorldContent writes the full fixture content tree and returns its root.
func WorldContent(t testing.TB) string {
	t.Helper()
	return WriteTables(t, worldTables)
}
