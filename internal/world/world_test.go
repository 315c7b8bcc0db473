package world

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/roach88/worldsmith/internal/admin"
	"github.com/roach88/worldsmith/internal/content"
	"github.com/roach88/worldsmith/internal/encoder"
	"github.com/roach88/worldsmith/internal/ir"
	"github.com/roach88/worldsmith/internal/settings"
	"github.com/roach88/worldsmith/internal/testutil"
)

// plainProfile deploys every status with fixtures and nothing else.
func plainProfile() settings.Profile {
	return settings.Profile{
		Statuses:      []string{"Ready", "Ingame", "For Implementation", "Revise Deployment"},
		FixtureQuests: true,
	}
}

func newOrchestrator(t *testing.T, tables map[string]string, p settings.Profile, opts ...Option) (*Orchestrator, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	loader, err := content.Open(testutil.WriteTables(t, tables), logger)
	require.NoError(t, err)
	o, err := New(loader, p, append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return o, &logs
}

type deployedSet map[string]bool

func (d deployedSet) IsDeployed(_ context.Context, category string, index uint32) (bool, error) {
	return d[fmt.Sprintf("%s/%d", category, index)], nil
}

type countingRecorder struct {
	loaded, skipped, calls, missed map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		loaded:  map[string]int{},
		skipped: map[string]int{},
		calls:   map[string]int{},
		missed:  map[string]int{},
	}
}

func (c *countingRecorder) RowsLoaded(cat string, n int)   { c.loaded[cat] += n }
func (c *countingRecorder) RowsSkipped(cat string, n int)  { c.skipped[cat] += n }
func (c *countingRecorder) CallsEmitted(cat string, n int) { c.calls[cat] += n }
func (c *countingRecorder) DeleteMissed(cat string)        { c.missed[cat]++ }

func TestInitAll_EmitsCategoriesInOrder(t *testing.T) {
	o, _ := newOrchestrator(t, testutil.WorldTables(), plainProfile())

	res, err := o.InitAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		admin.SystemConfigSet,
		admin.SystemConfigSetArray,
		admin.SystemConfigSetString,
		admin.SystemConfigSetAddress,
		admin.SystemFactionCreate,
		admin.SystemRoomCreate,
		admin.SystemRoomCreate,
		admin.SystemRoomCreateGate,
		admin.SystemNodeCreate,
		admin.SystemNodeAddRequirement,
		admin.SystemNodeAddScavenge,
		admin.SystemNodeAddScavengeRewardBasic,
		admin.SystemNodeAddScavengeRewardDroptable,
		admin.SystemNodeCreate,
		admin.SystemItemCreateConsumable,
		admin.SystemItemAddAlloc,
		admin.SystemItemAddFlag,
		admin.SystemItemAddRequirement,
		admin.SystemItemCreateLootbox,
		admin.SystemNPCCreate,
		admin.SystemListingCreate,
		admin.SystemListingSetPriceBuy,
		admin.SystemListingSetPriceSell,
		admin.SystemListingAddRequirement,
		admin.SystemAuctionCreate,
		admin.SystemQuestCreate,
		admin.SystemQuestAddObjective,
		admin.SystemQuestAddRewardBasic,
		admin.SystemQuestCreate,
		admin.SystemQuestAddObjective,
		admin.SystemQuestAddRequirement,
		admin.SystemQuestAddRewardDroptable,
		admin.SystemQuestCreate,
		admin.SystemQuestAddObjective,
		admin.SystemSkillCreate,
		admin.SystemSkillAddBonus,
		admin.SystemSkillAddRequirement,
		admin.SystemTraitCreate,
		admin.SystemRecipeCreate,
		admin.SystemRelationshipCreate,
		admin.SystemGoalCreate,
		admin.SystemGoalAddRequirement,
		admin.SystemGoalAddRewardBasic,
		admin.SystemGoalAddRewardDroptable,
	}, res.Buffer.Systems())

	assert.Equal(t, 1, res.RowErrors, "item 1003 has an unknown type")
	assert.Contains(t, res.Created, Ref{Category: Quests, Index: 9001})
	assert.NotContains(t, res.Created, Ref{Category: Rooms, Index: 3})
	assert.NotContains(t, res.Created, Ref{Category: Items, Index: 1003})
	assert.Empty(t, res.Deleted)
}

func TestInitAll_RoomExitsFromTable(t *testing.T) {
	o, _ := newOrchestrator(t, testutil.WorldTables(), plainProfile())

	res, err := o.InitAll(context.Background())
	require.NoError(t, err)

	var rooms []ir.SystemCall
	for _, c := range res.Buffer.Calls() {
		if c.SystemID == admin.SystemRoomCreate {
			rooms = append(rooms, c)
		}
	}
	require.Len(t, rooms, 2)

	want1, err := admin.DefaultRegistry.Encode(admin.SystemRoomCreate, ir.DefaultFunction,
		int32(1), int32(0), int32(0), uint32(1), "Misty Riverside", "A misty riverside.", []uint32{2, 3})
	require.NoError(t, err)
	want2, err := admin.DefaultRegistry.Encode(admin.SystemRoomCreate, ir.DefaultFunction,
		int32(2), int32(0), int32(0), uint32(2), "Tunnel", "A dark tunnel.", []uint32{1})
	require.NoError(t, err)
	assert.Equal(t, ir.Payload(want1), rooms[0].Encoded)
	assert.Equal(t, ir.Payload(want2), rooms[1].Encoded)
}

func TestInitAll_IsDeterministic(t *testing.T) {
	dir := testutil.WorldContent(t)
	build := func() string {
		loader, err := content.Open(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
		require.NoError(t, err)
		o, err := New(loader, plainProfile(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		require.NoError(t, err)
		res, err := o.InitAll(context.Background())
		require.NoError(t, err)
		return ir.MustDigest(res.Buffer)
	}
	assert.Equal(t, build(), build())
}

func TestInitAll_ProductionSkipsUnfinishedAndFixtures(t *testing.T) {
	p, err := settings.Default().Profile(settings.ModeProduction)
	require.NoError(t, err)
	p.RatePerSecond = 0
	o, _ := newOrchestrator(t, testutil.WorldTables(), p)

	res, err := o.InitAll(context.Background())
	require.NoError(t, err)

	assert.Contains(t, res.Created, Ref{Category: Quests, Index: 1})
	assert.NotContains(t, res.Created, Ref{Category: Quests, Index: 7})
	assert.NotContains(t, res.Created, Ref{Category: Quests, Index: 9001})

	systems := res.Buffer.Systems()
	assert.Equal(t, admin.SystemPetGachaSeed, systems[len(systems)-1])
	assert.NotContains(t, systems, admin.SystemDevAccountCreate)
}

func TestInitAll_LocalProfileAddsSetupAndOverrides(t *testing.T) {
	p, err := settings.Default().Profile(settings.ModeLocal)
	require.NoError(t, err)
	o, _ := newOrchestrator(t, testutil.WorldTables(), p)

	res, err := o.InitAll(context.Background())
	require.NoError(t, err)
	systems := res.Buffer.Systems()

	assert.Equal(t, admin.SystemAuthManageRole, systems[0])
	assert.Equal(t, []string{
		admin.SystemPetGachaSeed,
		admin.SystemDevAccountCreate,
		admin.SystemDevPetMint,
		admin.SystemDevHarvestStart,
	}, systems[len(systems)-4:])

	// Table rows first, then one config.set per override.
	configSets := 0
	for _, s := range systems {
		if s == admin.SystemConfigSet {
			configSets++
		}
	}
	assert.Equal(t, 1+len(p.ConfigOverrides), configSets)
}

func TestScopedInit_IgnoresStatus(t *testing.T) {
	o, logs := newOrchestrator(t, testutil.WorldTables(), plainProfile())

	res, err := o.Execute(context.Background(), Scoped(ActionInit, Rooms, 3, 42))
	require.NoError(t, err)

	assert.Equal(t, []string{admin.SystemRoomCreate}, res.Buffer.Systems())
	assert.Equal(t, []Ref{{Category: Rooms, Index: 3}}, res.Created)
	assert.Contains(t, logs.String(), "no content row for index")
	assert.Contains(t, logs.String(), "index=42")
}

func TestRevise_MissingQuestLogsOnceAndRecreates(t *testing.T) {
	o, logs := newOrchestrator(t, testutil.WorldTables(), plainProfile(), WithDeployed(deployedSet{}))

	res, err := o.Revise(context.Background(), Quests, 7)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(logs.String(), "could not delete"))
	assert.Contains(t, logs.String(), "could not delete quest 7")
	assert.Equal(t, []Ref{{Category: Quests, Index: 7}}, res.Missed)
	assert.Empty(t, res.Deleted)
	assert.Equal(t, []string{
		admin.SystemQuestCreate,
		admin.SystemQuestAddObjective,
		admin.SystemQuestAddRequirement,
		admin.SystemQuestAddRewardDroptable,
	}, res.Buffer.Systems())
}

func TestRevise_EqualsDeleteThenInit(t *testing.T) {
	o, _ := newOrchestrator(t, testutil.WorldTables(), plainProfile())
	ctx := context.Background()

	revised, err := o.Revise(ctx, Quests, 1, 7)
	require.NoError(t, err)
	deleted, err := o.Execute(ctx, Scoped(ActionDelete, Quests, 1, 7))
	require.NoError(t, err)
	created, err := o.Execute(ctx, Scoped(ActionInit, Quests, 1, 7))
	require.NoError(t, err)

	want := ir.NewCallBuffer()
	want.Extend(deleted.Buffer)
	want.Extend(created.Buffer)
	assert.Equal(t, want.Calls(), revised.Buffer.Calls())
	assert.Equal(t, []string{admin.SystemQuestRemove, admin.SystemQuestRemove}, deleted.Buffer.Systems())
	assert.Equal(t, deleted.Deleted, revised.Deleted)
	assert.Equal(t, created.Created, revised.Created)
}

func TestDelete_KeyedCategoriesUseContentKeys(t *testing.T) {
	o, logs := newOrchestrator(t, testutil.WorldTables(), plainProfile())

	res, err := o.Execute(context.Background(), Scoped(ActionDelete, Listings, 1, 99))
	require.NoError(t, err)

	require.Equal(t, 1, res.Buffer.Len())
	want, err := admin.DefaultRegistry.Encode(admin.SystemListingRemove, ir.DefaultFunction, uint32(1), uint32(1001))
	require.NoError(t, err)
	assert.Equal(t, ir.Payload(want), res.Buffer.At(0).Encoded)
	assert.Equal(t, []Ref{{Category: Listings, Index: 99}}, res.Missed)
	assert.Contains(t, logs.String(), "could not delete listing 99")
}

func TestDelete_TraitsAndRelationships(t *testing.T) {
	o, _ := newOrchestrator(t, testutil.WorldTables(), plainProfile())
	ctx := context.Background()

	res, err := o.Execute(ctx, Scoped(ActionDelete, Traits, 1))
	require.NoError(t, err)
	want, err := admin.DefaultRegistry.Encode(admin.SystemTraitRemove, ir.DefaultFunction, uint32(1), "BODY")
	require.NoError(t, err)
	assert.Equal(t, ir.Payload(want), res.Buffer.At(0).Encoded)

	res, err = o.Execute(ctx, Scoped(ActionDelete, Relationships, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{admin.SystemRelationshipRemove}, res.Buffer.Systems())
}

func TestExecute_UnsupportedPlans(t *testing.T) {
	o, _ := newOrchestrator(t, testutil.WorldTables(), plainProfile())
	ctx := context.Background()

	_, err := o.Execute(ctx, Scoped(ActionDelete, Config, 1))
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = o.Execute(ctx, Scoped(ActionRevise, Config, 1))
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = o.Execute(ctx, Scoped(ActionInit, Auth, 1))
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = o.Execute(ctx, Plan{Action: ActionDelete, Full: true})
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = o.Execute(ctx, Scoped(ActionInit, Rooms))
	assert.Error(t, err)
}

func TestExecute_ScopedConfigInitSkipsOverrides(t *testing.T) {
	p := plainProfile()
	p.ConfigOverrides = []settings.ConfigOverride{{Name: "HARVEST_COOLDOWN", Value: 1}}
	o, _ := newOrchestrator(t, testutil.WorldTables(), p)

	res, err := o.Execute(context.Background(), Scoped(ActionInit, Config, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{admin.SystemConfigSet}, res.Buffer.Systems())
}

func TestInitAll_RowErrorThreshold(t *testing.T) {
	tables := testutil.WorldTables()
	tables["items.csv"] += "1004,Other,ALSO_WEIRD,?,,,,,Ready\n"

	p := plainProfile()
	p.MaxRowErrors = 1
	o, _ := newOrchestrator(t, tables, p)

	_, err := o.InitAll(context.Background())
	assert.ErrorIs(t, err, ErrTooManyRowErrors)

	p.MaxRowErrors = 2
	o, _ = newOrchestrator(t, tables, p)
	res, err := o.InitAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowErrors)
}

func TestInitAll_OversizeRequirementValueSkipsSubEntity(t *testing.T) {
	tables := testutil.WorldTables()
	huge := new(big.Int).Lsh(big.NewInt(1), 256).String()
	tables["node_requirements.csv"] = "Node,Type,Logic,Index,Value\n1,LEVEL,CURR_MIN,0," + huge + "\n"
	o, logs := newOrchestrator(t, tables, plainProfile())

	res, err := o.InitAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowErrors)
	assert.NotContains(t, res.Buffer.Systems(), admin.SystemNodeAddRequirement)
	assert.Contains(t, res.Created, Ref{Category: Nodes, Index: 1})
	assert.Contains(t, logs.String(), "column=Value")
}

func TestFatal(t *testing.T) {
	sig := encoder.Signature{System: admin.SystemGoalCreate, Function: "executeTyped"}
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"out of range argument", &encoder.ArgError{Signature: sig, Position: 7, Type: "uint64", Err: fmt.Errorf("%w: value 2^64 overflows uint64", encoder.ErrOutOfRange)}, false},
		{"wrong argument kind", &encoder.ArgError{Signature: sig, Position: 1, Type: "string", Err: errors.New("want string, got int")}, true},
		{"unknown system", fmt.Errorf("build: %w", encoder.ErrNoSignature), true},
		{"cancelled", context.Canceled, true},
		{"content", &content.RowError{Table: "goals.csv", Line: 2, Column: "Room", Reason: "not a number"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fatal(tt.err))
		})
	}
}

func TestInitAll_WarnsOnCategoryWithNoValidRows(t *testing.T) {
	tables := testutil.WorldTables()
	tables["npcs.csv"] = "Index,Name,Room,Status\n1,,1,Ready\n"
	o, logs := newOrchestrator(t, tables, plainProfile())

	_, err := o.InitAll(context.Background())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "category has no valid rows")
	assert.Contains(t, logs.String(), "category=npcs")
}

func TestInitAll_MissingTableFails(t *testing.T) {
	tables := testutil.WorldTables()
	delete(tables, "goals.csv")
	o, _ := newOrchestrator(t, tables, plainProfile())

	_, err := o.InitAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init goals")
}

func TestInitAll_RecorderCounts(t *testing.T) {
	rec := newCountingRecorder()
	o, _ := newOrchestrator(t, testutil.WorldTables(), plainProfile(), WithRecorder(rec))

	res, err := o.InitAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, rec.loaded["rooms"])
	assert.Equal(t, 3, rec.calls["rooms"])
	assert.Equal(t, 1, rec.skipped["items"])
	assert.Equal(t, 3, rec.loaded["quests"])

	total := 0
	for _, n := range rec.calls {
		total += n
	}
	assert.Equal(t, res.Buffer.Len(), total)
}

func TestRevise_RecordsDeleteMisses(t *testing.T) {
	rec := newCountingRecorder()
	deployed := deployedSet{"quests/1": true}
	o, _ := newOrchestrator(t, testutil.WorldTables(), plainProfile(), WithDeployed(deployed), WithRecorder(rec))

	res, err := o.Revise(context.Background(), Quests, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.missed["quests"])
	assert.Equal(t, []Ref{{Category: Quests, Index: 1}}, res.Deleted)
	assert.Equal(t, admin.SystemQuestRemove, res.Buffer.At(0).SystemID)
	assert.Equal(t, admin.SystemQuestCreate, res.Buffer.At(1).SystemID)
}

func TestExecute_LimiterHonorsCancellation(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(1), 1)
	o, _ := newOrchestrator(t, testutil.WorldTables(), plainProfile(), WithLimiter(limiter))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.InitAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecute_LiteralMode(t *testing.T) {
	o, _ := newOrchestrator(t, testutil.WorldTables(), plainProfile(), WithAdminOptions(admin.WithLiteral()))

	res, err := o.Execute(context.Background(), Scoped(ActionInit, NPCs, 1))
	require.NoError(t, err)
	require.Equal(t, 1, res.Buffer.Len())
	assert.Equal(t, `1, "Mina", 1`, res.Buffer.At(0).Literal)
}

func TestNew_RejectsBadProfile(t *testing.T) {
	loader := content.NewLoader(nil, nil)
	_, err := New(loader, settings.Profile{Statuses: []string{"Shipped"}})
	assert.Error(t, err)
}

func TestNew_ProfileRateBuildsLimiter(t *testing.T) {
	p := plainProfile()
	p.RatePerSecond = 4
	o, err := New(content.NewLoader(nil, nil), p)
	require.NoError(t, err)
	require.NotNil(t, o.limiter)
	assert.Equal(t, rate.Limit(4), o.limiter.Limit())
}

func TestSetup_SkipsAccountWithBadName(t *testing.T) {
	p := plainProfile()
	p.GachaSeed = 3
	p.Accounts = []settings.Account{{
		Owner:    "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		Operator: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	}}
	o, logs := newOrchestrator(t, testutil.WorldTables(), p)

	res, err := o.InitAll(context.Background())
	require.NoError(t, err)
	systems := res.Buffer.Systems()
	assert.Equal(t, admin.SystemPetGachaSeed, systems[len(systems)-1])
	assert.Contains(t, logs.String(), "account: name is required")

	want, err := admin.DefaultRegistry.Encode(admin.SystemPetGachaSeed, ir.DefaultFunction, big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, ir.Payload(want), res.Buffer.At(res.Buffer.Len()-1).Encoded)
}
