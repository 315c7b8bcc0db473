package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/worldsmith/internal/codegen"
	"github.com/roach88/worldsmith/internal/deploy"
	"github.com/roach88/worldsmith/internal/store"
	"github.com/roach88/worldsmith/internal/testutil"
)

const reportingForge = `echo "$@" > args.txt
printf '{"world":"` + testWorld + `","startBlock":7}' > "$WORLDSMITH_REPORT"
`

var localEnv = map[string]string{
	"LOCAL_RPC":      "http://127.0.0.1:8545",
	"LOCAL_PRIV_KEY": "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
}

func withWorld(vars map[string]string) map[string]string {
	out := map[string]string{"LOCAL_WORLD_ADDRESS": testWorld}
	for k, v := range vars {
		out[k] = v
	}
	return out
}

type deployFixture struct {
	content  string
	settings string
	project  string
	db       string
}

func newDeployFixture(t *testing.T, settingsBody string) deployFixture {
	t.Helper()
	return deployFixture{
		content:  testutil.WorldContent(t),
		settings: settingsFile(t, settingsBody),
		project:  t.TempDir(),
		db:       filepath.Join(t.TempDir(), "ledger.db"),
	}
}

func (f deployFixture) args(forge string, extra ...string) []string {
	args := []string{
		"--content", f.content,
		"--settings", f.settings,
		"--config", deployConfigDir,
		"--project", f.project,
		"--forge", forge,
		"--db", f.db,
	}
	return append(extra, args...)
}

func (f deployFixture) ledger(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(f.db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDeploy_FullInitRecordsRun(t *testing.T) {
	f := newDeployFixture(t, plainSettings)
	forge := fakeForge(t, reportingForge)
	opts := &DeployOptions{RootOptions: &RootOptions{Format: "json"}, Getenv: envOf(localEnv)}

	out, _, err := execute(t, newDeployCommand(opts), f.args(forge)...)
	require.NoError(t, err)

	summary := decodeOK[DeploySummary](t, out)
	assert.Equal(t, "full init", summary.Plan)
	assert.Equal(t, 44, summary.Calls)
	assert.Equal(t, testWorldChecksum, summary.World)
	assert.Equal(t, "7", summary.StartBlock)
	assert.Equal(t, "report", summary.Source)
	assert.NotEmpty(t, summary.RunID)

	assert.FileExists(t, filepath.Join(f.project, filepath.FromSlash(codegen.PathInitScript)))
	assert.FileExists(t, filepath.Join(f.project, filepath.FromSlash(codegen.PathImports)))
	assert.NoFileExists(t, filepath.Join(f.project, filepath.FromSlash(codegen.PathSystemsTS)))

	args, err := os.ReadFile(filepath.Join(f.project, "args.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(args), "script script/InitWorld.s.sol --broadcast --rpc-url http://127.0.0.1:8545")

	ledger := f.ledger(t)
	run, err := ledger.GetRun(context.Background(), summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusApplied, run.Status)
	assert.Equal(t, testWorldChecksum, run.World)
	assert.Equal(t, summary.Digest, run.Digest)

	quests, err := ledger.DeployedIndices(context.Background(), testWorld, "quests")
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 7, 9001}, quests)
}

func TestDeploy_ReviseAgainstDeployedWorld(t *testing.T) {
	f := newDeployFixture(t, plainSettings)
	forge := fakeForge(t, reportingForge)

	_, _, err := execute(t, newDeployCommand(&DeployOptions{
		RootOptions: &RootOptions{Format: "json"},
		Getenv:      envOf(localEnv),
	}), f.args(forge)...)
	require.NoError(t, err)

	out, _, err := execute(t, newScopedCommand(&DeployOptions{
		RootOptions: &RootOptions{Format: "json"},
		Getenv:      envOf(withWorld(localEnv)),
	}, "revise"), f.args(forge, "quests", "7")...)
	require.NoError(t, err)

	summary := decodeOK[DeploySummary](t, out)
	assert.Equal(t, "revise quests [7]", summary.Plan)
	assert.Equal(t, 5, summary.Calls)
	assert.Empty(t, summary.Missed)

	ledger := f.ledger(t)
	created, deleted, err := ledger.RunRefs(context.Background(), summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, []store.Ref{{Category: "quests", Index: 7}}, deleted)
	assert.Equal(t, []store.Ref{{Category: "quests", Index: 7}}, created)

	quests, err := ledger.DeployedIndices(context.Background(), testWorld, "quests")
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 7, 9001}, quests)

	pending, err := ledger.PendingRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDeploy_NonzeroExitMarksRunFailed(t *testing.T) {
	f := newDeployFixture(t, plainSettings)
	forge := fakeForge(t, `echo "Error: revert" >&2
exit 3
`)
	opts := &DeployOptions{RootOptions: &RootOptions{Format: "json"}, Getenv: envOf(localEnv)}

	out, _, err := execute(t, newDeployCommand(opts), f.args(forge)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, ErrCodeDeployExit, decodeError(t, out).Code)

	ledger := f.ledger(t)
	runs, err := ledger.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.StatusFailed, runs[0].Status)
	require.NotNil(t, runs[0].ExitCode)
	assert.Equal(t, 3, *runs[0].ExitCode)

	pending, err := ledger.PendingRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDeploy_StreamsScriptOutputWithoutVerbose(t *testing.T) {
	f := newDeployFixture(t, plainSettings)
	forge := fakeForge(t, `echo "Script ran successfully."
echo "Gas used: 1234567"
`+reportingForge)
	opts := &DeployOptions{RootOptions: &RootOptions{Format: "json"}, Getenv: envOf(localEnv)}

	out, errOut, err := execute(t, newDeployCommand(opts), f.args(forge)...)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Script ran successfully.")
	assert.Contains(t, errOut, "Gas used: 1234567")
	assert.NotContains(t, out, "Gas used")
	assert.Equal(t, "report", decodeOK[DeploySummary](t, out).Source)
}

func TestDeploy_TextOutput(t *testing.T) {
	f := newDeployFixture(t, plainSettings)
	forge := fakeForge(t, reportingForge)
	opts := &DeployOptions{RootOptions: &RootOptions{Format: "text"}, Getenv: envOf(localEnv)}

	out, _, err := execute(t, newScopedCommand(opts, "init"), f.args(forge, "rooms", "1")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Deployed init rooms [1]:")
	assert.Contains(t, out, "world:       "+testWorldChecksum)
	assert.Contains(t, out, "start block: 7")
}

func TestDeploy_MissingEnvironment(t *testing.T) {
	f := newDeployFixture(t, plainSettings)
	forge := fakeForge(t, reportingForge)
	opts := &DeployOptions{
		RootOptions: &RootOptions{Format: "json"},
		Getenv:      envOf(map[string]string{"LOCAL_RPC": "http://127.0.0.1:8545"}),
	}

	out, _, err := execute(t, newDeployCommand(opts), f.args(forge)...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	cliErr := decodeError(t, out)
	assert.Equal(t, ErrCodeEnvironment, cliErr.Code)
	assert.Contains(t, cliErr.Message, "LOCAL_PRIV_KEY")
	assert.NoFileExists(t, filepath.Join(f.project, "args.txt"))
}

func TestDeploy_InvalidScope(t *testing.T) {
	f := newDeployFixture(t, plainSettings)
	forge := fakeForge(t, reportingForge)
	opts := &DeployOptions{RootOptions: &RootOptions{Format: "json"}, Getenv: envOf(localEnv)}

	out, _, err := execute(t, newScopedCommand(opts, "delete"), f.args(forge, "dragons", "1")...)
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidArgs, decodeError(t, out).Code)
}

type recordingChain struct {
	mu    sync.Mutex
	calls []string
}

func (c *recordingChain) record(call string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	return nil
}

func (c *recordingChain) Automine(ctx context.Context) error { return c.record("automine") }

func (c *recordingChain) IntervalMining(ctx context.Context, interval time.Duration) error {
	return c.record("interval " + interval.String())
}

func (c *recordingChain) LatestBlockTime(ctx context.Context) (time.Time, error) {
	return time.Unix(1_800_000_000, 0), c.record("latest")
}

func (c *recordingChain) SetNextBlockTimestamp(ctx context.Context, ts time.Time) error {
	return c.record(fmt.Sprintf("timestamp %d", ts.Unix()))
}

func TestDeploy_AutomineWrapsRun(t *testing.T) {
	f := newDeployFixture(t, plainSettings+"    automine: true\n    block_time: 2\n")
	forge := fakeForge(t, reportingForge)

	chain := &recordingChain{}
	closed := false
	opts := &DeployOptions{
		RootOptions: &RootOptions{Format: "json"},
		Getenv:      envOf(localEnv),
		DialChain: func(ctx context.Context, url string) (deploy.ChainControl, func(), error) {
			assert.Equal(t, "http://127.0.0.1:8545", url)
			return chain, func() { closed = true }, nil
		},
	}

	_, _, err := execute(t, newScopedCommand(opts, "init"), f.args(forge, "rooms", "1,2")...)
	require.NoError(t, err)
	assert.Equal(t, []string{"automine", "interval 2s"}, chain.calls)
	assert.True(t, closed)
}

func TestDeploy_LocalDefaultsWarpPastChainHead(t *testing.T) {
	f := newDeployFixture(t, "profiles: {}\n")
	forge := fakeForge(t, reportingForge)

	chain := &recordingChain{}
	opts := &DeployOptions{
		RootOptions: &RootOptions{Format: "json"},
		Getenv:      envOf(localEnv),
		DialChain: func(ctx context.Context, url string) (deploy.ChainControl, func(), error) {
			return chain, func() {}, nil
		},
	}

	out, _, err := execute(t, newScopedCommand(opts, "init"), f.args(forge, "rooms", "1")...)
	require.NoError(t, err)
	assert.Equal(t, []string{"automine", "latest", "timestamp 1800000001", "interval 1s"}, chain.calls)

	run, err := f.ledger(t).GetRun(context.Background(), decodeOK[DeploySummary](t, out).RunID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusApplied, run.Status)
}
