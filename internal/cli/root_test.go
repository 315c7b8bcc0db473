package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/worldsmith/internal/ir"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "worldsmith", cmd.Use)
	assert.Equal(t, ir.GeneratorVersion, cmd.Version)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"ids", "compile", "generate", "deploy", "init", "revise", "delete", "status", "verify"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, NewRootCommand(), "--format", "xml", "ids", "system.room.create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestCompileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	compileCmd, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)

	outputFlag := compileCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)

	modeFlag := compileCmd.Flags().Lookup("mode")
	require.NotNil(t, modeFlag)
	assert.Equal(t, "local", modeFlag.DefValue)
}

func TestDeployCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"deploy", "init", "revise", "delete"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			for _, flag := range []string{"content", "config", "out", "project", "forge", "mode", "settings", "db", "metrics-file"} {
				assert.NotNil(t, sub.Flags().Lookup(flag), "%s --%s", name, flag)
			}
			assert.Equal(t, "forge", sub.Flags().Lookup("forge").DefValue)
			assert.Equal(t, ".", sub.Flags().Lookup("project").DefValue)
		})
	}
}

func TestScopedCommandArgs(t *testing.T) {
	_, _, err := execute(t, NewScopedCommand(&RootOptions{Format: "text"}, "revise"), "quests")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestGenerateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	gen, _, err := cmd.Find([]string{"generate"})
	require.NoError(t, err)

	pkg := gen.Flags().Lookup("go-package")
	require.NotNil(t, pkg)
	assert.Equal(t, "admin", pkg.DefValue)
	assert.NotNil(t, gen.Flags().Lookup("components"))
	assert.NotNil(t, gen.Flags().Lookup("systems"))
	assert.NotNil(t, gen.Flags().Lookup("calls"))
}
