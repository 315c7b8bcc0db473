package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/worldsmith/internal/admin"
	"github.com/roach88/worldsmith/internal/ids"
)

// IDsOptions holds flags for the ids command.
type IDsOptions struct {
	*RootOptions
	Goals   []uint
	Resolve []string
}

// IDEntry is one resolved identifier.
type IDEntry struct {
	Kind string `json:"kind"` // "system", "component" or "goal"
	Name string `json:"name"`
	ID   string `json:"id"`
}

// NewIDsCommand creates the ids command.
func NewIDsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IDsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ids [names...]",
		Short: "Print system identifiers and goal references",
		Long: `Print uint256(keccak256(name)) for each identifier string, and the goal
reference keccak256("goal", uint32 index) for each --goal index.

Without arguments every system the builders call is listed. --resolve maps
a hex identifier back to the system, or to one of the given names, that
hashes to it.

Example:
  worldsmith ids system.room.create component.name
  worldsmith ids --goal 1 --goal 2
  worldsmith ids --resolve 0xd9cf7742deb14224286a6dae9f61a9af1de75daba322139ce1c0423424ef54bf`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIDs(opts, args, cmd)
		},
	}

	cmd.Flags().UintSliceVar(&opts.Goals, "goal", nil, "goal index to hash (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Resolve, "resolve", nil, "hex identifier to map back to its name (repeatable)")

	return cmd
}

func runIDs(opts *IDsOptions, names []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if len(names) == 0 && len(opts.Goals) == 0 && len(opts.Resolve) == 0 {
		names = knownSystems()
	}

	entries := make([]IDEntry, 0, len(names)+len(opts.Goals)+len(opts.Resolve))
	for _, name := range names {
		if name == "" {
			return fail(formatter, ErrCodeInvalidArgs, "empty identifier", nil)
		}
		entries = append(entries, nameEntry(name))
	}
	for _, g := range opts.Goals {
		if g > math.MaxUint32 {
			return fail(formatter, ErrCodeInvalidArgs, fmt.Sprintf("goal index %d out of range", g), nil)
		}
		entries = append(entries, IDEntry{Kind: "goal", Name: fmt.Sprint(g), ID: ids.HexBytes(ids.GoalID(uint32(g)))})
	}
	if len(opts.Resolve) > 0 {
		byID := make(map[string]IDEntry)
		for _, name := range append(knownSystems(), names...) {
			e := nameEntry(name)
			byID[e.ID] = e
		}
		for _, h := range opts.Resolve {
			id, err := ids.ParseHex(h)
			if err != nil {
				return fail(formatter, ErrCodeInvalidArgs, "invalid identifier", err)
			}
			e, ok := byID[ids.Hex(id)]
			if !ok {
				return fail(formatter, ErrCodeNotFound, fmt.Sprintf("no known name hashes to %s", ids.Hex(id)), nil)
			}
			entries = append(entries, e)
		}
	}

	return formatter.Success(entries, func(w io.Writer) {
		for _, e := range entries {
			label := e.Name
			if e.Kind == "goal" {
				label = "goal " + e.Name
			}
			fmt.Fprintf(w, "%s  %s\n", e.ID, label)
		}
	})
}

// nameEntry hashes a system or component identifier string.
func nameEntry(name string) IDEntry {
	if strings.HasPrefix(name, "component.") {
		return IDEntry{Kind: "component", Name: name, ID: ids.Hex(ids.ComponentID(name))}
	}
	return IDEntry{Kind: "system", Name: name, ID: ids.Hex(ids.SystemID(name))}
}

// knownSystems lists the systems of the builder signature table in order.
func knownSystems() []string {
	var out []string
	seen := make(map[string]bool)
	for _, sig := range admin.DefaultRegistry.Signatures() {
		if !seen[sig.System] {
			seen[sig.System] = true
			out = append(out, sig.System)
		}
	}
	return out
}
