// Package settings holds the run settings of each environment mode: which
// content statuses deploy, what gets seeded, how fast rows may be emitted and
// where the chain endpoint and deployer key come from.
package settings

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/roach88/worldsmith/internal/content"
)

// Mode is a deployment environment.
type Mode string

const (
	ModeLocal      Mode = "local"
	ModeTesting    Mode = "testing"
	ModeProduction Mode = "production"
)

// Modes lists every environment mode.
var Modes = []Mode{ModeLocal, ModeTesting, ModeProduction}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Modes, m) {
		return "", fmt.Errorf("unknown mode %q (want local, testing or production)", s)
	}
	return m, nil
}

// EnvPrefix is the prefix of the mode's environment variables.
func (m Mode) EnvPrefix() string {
	return strings.ToUpper(string(m))
}

// Profile configures one environment mode.
type Profile struct {
	// Statuses are the row statuses a full init deploys.
	Statuses []string `yaml:"statuses"`

	// FixtureQuests adds the quests under fixtures/ to the quest category.
	FixtureQuests bool `yaml:"fixture_quests"`

	// GachaSeed is the number of pets minted into the gacha pool. Zero skips
	// seeding.
	GachaSeed uint64 `yaml:"gacha_seed"`

	// ConfigOverrides are uint config values applied after config.csv on a
	// full init, e.g. relaxed cooldowns for fast local iteration.
	ConfigOverrides []ConfigOverride `yaml:"config_overrides,omitempty"`

	// Roles are granted before any content is created.
	Roles []RoleGrant `yaml:"roles,omitempty"`

	// Accounts are development accounts created with their pets and
	// harvests at the end of a full init.
	Accounts []Account `yaml:"accounts,omitempty"`

	// RatePerSecond caps how many content rows are emitted per second.
	// Zero means unlimited.
	RatePerSecond float64 `yaml:"rate_per_second"`

	// MaxRowErrors aborts the run once more rows than this have been
	// skipped. Zero means unbounded.
	MaxRowErrors int `yaml:"max_row_errors"`

	// Automine switches the chain to immediate mining around a deploy.
	Automine bool `yaml:"automine"`

	// BlockTime is the interval mining period restored after the batch, in
	// seconds.
	BlockTime uint64 `yaml:"block_time,omitempty"`

	// WarpSeconds forces the next block's timestamp this many seconds past
	// the latest block after a deploy. Zero leaves time alone.
	WarpSeconds uint64 `yaml:"warp_seconds,omitempty"`
}

type ConfigOverride struct {
	Name  string `yaml:"name"`
	Value uint64 `yaml:"value"`
}

type RoleGrant struct {
	Account string `yaml:"account"`
	Role    string `yaml:"role"`
}

type Account struct {
	Owner    string `yaml:"owner"`
	Operator string `yaml:"operator"`
	Name     string `yaml:"name"`
	Pets     uint64 `yaml:"pets"`
	// HarvestNode starts a harvest on this node; zero starts none.
	HarvestNode uint32 `yaml:"harvest_node,omitempty"`
}

// Selection returns the full-init row selection of the profile.
func (p Profile) Selection() (content.Selection, error) {
	statuses := make([]content.Status, 0, len(p.Statuses))
	for _, s := range p.Statuses {
		st, ok := content.ParseStatus(s)
		if !ok {
			return content.Selection{}, fmt.Errorf("unknown status %q", s)
		}
		statuses = append(statuses, st)
	}
	return content.ByStatus(statuses...), nil
}

// Validate checks the profile's values.
func (p Profile) Validate() error {
	if len(p.Statuses) == 0 {
		return fmt.Errorf("statuses is required")
	}
	if _, err := p.Selection(); err != nil {
		return err
	}
	if p.RatePerSecond < 0 {
		return fmt.Errorf("rate_per_second must not be negative")
	}
	if p.MaxRowErrors < 0 {
		return fmt.Errorf("max_row_errors must not be negative")
	}
	for i, o := range p.ConfigOverrides {
		if o.Name == "" {
			return fmt.Errorf("config_overrides[%d]: name is required", i)
		}
	}
	for i, r := range p.Roles {
		if !common.IsHexAddress(r.Account) {
			return fmt.Errorf("roles[%d]: invalid account %q", i, r.Account)
		}
		if r.Role == "" {
			return fmt.Errorf("roles[%d]: role is required", i)
		}
	}
	for i, a := range p.Accounts {
		if !common.IsHexAddress(a.Owner) || !common.IsHexAddress(a.Operator) {
			return fmt.Errorf("accounts[%d]: owner and operator must be addresses", i)
		}
		if a.Name == "" {
			return fmt.Errorf("accounts[%d]: name is required", i)
		}
	}
	return nil
}

// Settings maps each mode to its profile.
type Settings struct {
	Profiles map[Mode]Profile `yaml:"profiles"`
}

// devAccount is the first prefunded account of a local development chain.
const devAccount = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

// Default returns the built-in settings. Local and testing deploy every
// status, add fixture quests and seed a small pool; production deploys only
// finished content, seeds the full pool and is rate limited.
func Default() *Settings {
	all := []string{
		string(content.StatusReady),
		string(content.StatusIngame),
		string(content.StatusForImplementation),
		string(content.StatusReviseDeployment),
	}
	relaxed := []ConfigOverride{
		{Name: "ACCOUNT_STAMINA_RECOVERY_PERIOD", Value: 1},
		{Name: "KAMI_STANDARD_COOLDOWN", Value: 1},
		{Name: "HARVEST_COOLDOWN", Value: 1},
	}
	return &Settings{Profiles: map[Mode]Profile{
		ModeLocal: {
			Statuses:        all,
			FixtureQuests:   true,
			GachaSeed:       100,
			ConfigOverrides: relaxed,
			Roles:           []RoleGrant{{Account: devAccount, Role: "Admin"}},
			Accounts: []Account{
				{Owner: devAccount, Operator: devAccount, Name: "dev", Pets: 5, HarvestNode: 1},
			},
			Automine:    true,
			BlockTime:   1,
			WarpSeconds: 1,
		},
		ModeTesting: {
			Statuses:        all,
			FixtureQuests:   true,
			GachaSeed:       100,
			ConfigOverrides: relaxed,
			RatePerSecond:   5,
		},
		ModeProduction: {
			Statuses: []string{
				string(content.StatusReady),
				string(content.StatusIngame),
				string(content.StatusReviseDeployment),
			},
			GachaSeed:     10_000,
			RatePerSecond: 2,
		},
	}}
}

// Load reads settings from a YAML file. Modes the file leaves out keep their
// defaults; unknown fields are rejected.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return Parse(data)
}

// Parse decodes settings from YAML. See Load.
func Parse(data []byte) (*Settings, error) {
	var file Settings
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	s := Default()
	for mode, p := range file.Profiles {
		if !slices.Contains(Modes, mode) {
			return nil, fmt.Errorf("unknown mode %q in settings", mode)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", mode, err)
		}
		s.Profiles[mode] = p
	}
	return s, nil
}

// Profile returns the profile for m.
func (s *Settings) Profile(m Mode) (Profile, error) {
	p, ok := s.Profiles[m]
	if !ok {
		return Profile{}, fmt.Errorf("no profile for mode %q", m)
	}
	return p, nil
}
