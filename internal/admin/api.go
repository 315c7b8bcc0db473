// Package admin is the category-scoped builder facade over the call encoder.
//
// Every leaf validates its arguments, encodes them against the system's
// registered parameter list and appends exactly one SystemCall to the sink.
// No leaf performs network I/O; applying the calls is the deploy runner's job.
package admin

import (
	"fmt"
	"math/big"

	"github.com/roach88/worldsmith/internal/encoder"
	"github.com/roach88/worldsmith/internal/ir"
)

// DefaultRegistry is the signature registry generated from the deploy
// configuration.
var DefaultRegistry = encoder.MustRegistry(Signatures)

// Option configures an API.
type Option func(*API)

// WithRegistry replaces the signature registry.
func WithRegistry(r *encoder.Registry) Option {
	return func(a *API) { a.reg = r }
}

// WithLiteral makes every leaf emit literal Solidity arguments instead of
// ABI-encoded payloads, for call sites that are themselves generated scripts.
func WithLiteral() Option {
	return func(a *API) { a.literal = true }
}

// API is the root of the builder tree.
type API struct {
	sink    ir.Sink
	reg     *encoder.Registry
	literal bool

	Auth          AuthAPI
	Config        ConfigAPI
	Factions      FactionsAPI
	Rooms         RoomsAPI
	Nodes         NodesAPI
	Items         ItemsAPI
	NPCs          NPCsAPI
	Listings      ListingsAPI
	Auctions      AuctionsAPI
	Quests        QuestsAPI
	Skills        SkillsAPI
	Traits        TraitsAPI
	Recipes       RecipesAPI
	Relationships RelationshipsAPI
	Goals         GoalsAPI
	Setup         SetupAPI
}

// New creates a builder tree that appends to sink.
func New(sink ir.Sink, opts ...Option) *API {
	a := &API{sink: sink, reg: DefaultRegistry}
	for _, opt := range opts {
		opt(a)
	}
	a.Auth = AuthAPI{a}
	a.Config = ConfigAPI{a}
	a.Factions = FactionsAPI{a}
	a.Rooms = RoomsAPI{a}
	a.Nodes = NodesAPI{a}
	a.Items = ItemsAPI{a}
	a.NPCs = NPCsAPI{a}
	a.Listings = ListingsAPI{a}
	a.Auctions = AuctionsAPI{a}
	a.Quests = QuestsAPI{a}
	a.Skills = SkillsAPI{a}
	a.Traits = TraitsAPI{a}
	a.Recipes = RecipesAPI{a}
	a.Relationships = RelationshipsAPI{a}
	a.Goals = GoalsAPI{a}
	a.Setup = SetupAPI{a}
	return a
}

// call encodes args for system and appends the call. Nothing is appended on
// error.
func (a *API) call(system string, args ...any) error {
	c := ir.SystemCall{SystemID: system, Function: ir.DefaultFunction}
	if a.literal {
		lit, err := a.reg.Literalize(system, ir.DefaultFunction, args...)
		if err != nil {
			return err
		}
		c.Literal = lit
	} else {
		payload, err := a.reg.Encode(system, ir.DefaultFunction, args...)
		if err != nil {
			return err
		}
		c.Encoded = payload
	}
	a.sink.Append(c)
	return nil
}

func requireName(what, name string) error {
	if name == "" {
		return fmt.Errorf("%s: name is required", what)
	}
	return nil
}

func requireDrops(what string, keys []uint32, weights []*big.Int) error {
	if len(keys) == 0 {
		return fmt.Errorf("%s: droptable has no keys", what)
	}
	if len(keys) != len(weights) {
		return fmt.Errorf("%s: %d keys but %d weights", what, len(keys), len(weights))
	}
	return nil
}
