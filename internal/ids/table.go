package ids

import (
	"fmt"
	"math/big"
	"sort"
)

// Identifier pairs a contract name with its declared identifier string and
// the numeric id derived from it.
type Identifier struct {
	Name    string   // contract name, e.g. "RoomCreateSystem"
	Human   string   // declared identifier, e.g. "system.room.create"
	Numeric *big.Int // SystemID(Human)
}

// Hex returns the numeric id formatted for generated artifacts.
func (i Identifier) Hex() string {
	return Hex(i.Numeric)
}

// Table is a lookup from contract name to Identifier. It is built once per
// run and never mutated afterwards.
type Table struct {
	byName  map[string]Identifier
	byHuman map[string]Identifier
	names   []string
}

// NewTable derives identifiers for the given name to declared-id pairs.
// Two names declaring the same identifier string are rejected, since they
// would collide on-chain.
func NewTable(declared map[string]string) (*Table, error) {
	t := &Table{
		byName:  make(map[string]Identifier, len(declared)),
		byHuman: make(map[string]Identifier, len(declared)),
	}
	for name, human := range declared {
		if human == "" {
			return nil, fmt.Errorf("ids: %s declares an empty identifier", name)
		}
		if prev, ok := t.byHuman[human]; ok {
			return nil, fmt.Errorf("ids: %s and %s both declare %q", prev.Name, name, human)
		}
		id := Identifier{Name: name, Human: human, Numeric: SystemID(human)}
		t.byName[name] = id
		t.byHuman[human] = id
		t.names = append(t.names, name)
	}
	sort.Strings(t.names)
	return t, nil
}

// Lookup returns the identifier declared by a contract name.
func (t *Table) Lookup(name string) (Identifier, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// LookupHuman returns the identifier for a declared identifier string.
func (t *Table) LookupHuman(human string) (Identifier, bool) {
	id, ok := t.byHuman[human]
	return id, ok
}

// All returns every identifier sorted by contract name.
func (t *Table) All() []Identifier {
	out := make([]Identifier, 0, len(t.names))
	for _, n := range t.names {
		out = append(out, t.byName[n])
	}
	return out
}

// Len reports how many identifiers the table holds.
func (t *Table) Len() int {
	return len(t.names)
}
