// Package ids derives the deterministic identifiers the deployed world uses to
// cross-reference systems, components and synthetic entities.
//
// Every function here is pure: the same input always produces the same
// identifier, within a run and across runs. Deployed contracts compute the
// same hashes on-chain, so any change to these derivations breaks every
// reference already written to a world.
package ids

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// GoalTag is the literal prefix hashed together with a goal index to form a
// goal reference.
const GoalTag = "goal"

// Keccak256 hashes the concatenation of data with legacy Keccak-256, the
// variant used by the EVM (not the finalized SHA3-256 padding).
func Keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// SystemID computes uint256(keccak256(name)) for a system or component
// identifier string such as "system.room.create".
func SystemID(name string) *big.Int {
	sum := Keccak256([]byte(name))
	return new(big.Int).SetBytes(sum[:])
}

// ComponentID is SystemID under the name components use. Systems and
// components share one identifier space.
func ComponentID(name string) *big.Int {
	return SystemID(name)
}

// TagID computes keccak256(abi.encodePacked(tag, uint32(index))).
// The index is packed as 4 big-endian bytes.
func TagID(tag string, index uint32) [32]byte {
	var packed [4]byte
	binary.BigEndian.PutUint32(packed[:], index)
	return Keccak256([]byte(tag), packed[:])
}

// GoalID computes the goal reference for a goal index. Unrelated categories
// (room gates, for example) carry this hash instead of a foreign key.
func GoalID(index uint32) [32]byte {
	return TagID(GoalTag, index)
}

// GoalIDInt returns GoalID as an unsigned integer, the form it takes when
// passed through a uint256 argument.
func GoalIDInt(index uint32) *big.Int {
	sum := GoalID(index)
	return new(big.Int).SetBytes(sum[:])
}

// Hex formats a 256-bit identifier as a 0x-prefixed, zero-padded 64 digit
// hex string.
func Hex(id *big.Int) string {
	return fmt.Sprintf("0x%064x", id)
}

// HexBytes formats a 32-byte hash as a 0x-prefixed hex string.
func HexBytes(b [32]byte) string {
	return "0x" + hex.EncodeToString(b[:])
}

// ParseHex parses a 0x-prefixed hex identifier back into an integer.
func ParseHex(s string) (*big.Int, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if trimmed == "" {
		return nil, fmt.Errorf("ids: empty hex identifier")
	}
	v, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, fmt.Errorf("ids: invalid hex identifier %q", s)
	}
	return v, nil
}
