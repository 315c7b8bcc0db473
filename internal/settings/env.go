package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroWorld is the world address sentinel that asks the deploy script to
// deploy a new world.
const ZeroWorld = "0x0000000000000000000000000000000000000000"

// Env holds the per-mode environment: <MODE>_RPC, <MODE>_PRIV_KEY and the
// optional <MODE>_WORLD_ADDRESS.
type Env struct {
	Mode         Mode
	RPC          string
	PrivateKey   string
	WorldAddress string
}

// LookupEnv reads the environment of mode m through getenv. A nil getenv
// reads the process environment.
func LookupEnv(m Mode, getenv func(string) string) (Env, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	prefix := m.EnvPrefix()
	env := Env{
		Mode:         m,
		RPC:          strings.TrimSpace(getenv(prefix + "_RPC")),
		PrivateKey:   strings.TrimSpace(getenv(prefix + "_PRIV_KEY")),
		WorldAddress: strings.TrimSpace(getenv(prefix + "_WORLD_ADDRESS")),
	}
	if env.RPC == "" {
		return Env{}, fmt.Errorf("%s_RPC is not set", prefix)
	}
	if env.PrivateKey == "" {
		return Env{}, fmt.Errorf("%s_PRIV_KEY is not set", prefix)
	}
	if env.WorldAddress != "" && !common.IsHexAddress(env.WorldAddress) {
		return Env{}, fmt.Errorf("%s_WORLD_ADDRESS: invalid address %q", prefix, env.WorldAddress)
	}
	return env, nil
}

// World returns the target world address, or ZeroWorld to deploy a new one.
func (e Env) World() string {
	if e.WorldAddress == "" {
		return ZeroWorld
	}
	return common.HexToAddress(e.WorldAddress).Hex()
}

// Redacted returns the private key with all but its last four characters
// masked, for logging.
func (e Env) Redacted() string {
	k := e.PrivateKey
	if len(k) <= 4 {
		return strings.Repeat("*", len(k))
	}
	return strings.Repeat("*", len(k)-4) + k[len(k)-4:]
}
