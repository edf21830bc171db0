package evmwallet

import "fmt"

// Environment selects the deployment tier, which in turn fixes the
// threshold-ECDSA key name and the cycles payment attached to signing
// calls. There is no environment-specific behaviour beyond this table.
type Environment int

const (
	Development Environment = iota
	Staging
	Production
)

func (e Environment) String() string {
	switch e {
	case Development:
		return "Development"
	case Staging:
		return "Staging"
	case Production:
		return "Production"
	default:
		return fmt.Sprintf("Environment(%d)", int(e))
	}
}

// ParseEnvironment maps a configuration string (as might come from an
// ENV override via viper, see cmd/evmwalletctl) to an Environment.
func ParseEnvironment(s string) (Environment, error) {
	switch s {
	case "Development", "development", "dev":
		return Development, nil
	case "Staging", "staging":
		return Staging, nil
	case "Production", "production", "prod":
		return Production, nil
	default:
		return 0, fmt.Errorf("unknown environment %q", s)
	}
}

// Config holds the environment-derived parameters for the signing
// pipeline: which threshold key to use and how many cycles to attach to
// each sign_with_ecdsa call.
type Config struct {
	Env        Environment
	KeyName    string
	SignCycles uint64
}

// NewConfig builds the canonical Config for an environment.
func NewConfig(env Environment) Config {
	switch env {
	case Staging:
		return Config{Env: Staging, KeyName: "test_key_1", SignCycles: 10_000_000_000}
	case Production:
		return Config{Env: Production, KeyName: "key_1", SignCycles: 26_153_846_153}
	default:
		return Config{Env: Development, KeyName: "dfx_test_key", SignCycles: 0}
	}
}

func (c Config) KeyID() EcdsaKeyId {
	return EcdsaKeyId{Curve: EcdsaCurveSecp256k1, Name: c.KeyName}
}
