// Package internal holds process-wide flags and their validated values.
package internal

import (
	"strings"

	"github.com/suve19/np-assignment1b/internal/pkg/validate"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every flag name to form its environment variable.
const EnvPrefix = "CALC"

// Flag describes a command line flag that can also be set from the environment.
type Flag struct {
	Name    string
	Usage   string
	Default interface{}
}

// Flag definitions.
var (
	EnvFlag = Flag{
		Name:    "env",
		Usage:   "deployment environment (dev|prod)",
		Default: "dev",
	}
	LogLevelFlag = Flag{
		Name:    "log-level",
		Usage:   "log level (trace|debug|info|warn|error)",
		Default: "info",
	}
	ClientTimeoutMSFlag = Flag{
		Name:    "timeout-ms",
		Usage:   "milliseconds to wait for each server reply",
		Default: 2000,
	}
	ClientAttemptsFlag = Flag{
		Name:    "attempts",
		Usage:   "number of HELLO attempts before giving up",
		Default: 3,
	}
	ServerSessionTTLMSFlag = Flag{
		Name:    "session-ttl-ms",
		Usage:   "milliseconds of inactivity after which a session is evicted",
		Default: 10000,
	}
	ServerSweepMSFlag = Flag{
		Name:    "sweep-ms",
		Usage:   "bound each receive to this many milliseconds so idle sessions are swept; 0 sweeps only between arrivals",
		Default: 0,
	}
)

// Values loaded by ValidateEnv.
var (
	Env                = EnvFlag.Default.(string)
	LogLevel           = LogLevelFlag.Default.(string)
	ClientTimeoutMS    = ClientTimeoutMSFlag.Default.(int)
	ClientAttempts     = ClientAttemptsFlag.Default.(int)
	ServerSessionTTLMS = ServerSessionTTLMSFlag.Default.(int)
	ServerSweepMS      = ServerSweepMSFlag.Default.(int)
)

type env struct {
	Env                string `validate:"oneof=dev prod"`
	LogLevel           string `validate:"oneof=trace debug info warn error"`
	ClientTimeoutMS    int    `validate:"gt=0"`
	ClientAttempts     int    `validate:"min=1"`
	ServerSessionTTLMS int    `validate:"gt=0"`
	ServerSweepMS      int    `validate:"gte=0"`
}

var flags = []*Flag{
	&EnvFlag,
	&LogLevelFlag,
	&ClientTimeoutMSFlag,
	&ClientAttemptsFlag,
	&ServerSessionTTLMSFlag,
	&ServerSweepMSFlag,
}

func init() {
	for _, f := range flags {
		viper.SetDefault(f.Name, f.Default)
		_ = viper.BindEnv(f.Name, envName(f.Name))
	}
}

// RegisterCommandFlags adds flags to cmd and binds each to viper.
// Every flag can also be set through CALC_<NAME>, e.g. CALC_TIMEOUT_MS.
func RegisterCommandFlags(cmd *cobra.Command, cmdFlags []*Flag) error {
	for _, f := range cmdFlags {
		switch def := f.Default.(type) {
		case string:
			cmd.PersistentFlags().String(f.Name, def, f.Usage)
		case int:
			cmd.PersistentFlags().Int(f.Name, def, f.Usage)
		case bool:
			cmd.PersistentFlags().Bool(f.Name, def, f.Usage)
		default:
			return errors.Errorf("flag %s has unsupported default type %T", f.Name, f.Default)
		}
		if err := viper.BindPFlag(f.Name, cmd.PersistentFlags().Lookup(f.Name)); err != nil {
			return errors.Wrapf(err, "bind flag %s failed", f.Name)
		}
	}
	return nil
}

func envName(flag string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// ValidateEnv loads the flag values from viper and validates them.
func ValidateEnv() error {
	e := env{
		Env:                viper.GetString(EnvFlag.Name),
		LogLevel:           strings.ToLower(viper.GetString(LogLevelFlag.Name)),
		ClientTimeoutMS:    viper.GetInt(ClientTimeoutMSFlag.Name),
		ClientAttempts:     viper.GetInt(ClientAttemptsFlag.Name),
		ServerSessionTTLMS: viper.GetInt(ServerSessionTTLMSFlag.Name),
		ServerSweepMS:      viper.GetInt(ServerSweepMSFlag.Name),
	}
	if err := validate.Validate().Struct(e); err != nil {
		return errors.Wrap(err, "invalid environment")
	}
	Env = e.Env
	LogLevel = e.LogLevel
	ClientTimeoutMS = e.ClientTimeoutMS
	ClientAttempts = e.ClientAttempts
	ServerSessionTTLMS = e.ServerSessionTTLMS
	ServerSweepMS = e.ServerSweepMS
	return nil
}
