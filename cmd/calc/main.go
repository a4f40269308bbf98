// Package main is the calc application entrypoint.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/suve19/np-assignment1b/internal"
	"github.com/suve19/np-assignment1b/internal/app/apps"
	"github.com/suve19/np-assignment1b/internal/app/cfg"
	"github.com/suve19/np-assignment1b/internal/pkg/log"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CLI command definitions.
var (
	logger logrus.FieldLogger = logrus.StandardLogger()

	rootCmd = &cobra.Command{
		Use:          "calc",
		Short:        "UDP arithmetic assignment protocol.",
		SilenceUsage: true,
	}

	clientCmd = &cobra.Command{
		Use:   "client <host:port> | <host> <port>",
		Short: "Requests an assignment, solves it and reports the verdict.",
		Args: func(cmd *cobra.Command, args []string) error {
			if _, err := cfg.AddrFromArgs(args); err != nil {
				return errors.Wrap(err, "parse server address failed")
			}
			return nil
		},
		RunE: runCmd,
	}

	serverCmd = &cobra.Command{
		Use:   "server <address:port>",
		Short: "Hands out assignments and verifies results.",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return err
			}
			if _, _, err := net.SplitHostPort(args[0]); err != nil {
				return errors.Wrap(err, "parse listen address failed")
			}
			return nil
		},
		RunE: runCmd,
	}
)

func newApp(_ context.Context, cmd *cobra.Command, args []string) (apps.App, error) {
	switch cmd.Name() {
	case "client":
		addr, err := cfg.AddrFromArgs(args)
		if err != nil {
			return nil, errors.Wrap(err, "parse server address failed")
		}
		app, err := apps.NewClientApp(addr, cfg.TimingFromEnv())
		if err != nil {
			return nil, errors.Wrap(err, "new client app failed")
		}
		return app, nil
	case "server":
		app, err := apps.NewServerApp(cfg.NewAddrCfg(args[0]), cfg.TimingFromEnv())
		if err != nil {
			return nil, errors.Wrap(err, "new server app failed")
		}
		return app, nil
	default:
		return nil, fmt.Errorf("unknown command: %s", cmd.Name())
	}
}

func runCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := chainedCheck(
		ctx,
		envCheck,
	); err != nil {
		return errors.Wrap(err, "chained check failed")
	}
	app, err := newApp(ctx, cmd, args)
	if err != nil {
		return errors.Wrapf(err, "new %s app failed", cmd.Name())
	}
	return errors.Wrap(app.Run(ctx, args), "run app failed")
}

func envCheck(ctx context.Context) error {
	err := internal.ValidateEnv()
	if err != nil {
		return errors.Wrap(err, "validate env failed")
	}
	log.SetLogger(internal.LogLevel)
	return nil
}

func chainedCheck(ctx context.Context, checks ...func(context.Context) error) error {
	for _, check := range checks {
		err := check(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	err := internal.RegisterCommandFlags(rootCmd, []*internal.Flag{
		&internal.EnvFlag,
		&internal.LogLevelFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	err = internal.RegisterCommandFlags(clientCmd, []*internal.Flag{
		&internal.ClientTimeoutMSFlag,
		&internal.ClientAttemptsFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	err = internal.RegisterCommandFlags(serverCmd, []*internal.Flag{
		&internal.ServerSessionTTLMSFlag,
		&internal.ServerSweepMSFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	rootCmd.AddCommand(
		clientCmd,
		serverCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logger.Fatal(errors.Wrap(err, "execute root command failed"))
	}
}
