package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vaultsync/internal/buildinfo"
	"github.com/dmitrijs2005/vaultsync/internal/client/config"
	"github.com/spf13/cobra"
)

// loadConfig and runApp are seams for tests.
var loadConfig = config.LoadConfig

var runApp = func(ctx context.Context, cfg *config.Config) error {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

const rootLong = `vaultcli keeps an encrypted credential vault in sync with a vault server.
The server only ever sees ciphertext.

Flags (also settable in a JSON file given with -c):
  -a string   address:port of the vault server
  -i int      online status check interval (seconds)
  -f string   offline cache file, "" disables the cache
  -k          remember the master password in the OS keyring
  -v string   log level: debug, info, warn, error`

// NewRootCommand returns the vaultcli command tree. The root command
// starts the interactive shell; its flags are parsed by the config package,
// so cobra leaves them alone.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:                "vaultcli",
		Short:              "Client for the vaultsync password vault",
		Long:               rootLong,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range args {
				if a == "-h" || a == "--help" || a == "-help" {
					return cmd.Help()
				}
			}
			return runApp(cmd.Context(), loadConfig())
		},
	}

	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vaultcli %s\n", buildinfo.String())
		},
	}
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
