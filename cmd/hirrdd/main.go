package main

import (
	"fmt"
	"os"

	"github.com/hirrd/hirrd/internal/cli"
	"github.com/hirrd/hirrd/internal/daemon"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	var (
		instanceFlag string
		debug        bool
	)

	rootCmd := &cobra.Command{
		Use:          "hirrdd",
		Short:        "Run the hirrd messaging daemon for one instance",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cli.Load(instanceFlag)
			if err != nil {
				return err
			}
			app := fx.New(
				daemon.Module(daemon.Params{
					InstanceName: env.Instance,
					Config:       env.Config,
					Debug:        debug,
				}),
			)
			app.Run()
			return app.Err()
		},
	}
	rootCmd.Flags().StringVarP(&instanceFlag, "instance", "i", "", "instance name (overrides config default)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "log at debug level")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
