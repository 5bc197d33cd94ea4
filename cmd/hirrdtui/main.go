package main

import (
	"fmt"
	"os"
	"time"

	"github.com/hirrd/hirrd/internal/chat"
	"github.com/hirrd/hirrd/internal/cli"
	"github.com/hirrd/hirrd/internal/client"
	"github.com/hirrd/hirrd/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	var (
		instanceFlag string
		as           string
	)

	rootCmd := &cobra.Command{
		Use:          "hirrdtui <application-id>",
		Short:        "Open the chat thread of one application",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cli.Load(instanceFlag)
			if err != nil {
				return err
			}
			if err := cli.EnsureDaemon(env, 10*time.Second); err != nil {
				return err
			}
			g, err := env.Config.Gate()
			if err != nil {
				return err
			}

			c, err := client.New(env.SocketPath(), env.Config.ReconnectPerSecond, nil)
			if err != nil {
				return fmt.Errorf("connect to daemon: %w", err)
			}
			defer func() { _ = c.Close() }()

			view := chat.NewView(c.As(as), g, args[0], as, nil)
			return tui.NewApp(view, g, env.Instance, args[0]).Run()
		},
	}
	rootCmd.Flags().StringVarP(&instanceFlag, "instance", "i", "", "instance name (overrides config default)")
	rootCmd.Flags().StringVar(&as, "as", "", "user id to chat as")
	_ = rootCmd.MarkFlagRequired("as")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
