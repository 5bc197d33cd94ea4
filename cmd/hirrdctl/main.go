package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/hirrd/hirrd/internal/api"
	"github.com/hirrd/hirrd/internal/chat"
	"github.com/hirrd/hirrd/internal/cli"
	"github.com/hirrd/hirrd/internal/client"
	"github.com/hirrd/hirrd/internal/feed"
	"github.com/hirrd/hirrd/internal/store"
	"github.com/spf13/cobra"
)

type globals struct {
	instance string
	json     bool
	as       string
	timeout  time.Duration
}

func main() {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "hirrdctl",
		Short:         "Script a running hirrd daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&g.instance, "instance", "i", "", "instance name (overrides config default)")
	rootCmd.PersistentFlags().BoolVar(&g.json, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&g.as, "as", "", "user id to act as")
	rootCmd.PersistentFlags().DurationVar(&g.timeout, "timeout", 10*time.Second, "per-call timeout")

	rootCmd.AddCommand(
		statusCmd(g),
		jobCmd(g),
		applicationCmd(g),
		historyCmd(g),
		sendCmd(g),
		watchCmd(g),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (g *globals) connect() (*client.Client, error) {
	env, err := cli.Load(g.instance)
	if err != nil {
		return nil, err
	}
	c, err := client.New(env.SocketPath(), env.Config.ReconnectPerSecond, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to daemon for instance %q: %w", env.Instance, err)
	}
	return c, nil
}

func (g *globals) user() (string, error) {
	if g.as == "" {
		return "", fmt.Errorf("--as <user-id> is required")
	}
	return g.as, nil
}

func (g *globals) call() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), g.timeout)
}

func statusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := g.call()
			defer cancel()

			resp, err := c.Daemon.GetStatus(ctx, &api.GetStatusRequest{})
			if err != nil {
				return err
			}
			if g.json {
				return outputJSON(resp)
			}
			fmt.Printf("Instance:     %s\n", resp.Instance)
			fmt.Printf("Uptime:       %s\n", (time.Duration(resp.UptimeMs) * time.Millisecond).String())
			fmt.Printf("Feed:         %s\n", resp.Feed)
			fmt.Printf("Unlocked:     %s\n", strings.Join(resp.UnlockedStates, ", "))
			fmt.Printf("Applications: %d\n", resp.ApplicationCount)
			fmt.Printf("Messages:     %d\n", resp.MessageCount)
			return nil
		},
	}
}

func jobCmd(g *globals) *cobra.Command {
	var recruiter, title string
	put := &cobra.Command{
		Use:   "put <job-id>",
		Short: "Create or update a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := g.call()
			defer cancel()

			resp, err := c.Applications.PutJob(ctx, &api.PutJobRequest{
				Job: store.Job{ID: args[0], RecruiterID: recruiter, Title: title},
			})
			if err != nil {
				return err
			}
			if g.json {
				return outputJSON(resp)
			}
			fmt.Printf("Job %s saved (recruiter %s)\n", resp.Job.ID, resp.Job.RecruiterID)
			return nil
		},
	}
	put.Flags().StringVar(&recruiter, "recruiter", "", "recruiter user id")
	put.Flags().StringVar(&title, "title", "", "job title")
	_ = put.MarkFlagRequired("recruiter")

	cmd := &cobra.Command{Use: "job", Short: "Manage jobs"}
	cmd.AddCommand(put)
	return cmd
}

func applicationCmd(g *globals) *cobra.Command {
	var jobID, applicant, status string
	put := &cobra.Command{
		Use:   "put <application-id>",
		Short: "Create or update an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := g.call()
			defer cancel()

			resp, err := c.Applications.PutApplication(ctx, &api.PutApplicationRequest{
				Application: store.Application{ID: args[0], JobID: jobID, ApplicantID: applicant, Status: status},
			})
			if err != nil {
				return err
			}
			if g.json {
				return outputJSON(resp)
			}
			fmt.Printf("Application %s is %s (%s)\n", resp.Application.ID, resp.Application.Status, resp.State)
			return nil
		},
	}
	put.Flags().StringVar(&jobID, "job", "", "job id")
	put.Flags().StringVar(&applicant, "applicant", "", "applicant user id")
	put.Flags().StringVar(&status, "status", "", "initial status (default applied)")
	_ = put.MarkFlagRequired("job")
	_ = put.MarkFlagRequired("applicant")

	setStatus := &cobra.Command{
		Use:   "status <application-id> <applied|viewed|shortlisted|rejected|hired>",
		Short: "Move an application to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := g.call()
			defer cancel()

			resp, err := c.Applications.SetStatus(ctx, &api.SetStatusRequest{ApplicationID: args[0], Status: args[1]})
			if err != nil {
				return err
			}
			if g.json {
				return outputJSON(resp)
			}
			fmt.Printf("Application %s is %s (%s)\n", resp.Application.ID, resp.Application.Status, resp.State)
			if resp.Flipped {
				fmt.Printf("Chat is now %s\n", strings.ToLower(resp.State))
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <application-id>",
		Short: "Show an application as seen by --as",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := g.user()
			if err != nil {
				return err
			}
			c, err := g.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := g.call()
			defer cancel()

			resp, err := c.Chat.GetApplication(ctx, &api.GetApplicationRequest{ApplicationID: args[0], ViewerID: user})
			if err != nil {
				return api.FromStatus(err)
			}
			if g.json {
				return outputJSON(resp)
			}
			a := resp.Application
			fmt.Printf("Application: %s\nJob:         %s\nApplicant:   %s\nRecruiter:   %s\nStatus:      %s\nChat:        %s\n",
				a.ID, a.JobID, a.ApplicantID, a.RecruiterID, a.Status, chatState(resp.Unlocked))
			return nil
		},
	}

	cmd := &cobra.Command{Use: "application", Aliases: []string{"app"}, Short: "Manage applications"}
	cmd.AddCommand(put, setStatus, show)
	return cmd
}

func historyCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "history <application-id>",
		Short: "Print a thread in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := g.user()
			if err != nil {
				return err
			}
			c, err := g.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := g.call()
			defer cancel()

			msgs, err := c.As(user).LoadHistory(ctx, args[0])
			if err != nil {
				return err
			}
			if g.json {
				return outputJSON(msgs)
			}
			if len(msgs) == 0 {
				fmt.Println(chat.EmptyThreadText)
				return nil
			}
			for _, l := range chat.Lines(msgs, user, time.Local) {
				fmt.Printf("[%s] %s: %s\n", l.Clock, l.Author, l.Text)
			}
			return nil
		},
	}
}

func sendCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "send <application-id> <text>...",
		Short: "Send a message to the other party",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := g.user()
			if err != nil {
				return err
			}
			c, err := g.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := g.call()
			defer cancel()

			b := c.As(user)
			app, err := b.Application(ctx, args[0])
			if err != nil {
				return err
			}
			msg, err := b.Send(ctx, args[0], user, app.Counterpart(user), strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if g.json {
				return outputJSON(msg)
			}
			fmt.Printf("Sent %s at %s\n", msg.ID, chat.Clock(msg.CreatedAt, time.Local))
			return nil
		},
	}
}

func watchCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <application-id>",
		Short: "Stream a thread's events until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := g.user()
			if err != nil {
				return err
			}
			c, err := g.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			sub, err := c.As(user).Subscribe(ctx, args[0], func(evt feed.Event) {
				if g.json {
					_ = outputJSON(evt)
					return
				}
				printEvent(evt, user)
			})
			if err != nil {
				return err
			}
			defer sub.Unsubscribe()

			<-ctx.Done()
			return nil
		},
	}
}

func printEvent(evt feed.Event, user string) {
	switch evt.Kind {
	case feed.Inserted:
		if evt.Message == nil {
			return
		}
		for _, l := range chat.Lines([]store.Message{*evt.Message}, user, time.Local) {
			fmt.Printf("[%s] %s: %s\n", l.Clock, l.Author, l.Text)
		}
	case feed.StatusChanged:
		fmt.Printf("-- status %s, chat %s\n", evt.Status, chatState(evt.Unlocked))
	case feed.Disconnected:
		fmt.Println("-- disconnected, reconnecting")
	case feed.Resumed:
		fmt.Println("-- resumed")
	}
}

func chatState(unlocked bool) string {
	if unlocked {
		return "open"
	}
	return "unavailable"
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
