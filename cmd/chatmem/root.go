package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/chatmemory/core"
	"github.com/hupe1980/chatmemory/logging"
	"github.com/hupe1980/chatmemory/memory"
	"github.com/hupe1980/chatmemory/memory/redis"
)

const envPrefix = "CHATMEM"

// app carries the configuration shared by all subcommands.
type app struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:          "chatmem",
		Short:        "Inspect and edit Redis-backed chat sessions",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("redis-url", "", "Redis connection URL, e.g. redis://localhost:6379/0 (required)")
	flags.String("session", "", "session id (required)")
	flags.Duration("ttl", 0, "session expiry refreshed on every add; 0 disables expiry")
	flags.String("key-prefix", "", "prefix prepended to the session id to form the list key")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	cobra.CheckErr(a.v.BindPFlags(flags))

	rootCmd.AddCommand(a.newGetCmd(), a.newAddCmd(), a.newClearCmd())
	return rootCmd
}

// store builds a session message store from the resolved configuration.
func (a *app) store(cmd *cobra.Command) (*memory.SessionMessageStore, error) {
	redisURL := a.v.GetString("redis-url")
	if redisURL == "" {
		return nil, fmt.Errorf("%w: --redis-url is required", core.ErrMissingConfig)
	}
	sessionID := a.v.GetString("session")
	if sessionID == "" {
		return nil, fmt.Errorf("%w: --session is required", core.ErrMissingConfig)
	}
	level, err := logging.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: "text",
		Output: cmd.ErrOrStderr(),
	})

	lists, err := redis.New(func(o *redis.Options) {
		o.URL = redisURL
	})
	if err != nil {
		return nil, err
	}
	return memory.NewSessionMessageStore(lists, func(o *memory.SessionStoreOptions) {
		o.SessionID = sessionID
		o.SessionTTL = a.v.GetDuration("ttl")
		o.KeyPrefix = a.v.GetString("key-prefix")
		o.Logger = logger.WithComponent("store")
	})
}

func (a *app) newGetCmd() *cobra.Command {
	var (
		window int
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the session history in chronological order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.store(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if raw {
				records, err := store.GetStoredMessages(cmd.Context(), windowOption(window))
				if err != nil {
					return err
				}
				enc := json.NewEncoder(out)
				for _, r := range records {
					if err := enc.Encode(r); err != nil {
						return err
					}
				}
				return nil
			}
			msgs, err := store.GetMessages(cmd.Context(), windowOption(window))
			if err != nil {
				return err
			}
			for _, m := range msgs {
				fmt.Fprintf(out, "%s: %s\n", m.Type(), m.GetContent())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&window, "window", 0, "only print the most recent N turns; 0 prints everything")
	cmd.Flags().BoolVar(&raw, "raw", false, "print stored JSON records")
	return cmd
}

func windowOption(n int) func(o *core.CallOptions) {
	if n <= 0 {
		return core.WithoutWindow()
	}
	return core.WithWindowSize(n)
}

func (a *app) newAddCmd() *cobra.Command {
	var human, ai string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a human/AI exchange to the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var turns []core.ChatTurn
			if cmd.Flags().Changed("human") {
				turns = append(turns, core.HumanTurn(human))
			}
			if cmd.Flags().Changed("ai") {
				turns = append(turns, core.AITurn(ai))
			}
			if len(turns) == 0 {
				return fmt.Errorf("%w: at least one of --human or --ai is required", core.ErrInvalidBatch)
			}
			store, err := a.store(cmd)
			if err != nil {
				return err
			}
			return store.AddMessages(cmd.Context(), turns)
		},
	}
	cmd.Flags().StringVar(&human, "human", "", "human turn text")
	cmd.Flags().StringVar(&ai, "ai", "", "AI turn text")
	return cmd
}

func (a *app) newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.store(cmd)
			if err != nil {
				return err
			}
			if err := store.ClearMessages(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared session %s\n", store.SessionID())
			return nil
		},
	}
}
