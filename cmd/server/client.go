package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshdurbin/linktrack/internal/transport/client"
)

const clientTimeout = 10 * time.Second

func newCommands(cmd *cobra.Command) (*client.Commands, context.Context, context.CancelFunc) {
	serverURL, _ := cmd.Flags().GetString("server-url")
	ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
	return client.NewCommands(client.NewClient(serverURL)), ctx, cancel
}

func runShorten(cmd *cobra.Command, args []string) error {
	commands, ctx, cancel := newCommands(cmd)
	defer cancel()

	alias, _ := cmd.Flags().GetString("alias")
	opts := client.ShortenOptions{Alias: alias}
	if cmd.Flags().Changed("days") {
		days, _ := cmd.Flags().GetInt("days")
		opts.Days = &days
	}

	return commands.Shorten(ctx, args[0], opts)
}

func runList(cmd *cobra.Command, args []string) error {
	commands, ctx, cancel := newCommands(cmd)
	defer cancel()

	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	return commands.List(ctx, page, limit)
}

func runDelete(cmd *cobra.Command, args []string) error {
	commands, ctx, cancel := newCommands(cmd)
	defer cancel()

	return commands.Delete(ctx, args[0])
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	commands, ctx, cancel := newCommands(cmd)
	defer cancel()

	return commands.Analytics(ctx, args[0])
}

func runHealth(cmd *cobra.Command, args []string) error {
	commands, ctx, cancel := newCommands(cmd)
	defer cancel()

	return commands.Health(ctx)
}
