package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage cached upstream snapshots",
}

var cacheKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List cached snapshot keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		keys, err := env.Service.CachedKeys(cmd.Context())
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [key]",
	Short: "Delete one snapshot, or all of them when no key is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		key := ""
		if len(args) == 1 {
			key = args[0]
		}
		if err := env.Service.Invalidate(cmd.Context(), key); err != nil {
			return err
		}
		if key == "" {
			key = "all"
		}
		zap.L().Info("cache cleared", zap.String("key", key))
		return nil
	},
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Refetch every upstream snapshot and store the fresh copies",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initService(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Service.Warm(ctx); err != nil {
			return err
		}
		zap.L().Info("cache warmed")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheKeysCmd, cacheClearCmd, cacheWarmCmd)
	rootCmd.AddCommand(cacheCmd)
}
