package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/netscribe/vpcrecon/config"
)

var (
	version = "0.1.0"

	flagProfile string
	flagRegion  string
	flagConfig  string
	flagDebug   bool
	flagNoCache bool

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "vpcrecon",
		Short: "VPC network inventory and reporting",
		Long: `vpcrecon - VPC network inventory and reporting

Collects the complete networking footprint of a VPC: subnets, routing,
security groups, NACLs, gateways, endpoints, peerings, VPN, DHCP options,
flow logs, network interfaces, and Direct Connect virtual interfaces.

Reports render as markdown, JSON, YAML, or straight to the console, with
optional cost estimates and topology diagrams.`,
		Version:           version,
		PersistentPreRunE: setup,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`vpcrecon {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "AWS profile (overrides config file)")
	rootCmd.PersistentFlags().StringVar(&flagRegion, "region", "", "AWS region (overrides config file)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the response cache")
}

// setup configures logging and loads configuration before any subcommand.
func setup(cmd *cobra.Command, args []string) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if flagDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	if flagProfile != "" {
		cfg.AWS.Profile = flagProfile
	}
	if flagRegion != "" {
		cfg.AWS.DefaultRegion = flagRegion
	}
	if flagNoCache {
		cfg.Cache.Enabled = false
	}
	return nil
}
