package main

import (
	"fmt"
	"os"
	"strings"

	"endpoint-gateway/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)
	config.BindEnv(v)

	var cfgFile string

	root := &cobra.Command{
		Use:   "gateway",
		Short: "Reverse proxy with per-endpoint rate limiting",
		Long: `Reverse proxy that rejects requests with 429 when a client exceeds the
rate configured for an endpoint in the policies file.

Configuration comes from flags, GATEWAY_* environment variables and an optional
config file, in that order of precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", cfgFile, err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			setupLogging(cfg.LogLevel, cfg.LogFormat)
			return runGateway(cmd.Context(), cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml)")
	pf.String("policies", "", "policies file (yaml) [GATEWAY_POLICIES_FILE]")
	_ = v.BindPFlag("policies_file", pf.Lookup("policies"))

	f := root.Flags()
	f.String("listen", ":8080", "listen address [GATEWAY_LISTEN_ADDR]")
	f.String("upstream", "", "upstream URL [GATEWAY_UPSTREAM_URL]")
	f.Bool("trust-xff", false, "trust X-Forwarded-For/X-Real-IP for the client address [GATEWAY_TRUST_XFF]")
	f.String("log-level", "info", "log level: debug|info|warn|error [GATEWAY_LOG_LEVEL]")
	_ = v.BindPFlag("listen_addr", f.Lookup("listen"))
	_ = v.BindPFlag("upstream_url", f.Lookup("upstream"))
	_ = v.BindPFlag("trust_xff", f.Lookup("trust-xff"))
	_ = v.BindPFlag("log_level", f.Lookup("log-level"))

	root.AddCommand(newPoliciesCmd(v))
	return root
}

func setupLogging(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if strings.EqualFold(format, "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
