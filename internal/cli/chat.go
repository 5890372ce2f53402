package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/logger"
	"github.com/weftlabs/weft/internal/ui"
	"github.com/weftlabs/weft/pkg/dispatch"
	"github.com/weftlabs/weft/pkg/provider"
	"github.com/weftlabs/weft/pkg/session"
	"github.com/weftlabs/weft/pkg/store"
)

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	lg, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return err
	}
	defer lg.Close()

	printer := ui.New(os.Stdout, quiet || cfg.Quiet)

	st, err := store.New(filepath.Join(cfg.DataDir, "agents"), printer)
	if err != nil {
		return err
	}

	reg := buildRegistry(cfg)

	client := provider.NewClient(provider.Config{
		Registry:    reg,
		Printer:     printer,
		Temperature: cfg.Defaults.Temperature,
		MaxTokens:   cfg.Defaults.MaxTokens,
	})

	sess := session.New(st, reg)
	if cfg.Defaults.Model != "" {
		sess.Selection.Model = cfg.Defaults.Model
	}

	printer.Notice("weft %s | %s/%s | agent %s (%d turns) | /help for commands",
		version, sess.Selection.Provider, sess.Selection.Model, sess.Active, len(sess.History))

	return dispatch.New(sess, client, printer).Run(cmd.Context())
}

// buildRegistry converts the provider catalog from configuration into
// the runtime registry, filling in the fallback model default.
func buildRegistry(cfg *config.Config) *provider.Registry {
	providers := make(map[string]provider.Provider, len(cfg.Providers))
	for key, p := range cfg.Providers {
		models := make(map[string]string, len(p.Models))
		for model, remote := range p.Models {
			models[model] = remote
		}
		providers[key] = provider.Provider{
			Endpoint:   p.Endpoint,
			Credential: p.APIKey,
			Models:     models,
		}
	}

	reg := provider.NewRegistry(providers, cfg.Defaults.Provider, cfg.Fallback.Provider, cfg.Fallback.Model)
	if reg.FallbackModel == "" && reg.Secondary != "" {
		reg.FallbackModel = reg.DefaultModel(reg.Secondary)
	}
	return reg
}
