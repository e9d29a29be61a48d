package cmd

import (
	"fmt"
	"time"

	"copymanga/internal/buildinfo"
	"copymanga/internal/config"
	"copymanga/internal/domain"
	"copymanga/internal/logger"
	"copymanga/internal/sharedhttp"
	"copymanga/internal/source"

	"github.com/spf13/cobra"
)

type app struct {
	cfg    *config.AppConfig
	log    logger.Logger
	client *sharedhttp.Client
	source *source.Copymanga
}

// newApp loads the config, applies the persistent flag overrides and builds
// the rate limited source.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg := config.New(configPath, buildinfo.Version)

	if err := applyFlags(cmd, cfg.Config); err != nil {
		return nil, err
	}

	log := logger.New(cfg.Config)

	period := time.Duration(cfg.Config.PeriodMillis) * time.Millisecond
	client := sharedhttp.NewClient(source.CopymangaHost, cfg.Config.RequestsPerPeriod, period)

	src, err := source.NewCopymanga(client, source.Options{
		UpscaleEnabled:     cfg.Config.UpscaleEnabled,
		UpscaleURLTemplate: cfg.Config.UpscaleURLTemplate,
	}, log.Zerolog())
	if err != nil {
		return nil, err
	}

	log.Trace().Msgf("using %d requests per %s", cfg.Config.RequestsPerPeriod, period)

	return &app{
		cfg:    cfg,
		log:    log,
		client: client,
		source: src,
	}, nil
}

func applyFlags(cmd *cobra.Command, c *domain.Config) error {
	flags := cmd.Flags()

	if flags.Changed("rate-permits") {
		if !config.ValidRequestsPerPeriod(ratePermits) {
			return fmt.Errorf("invalid --rate-permits %d, allowed 1-10", ratePermits)
		}
		c.RequestsPerPeriod = ratePermits
	}

	if flags.Changed("rate-period") {
		if !config.ValidPeriodMillis(ratePeriod) {
			return fmt.Errorf("invalid --rate-period %d, allowed 500-6000 in steps of 500", ratePeriod)
		}
		c.PeriodMillis = ratePeriod
	}

	if flags.Changed("upscale") {
		c.UpscaleEnabled = upscale
	}

	if flags.Changed("upscale-template") {
		if err := source.ValidateUpscaleTemplate(upscaleTemplate); err != nil {
			return err
		}
		c.UpscaleURLTemplate = upscaleTemplate
	}

	return nil
}
