package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"copymanga/internal/download"
	"copymanga/internal/files"
	"copymanga/internal/source"

	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Monitor the configured manga for new chapters",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(cmd)
		if err != nil {
			cmd.PrintErrln("error setting up source:", err)
			os.Exit(1)
		}
		log := a.log

		if err := a.cfg.UpdateConfig(); err != nil {
			log.Error().Err(err).Msgf("error updating config")
		}

		// init dynamic config
		a.cfg.DynamicReload(log, a.source)

		if err := a.cfg.RequireDownloadLocation(); err != nil {
			log.Fatal().Err(err).Msg("missing download location")
		}

		if err := files.IsValidLocation(a.cfg.Config.DownloadLocation); err != nil {
			log.Fatal().Err(err).Msgf("invalid download location")
		}

		if len(a.cfg.Config.MonitoredManga) == 0 {
			log.Warn().Msg("no monitored manga configured")
		}

		d := download.New(a.client, source.ImageHeaders)

		log.Info().Msg("starting to monitor configured manga")

		ticker := time.NewTicker(time.Duration(a.cfg.Config.CheckInterval) * time.Minute)
		defer ticker.Stop()

		for {
			a.checkMonitored(ctx, d)

			select {
			case <-ctx.Done():
				log.Info().Msg("stopping monitoring")
				return
			case <-ticker.C:
			}
		}
	},
}

// checkMonitored downloads the newest chapter of every monitored manga
// unless it is already on disk.
func (a *app) checkMonitored(ctx context.Context, d *download.Downloader) {
	for name, monitored := range a.cfg.Config.MonitoredManga {
		if ctx.Err() != nil {
			return
		}

		mLog := a.log.With().Str("manga", name).Str("source", a.source.String()).Logger()

		outputFormat, err := download.ParseFormat(monitored.Format)
		if err != nil {
			mLog.Error().Err(err).Msg("error parsing output format")
			continue
		}

		key := mangaKey(monitored.Manga)

		selectedManga, err := a.source.GetDetail(ctx, key)
		if err != nil {
			mLog.Error().Err(err).Msg("error getting manga")
			if fatalDownload(err) {
				return
			}
			continue
		}

		chapters, err := a.source.ListChapters(ctx, key)
		if err != nil {
			mLog.Error().Err(err).Msg("error getting manga chapters")
			if fatalDownload(err) {
				return
			}
			continue
		}

		if len(chapters) == 0 {
			mLog.Error().Msg("error finding latest chapter")
			continue
		}

		job := chapterJob{
			manga:    selectedManga,
			chapter:  chapterAt(chapters, len(chapters)),
			position: len(chapters),
		}

		chapterName, path := job.target(a.cfg.Config.DownloadLocation, a.cfg.Config.NamingTemplate, outputFormat)

		if _, err := os.Stat(path); err == nil {
			mLog.Debug().Msgf("chapter has already been downloaded, skipping %q", chapterName)
			continue
		}

		mLog.Info().Msgf("downloading %q", chapterName)
		if err := job.run(ctx, a.source, d, path, outputFormat); err != nil {
			mLog.Error().Err(err).Msgf("error downloading chapter %q", chapterName)
			if fatalDownload(err) {
				return
			}
			continue
		}
		mLog.Info().Msgf("finished downloading %q", chapterName)
	}
}
