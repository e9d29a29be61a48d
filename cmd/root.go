package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "copymanga",
	Short: "Browse and download manga from CopyManga.",
	Long: `Browse and download manga from CopyManga.

Provide a configuration file using one of the following methods:
1. Use the --config <path> or -c <path> flag.
2. Place a config.yaml file in the default user configuration directory (e.g., ~/.config/copymanga/).
3. Place a config.yaml file a folder inside your home directory (e.g., ~/.copymanga/).
4. Place a config.yaml file in the directory of the binary.

Manga keys look like /api/v3/comic2/<path_word>, the bare path word is accepted as well.`,
	SilenceUsage: true,
}

func init() {
	initRootFlags()
	initBrowseFlags()
	initDownloadFlags()

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(popularCmd)
	rootCmd.AddCommand(latestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(detailCmd)
	rootCmd.AddCommand(chaptersCmd)
	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(monitorCmd)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
