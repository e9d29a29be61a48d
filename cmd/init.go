package cmd

import "github.com/spf13/cobra"

var (
	configPath string

	ratePermits     int
	ratePeriod      int
	upscale         bool
	upscaleTemplate string

	page int

	naming            string
	downloadDirectory string
	manga             string
	format            string

	chapterNumbers string
	first          bool
	latest         bool
)

func initRootFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		"",
		"specifies the path to your config file",
	)
	rootCmd.PersistentFlags().IntVar(
		&ratePermits,
		"rate-permits",
		0,
		"overrides requestsPerPeriod, allowed 1-10",
	)
	rootCmd.PersistentFlags().IntVar(
		&ratePeriod,
		"rate-period",
		0,
		"overrides periodMillis, allowed 500-6000 in steps of 500",
	)
	rootCmd.PersistentFlags().BoolVar(
		&upscale,
		"upscale",
		false,
		"route page images through the upscale proxy",
	)
	rootCmd.PersistentFlags().StringVar(
		&upscaleTemplate,
		"upscale-template",
		"",
		"overrides upscaleUrlTemplate, must contain {url}",
	)
}

func initBrowseFlags() {
	for _, c := range []*cobra.Command{popularCmd, latestCmd, searchCmd} {
		c.Flags().IntVarP(
			&page,
			"page",
			"p",
			1,
			"specifies the catalog page, starting at 1",
		)
	}
}

func initDownloadFlags() {
	downloadCmd.Flags().StringVarP(
		&downloadDirectory,
		"downloadDirectory",
		"d",
		"",
		"specifies the directory where you want to save your downloads to, defaults to downloadLocation",
	)
	downloadCmd.Flags().StringVarP(
		&naming,
		"naming",
		"n",
		"",
		"specifies the naming template you want to use for naming chapters, defaults to namingTemplate",
	)
	downloadCmd.Flags().StringVarP(
		&manga,
		"manga",
		"m",
		"",
		"specifies the manga you want to download",
	)
	downloadCmd.Flags().StringVarP(
		&format,
		"format",
		"f",
		"cbz",
		"specifies the output format: cbz or pdf",
	)

	downloadCmd.Flags().StringVarP(
		&chapterNumbers,
		"chapters",
		"C",
		"",
		"specifies the chapter positions you want to download, e.g. 1-3,5",
	)
	downloadCmd.Flags().BoolVarP(
		&first,
		"first",
		"1",
		false,
		"download the first chapter",
	)
	downloadCmd.Flags().BoolVarP(
		&latest,
		"latest",
		"L",
		false,
		"download the latest chapter",
	)

	downloadCmd.MarkFlagsMutuallyExclusive("first", "chapters")
	downloadCmd.MarkFlagsMutuallyExclusive("latest", "chapters")
	downloadCmd.MarkFlagsMutuallyExclusive("first", "latest")

	_ = downloadCmd.MarkFlagRequired("manga")
}
