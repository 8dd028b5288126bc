package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format only")
	cmd.PersistentFlags().String("proxy", "", "Set HTTP/SOCKS5 proxy, or a comma-separated list to rotate")
	cmd.PersistentFlags().Duration("timeout", DefaultHTTPTimeout, "Set hard timeout for requests")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().StringArrayP("header", "H", nil, "Extra request header (\"Key: Value\"), repeatable")
	cmd.PersistentFlags().String("mode", DefaultFetchMode, "Fetch mode: static, auto or browser")
	cmd.PersistentFlags().String("model", "", "OpenAI model name")
	cmd.PersistentFlags().String("results", "", "Path to the results CSV")
	cmd.PersistentFlags().String("blacklist", "", "Path to the search blacklist")
	cmd.PersistentFlags().Int("concurrency", DefaultCrawlConcurrency, "Maximum concurrent site crawls (0 = unbounded)")
	cmd.PersistentFlags().String("chrome-path", "", "Path to a Chrome/Chromium executable")
	cmd.PersistentFlags().Bool("no-headless", false, "Show the browser window")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (optional)")
	cmd.PersistentFlags().String("env-file", "", "Path to a .env file (default ./.env)")
}
