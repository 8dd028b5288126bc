// internal/cli/login.go
package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/law-makers/contractors/internal/credentials"
	"github.com/law-makers/contractors/internal/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login <openai|bing> [key]",
	Short: "Store an API key in the OS keyring",
	Long: `Stores the API key for a provider in your OS keyring, or in a private file under
the config directory where no keyring is available. The key is read from the
argument or, when omitted, from standard input.

OPENAI_API_KEY and BING_SEARCH_V7_SUBSCRIPTION_KEY take precedence over stored keys.`,
	Example: `  # Prompt for the key
  contractors login openai

  # Pipe the key in
  echo "$KEY" | contractors login bing`,
	Args:        cobra.RangeArgs(1, 2),
	Annotations: map[string]string{skipAppAnnotation: "true"},
	RunE:        runLogin,
}

var logoutCmd = &cobra.Command{
	Use:         "logout <openai|bing>",
	Short:       "Remove a stored API key",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipAppAnnotation: "true"},
	RunE:        runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	provider := strings.ToLower(args[0])

	var key string
	if len(args) == 2 {
		key = args[1]
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s ", ui.Bold(fmt.Sprintf("Enter %s API key:", provider)))
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read key: %w", err)
		}
		key = line
	}

	if err := credentials.NewStore("").Save(provider, key); err != nil {
		return err
	}
	log.Info().Str("provider", provider).Msg("API key stored")

	fmt.Println(ui.Success(fmt.Sprintf("✓ %s key saved", provider)))
	if env := credentials.EnvVar(provider); env != "" {
		fmt.Println(ui.Info(fmt.Sprintf("  %s overrides the stored key when set", env)))
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	provider := strings.ToLower(args[0])
	if err := credentials.NewStore("").Delete(provider); err != nil {
		return err
	}
	fmt.Println(ui.Success(fmt.Sprintf("✓ %s key removed", provider)))
	return nil
}
