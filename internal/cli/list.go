package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coderunr/judgeproxy/internal/types"
)

func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "languages"},
		Short:   "List supported programming languages",
		Long: `List the languages the judgeproxy server accepts.

Examples:
  # List all languages
  judgeproxy list

  # Include judge language ids and display names
  judgeproxy list -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("url")
			verbose, _ := cmd.Flags().GetBool("verbose")

			return listLanguages(cmd.OutOrStdout(), url, verbose)
		},
	}

	return cmd
}

func listLanguages(out io.Writer, baseURL string, verbose bool) error {
	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Get(baseURL + "/api/v1/languages")
	if err != nil {
		return fmt.Errorf("failed to fetch languages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var languages []types.LanguageInfo
	if err := json.NewDecoder(resp.Body).Decode(&languages); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	printLanguageList(out, languages, verbose)
	return nil
}

func printLanguageList(out io.Writer, languages []types.LanguageInfo, verbose bool) {
	if len(languages) == 0 {
		fmt.Fprintln(out, "No languages available")
		return
	}

	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	if verbose {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LANGUAGE\tVERSION\tJUDGE ID\tNAME")
		fmt.Fprintln(w, "--------\t-------\t--------\t----")
		for _, lang := range languages {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", lang.Language, lang.Version, lang.ID, lang.Name)
		}
		w.Flush()
		return
	}

	fmt.Fprintf(out, "Available languages (%d):\n\n", len(languages))
	for _, lang := range languages {
		bold.Fprintf(out, "%-15s", lang.Language+":")
		cyan.Fprintf(out, " %s\n", lang.Version)
	}
	fmt.Fprintln(out, "\nUse --verbose flag for judge language ids.")
}
