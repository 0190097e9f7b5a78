package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coderunr/judgeproxy/internal/types"
)

func NewExecuteCommand() *cobra.Command {
	var (
		watch   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:     "execute <language> <file>",
		Aliases: []string{"run", "exec"},
		Short:   "Execute code file with specified language",
		Long: `Execute a code file through the judgeproxy server.

Examples:
  # Execute Python script
  judgeproxy execute python script.py

  # Read the program from stdin
  cat main.go | judgeproxy execute go -

  # Follow the judge status while waiting
  judgeproxy execute cpp main.cpp --watch`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			language := args[0]

			code, err := readSource(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}

			url, _ := cmd.Flags().GetString("url")
			verbose, _ := cmd.Flags().GetBool("verbose")

			request := types.ExecutionRequest{Language: language, Code: code}
			if watch {
				return executeWatch(cmd.Context(), cmd.OutOrStdout(), url, request, verbose)
			}
			return executeOnce(cmd.OutOrStdout(), url, request, timeout, verbose)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Stream judge status updates over WebSocket")
	cmd.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "HTTP request timeout")

	return cmd
}

// readSource reads the program from a file, or from stdin when name is "-"
func readSource(stdin io.Reader, name string) (string, error) {
	var (
		content []byte
		err     error
	)
	if name == "-" {
		content, err = io.ReadAll(stdin)
	} else {
		content, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", name, err)
	}
	return string(content), nil
}

func executeOnce(out io.Writer, url string, request types.ExecutionRequest, timeout time.Duration, verbose bool) error {
	reqBody, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(url+"/api/v1/execute", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if verbose {
		fmt.Fprintf(out, "Execution ID: %s\n", resp.Header.Get("X-Execution-ID"))
	}

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	var result types.ExecutionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	printResult(out, result)
	return nil
}

// responseError turns a non-200 reply into an error carrying the server's message
func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp types.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("execution failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if errResp.Details != "" {
		return fmt.Errorf("execution failed with status %d: %s (%s)", resp.StatusCode, errResp.Error, errResp.Details)
	}
	return fmt.Errorf("execution failed with status %d: %s", resp.StatusCode, errResp.Error)
}

func printResult(out io.Writer, result types.ExecutionResult) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	if result.Output != nil && *result.Output != "" {
		bold.Fprintln(out, "OUTPUT")
		fmt.Fprint(out, indentLines(*result.Output))
	}

	if result.Error != nil && *result.Error != "" {
		bold.Fprintln(out, "ERROR")
		fmt.Fprint(out, indentLines(*result.Error))
	}

	fmt.Fprint(out, "Status: ")
	if result.Status == "Accepted" {
		green.Fprintln(out, result.Status)
	} else {
		red.Fprintln(out, result.Status)
	}
}

func indentLines(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n") + "\n"
}
