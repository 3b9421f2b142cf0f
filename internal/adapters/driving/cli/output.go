package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// jsonOutput is the --json flag shared by list and get commands.
var jsonOutput bool

func addJSONFlag(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of text")
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var tableCell = lipgloss.NewStyle().PaddingRight(2)

// printTable writes rows under an upper-case header, columns aligned and
// no borders.
func printTable(cmd *cobra.Command, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(_, _ int) lipgloss.Style { return tableCell }).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(t.Render(), "\n"))
	return err
}

// errNotConfigured is returned when a command runs without its service.
func errNotConfigured(name string) error {
	return fmt.Errorf("%s service not configured", name)
}

var (
	rendererOnce     sync.Once
	markdownRenderer *glamour.TermRenderer
)

// renderMarkdown renders answers for the terminal. Output that is not a
// terminal gets the raw text.
func renderMarkdown(w io.Writer, content string) string {
	if !isTerminal(w) {
		return content
	}
	rendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			markdownRenderer = r
		}
	})
	if markdownRenderer == nil {
		return content
	}
	out, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func humanBytes(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}

func humanTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// printSources lists the citations of an answer.
func printSources(cmd *cobra.Command, chunks []domain.GroundingChunk) {
	var lines []string
	for i := range chunks {
		rc := chunks[i].RetrievedContext
		if rc == nil {
			continue
		}
		label := rc.Title
		if label == "" {
			label = truncate(strings.Join(strings.Fields(rc.Text), " "), 80)
		}
		lines = append(lines, label)
	}
	if len(lines) == 0 {
		return
	}
	cmd.Println("Sources:")
	for i, l := range lines {
		cmd.Printf("  [%d] %s\n", i+1, l)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// prompt reads one line from the command's input.
func prompt(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	cmd.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads a secret without echo when stdin is a terminal.
func readPassword(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		cmd.Print(label)
		password, err := term.ReadPassword(int(f.Fd()))
		cmd.Println()
		if err != nil {
			return "", err
		}
		return string(password), nil
	}
	return prompt(cmd, reader, label)
}

// describeError turns domain errors into advice for the terminal.
func describeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrAuthRequired):
		return errors.New("not signed in; run 'ragchat login'")
	case errors.Is(err, domain.ErrAuthExpired), errors.Is(err, domain.ErrTokenRefreshFailed):
		return errors.New("session expired; run 'ragchat login' again")
	default:
		return err
	}
}

// readAll reads the whole of stdin, trimmed.
func readAll(cmd *cobra.Command) (string, error) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
