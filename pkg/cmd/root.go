package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/apoxy-dev/apoxy-static/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "apoxy-static",
	Short: "Serve static files over a minimal HTTP/1.1 server.",
	Long: `apoxy-static serves files from a document root, one request per connection.

Start serving the current directory on :8080 with 'apoxy-static serve'.
`,
	DisableAutoGenTag: true,
}

// ExecuteContext executes root command with context.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&config.ConfigFile, "config", "", "Config file (default is $HOME/.apoxy/static.yaml).")
	rootCmd.PersistentFlags().BoolVar(&config.AlsoLogToStderr, "alsologtostderr", false, "Log to standard error as well as files.")
	rootCmd.PersistentFlags().BoolVarP(&config.Verbose, "verbose", "v", false, "Enable verbose output.")
}

var docsCmd = &cobra.Command{
	Use:    "gen-docs",
	Short:  "Generate Markdown docs for all commands",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		dir, err := cmd.Flags().GetString("dir")
		if err != nil {
			return fmt.Errorf("error getting docs directory: %w", err)
		}
		return GenerateDocs(dir)
	},
}

func init() {
	docsCmd.Flags().String("dir", "./docs", "Directory to write docs to.")

	rootCmd.AddCommand(docsCmd)
}

// GenerateDocs generates a single combined Markdown file in dir.
func GenerateDocs(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create docs directory: %w", err)
	}
	anchorLinks := func(s string) string {
		s = strings.ReplaceAll(s, "_", "-")
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, ".mdx", "")
		return fmt.Sprintf("#%s", s)
	}
	emptyStr := func(s string) string { return "" }
	files, err := genMarkdownTreeCustom(rootCmd, dir, emptyStr, anchorLinks)
	if err != nil {
		return err
	}
	combined := ""
	for _, file := range files {
		f, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		combined += string(f) + "\n\n"
	}
	if err = os.WriteFile(files[0], []byte(combined), 0644); err != nil {
		return err
	}
	for _, file := range files[1:] {
		os.Remove(file)
	}
	return nil
}

func genMarkdownTreeCustom(
	cmd *cobra.Command,
	dir string,
	filePrepender, linkHandler func(string) string,
) ([]string, error) {
	basename := strings.ReplaceAll(cmd.CommandPath(), " ", "_") + ".mdx"
	filename := filepath.Join(dir, basename)
	f, err := os.Create(filename)
	if err != nil {
		return []string{}, err
	}
	defer f.Close()

	if _, err := io.WriteString(f, filePrepender(filename)); err != nil {
		return []string{}, err
	}
	if err := doc.GenMarkdownCustom(cmd, f, linkHandler); err != nil {
		return []string{}, err
	}

	newFiles := []string{filename}
	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() || c.IsAdditionalHelpTopicCommand() {
			continue
		}
		if files, err := genMarkdownTreeCustom(c, dir, filePrepender, linkHandler); err != nil {
			return newFiles, err
		} else {
			newFiles = append(newFiles, files...)
		}
	}
	return newFiles, nil
}
