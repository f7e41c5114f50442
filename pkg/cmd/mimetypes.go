package cmd

import (
	"github.com/spf13/cobra"

	"github.com/apoxy-dev/apoxy-static/pkg/mimetype"
	"github.com/apoxy-dev/apoxy-static/pretty"
)

var mimetypesCmd = &cobra.Command{
	Use:     "mimetypes",
	Aliases: []string{"mime"},
	Short:   "List the file extensions the server recognizes",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		border, err := cmd.Flags().GetBool("border")
		if err != nil {
			return err
		}

		rows := pretty.Rows{}
		for _, e := range mimetype.Table() {
			rows = append(rows, []interface{}{e.Ext, e.Type})
		}
		rows = append(rows, []interface{}{"(other)", mimetype.Default})

		t := pretty.Table{
			Header: pretty.Header{"EXTENSION", "CONTENT TYPE"},
			Rows:   rows,
			Out:    cmd.OutOrStdout(),
		}
		if border {
			t.Style = pretty.StyleWithBorder
		}
		t.Print()
		return nil
	},
}

func init() {
	mimetypesCmd.Flags().Bool("border", false, "Draw table borders.")

	rootCmd.AddCommand(mimetypesCmd)
}
