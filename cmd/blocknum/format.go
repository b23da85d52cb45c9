package main

import (
	"fmt"
	"strconv"

	"github.com/shodgson/prosemirror-numbering/numeral"
	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:   "format <ordinal> [ordinal...]",
	Short: "Print the label of list items",
	Long:  "Format prints the label displayed in front of the list items with the given ordinals, at the tier given by --level.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetInt("level")
		if level < 1 {
			return fmt.Errorf("level must be at least 1, got %d", level)
		}
		for _, arg := range args {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 {
				return fmt.Errorf("invalid ordinal %q", arg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), numeral.Format(n, level))
		}
		return nil
	},
}

func init() {
	formatCmd.Flags().IntP("level", "l", 1, "list tier: 1 decimal, 2 letters, 3 and more roman numerals")
	rootCmd.AddCommand(formatCmd)
}
