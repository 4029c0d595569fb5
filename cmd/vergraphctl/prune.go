package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pruneTip string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete a branch tip and its unforked ancestors",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := requireGraphFile()
		if err != nil {
			return err
		}
		tip, err := parseVersionName(pruneTip)
		if err != nil {
			return fmt.Errorf("--tip: %w", err)
		}
		g, err := loadGraph(file)
		if err != nil {
			return err
		}
		if err := g.DeleteBranchUntilFork(tip); err != nil {
			return err
		}
		return saveGraph(file, g)
	},
}

func init() {
	pruneCmd.Flags().StringVar(&pruneTip, "tip", "", "branch tip, index:hex")
	_ = pruneCmd.MarkFlagRequired("tip")
}
