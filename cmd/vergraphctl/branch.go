package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var branchTip string

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Print the branch from a tip back to its root or orphan head",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := requireGraphFile()
		if err != nil {
			return err
		}
		tip, err := parseVersionName(branchTip)
		if err != nil {
			return fmt.Errorf("--tip: %w", err)
		}
		g, err := loadGraph(file)
		if err != nil {
			return err
		}
		names, err := g.GetBranch(tip)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(formatVersionName(name))
		}
		return nil
	},
}

func init() {
	branchCmd.Flags().StringVar(&branchTip, "tip", "", "branch tip, index:hex")
	_ = branchCmd.MarkFlagRequired("tip")
}
