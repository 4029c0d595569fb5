package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var mergeWith string

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Union another wire-format file into --file",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := requireGraphFile()
		if err != nil {
			return err
		}
		if mergeWith == "" {
			return fmt.Errorf("--with is required")
		}
		other, err := os.ReadFile(mergeWith)
		if err != nil {
			return fmt.Errorf("read %s: %w", mergeWith, err)
		}
		g, err := loadGraph(file)
		if err != nil {
			return err
		}
		if err := g.ApplySerialised(other); err != nil {
			return err
		}
		return saveGraph(file, g)
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeWith, "with", "", "path to another wire-format file to merge in")
	_ = mergeCmd.MarkFlagRequired("with")
}
