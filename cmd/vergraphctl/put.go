package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	putOld string
	putNew string
)

var putCmd = &cobra.Command{
	Use:   "put",
	Short: "Insert a version as a child of another",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := requireGraphFile()
		if err != nil {
			return err
		}
		oldVersion, err := parseVersionName(putOld)
		if err != nil {
			return fmt.Errorf("--old: %w", err)
		}
		if putNew == "" {
			return fmt.Errorf("--new is required")
		}
		newVersion, err := parseVersionName(putNew)
		if err != nil {
			return fmt.Errorf("--new: %w", err)
		}

		g, err := loadGraph(file)
		if err != nil {
			return err
		}
		evicted, err := g.Put(oldVersion, newVersion)
		if err != nil {
			return err
		}
		if err := saveGraph(file, g); err != nil {
			return err
		}
		if evicted != nil {
			fmt.Printf("evicted %s\n", formatVersionName(*evicted))
		}
		return nil
	},
}

func init() {
	putCmd.Flags().StringVar(&putOld, "old", "", "claimed parent, index:hex (omit for a root put)")
	putCmd.Flags().StringVar(&putNew, "new", "", "version being inserted, index:hex")
}
