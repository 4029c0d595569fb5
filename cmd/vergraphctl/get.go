package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "List the current branch tips",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := requireGraphFile()
		if err != nil {
			return err
		}
		g, err := loadGraph(file)
		if err != nil {
			return err
		}
		for _, tip := range g.Get() {
			fmt.Println(formatVersionName(tip))
		}
		return nil
	},
}
