package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	graphFile   string
	maxVersions uint32
	maxBranches uint32
)

var rootCmd = &cobra.Command{
	Use:   "vergraphctl",
	Short: "Inspect and mutate a vergraph wire-format file",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.vergraphctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&graphFile, "file", "", "path to the wire-format graph file")
	rootCmd.PersistentFlags().Uint32Var(&maxVersions, "max-versions", 1000, "version cap used only when --file does not yet exist")
	rootCmd.PersistentFlags().Uint32Var(&maxBranches, "max-branches", 100, "branch cap used only when --file does not yet exist")

	_ = viper.BindPFlag("file", rootCmd.PersistentFlags().Lookup("file"))
	_ = viper.BindPFlag("max-versions", rootCmd.PersistentFlags().Lookup("max-versions"))
	_ = viper.BindPFlag("max-branches", rootCmd.PersistentFlags().Lookup("max-branches"))

	rootCmd.AddCommand(putCmd, getCmd, branchCmd, pruneCmd, mergeCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".vergraphctl")
		}
	}
	viper.SetEnvPrefix("VERGRAPHCTL")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

func requireGraphFile() (string, error) {
	file := viper.GetString("file")
	if file == "" {
		return "", fmt.Errorf("--file is required")
	}
	return file, nil
}
