package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opd-ai/voxcore"
	"github.com/opd-ai/voxcore/export"
)

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "voxrec",
		Short:         "Record voice channel speakers into separate tracks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cmd)
		},
	}

	root.PersistentFlags().String("config", "", "config file (default ./voxrec.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().String("working-dir", ".", "directory holding the .rectmps track files")

	root.AddCommand(newRecordCmd(v))
	root.AddCommand(newPurgeCmd(v))
	root.AddCommand(newFormatsCmd())
	return root
}

func initConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix("VOXREC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("voxrec")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || v.GetString("config") != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level, err := logrus.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	return nil
}

func newPurgeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove temporary tracks and exports from the working directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := v.GetString("working-dir")
			if err := voxcore.Purge(dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", dir)
			return nil
		},
	}
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List export formats",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, f := range export.Formats() {
				encoder := ""
				if f.NeedsEncoder() {
					encoder = " (ffmpeg)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-5s .%s%s\n", f.String(), f.Extension(), encoder)
			}
		},
	}
}
