package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// NewRootCmd creates the root command for the fcctl CLI.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fcctl",
		Short: "Drive Firecracker microVMs through the firecracker-sdk",
		Long: `fcctl is a thin command-line wrapper over the firecracker-sdk:
it can launch a microVM directly ("run"), or drive the lifecycle and
resource configuration of an already-running instance over its API
socket ("boot", "drives", "network", "machine", "balloon", "mmds",
"actions", "snapshot").`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fcctl.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("socket", "", "path to a running instance's API socket")
	rootCmd.PersistentFlags().String("binary", "", "path to the firecracker binary (run command only)")

	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("socket", rootCmd.PersistentFlags().Lookup("socket"))
	viper.BindPFlag("binary", rootCmd.PersistentFlags().Lookup("binary"))

	rootCmd.AddCommand(newVersionCmd(version))
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newBootCmd())
	rootCmd.AddCommand(newDrivesCmd())
	rootCmd.AddCommand(newNetworkCmd())
	rootCmd.AddCommand(newMachineCmd())
	rootCmd.AddCommand(newBalloonCmd())
	rootCmd.AddCommand(newMetricsCmd())
	rootCmd.AddCommand(newMmdsCmd())
	rootCmd.AddCommand(newActionsCmd())
	rootCmd.AddCommand(newSnapshotsCmd())
	rootCmd.AddCommand(newDashboardCmd())

	return rootCmd
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".fcctl")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FCCTL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return nil
}
