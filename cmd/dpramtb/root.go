package main

import (
	"os"

	"github.com/sarchlab/dpramtb/config"
	"github.com/spf13/cobra"
)

// options are shared by the subcommands.
type options struct {
	configPath string
	workDir    string
	env        map[string]string
	flagValues config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{
		env:        config.EnvMap(os.Environ()),
		flagValues: config.Default(),
	}

	rootCmd := &cobra.Command{
		Use:   "dpramtb",
		Short: "Verifies a dual-port RAM with two clocks.",
		Long: `dpramtb writes random data to every address of a simulated ` +
			`dual-port RAM through port A and reads it back through port B, ` +
			`each port running on its own clock.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file, "+config.FileName+" in the work dir by default")
	rootCmd.PersistentFlags().StringVarP(&opts.workDir, "cwd", "C", "",
		"work dir, the current dir by default")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))

	return rootCmd
}

func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	return config.Load(config.LoadInput{
		WorkDir:    o.workDir,
		ConfigPath: o.configPath,
		Env:        o.env,
		Flags:      cmd.Flags(),
		FlagValues: &o.flagValues,
	})
}
