package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"xorkevin.dev/klog"
)

type (
	Cmd struct {
		rootCmd      *cobra.Command
		log          *klog.LevelLogger
		version      string
		rootFlags    rootFlags
		queriesFlags queriesFlags
		docFlags     docFlags
	}

	rootFlags struct {
		cfgFile  string
		logLevel string
	}
)

func New() *Cmd {
	return &Cmd{}
}

func (c *Cmd) Execute() {
	buildinfo := ReadVCSBuildInfo()
	c.version = buildinfo.ModVersion
	if overrideVersion := os.Getenv("CYPHERFORGE_OVERRIDE_VERSION"); overrideVersion != "" {
		c.version = overrideVersion
	}
	rootCmd := &cobra.Command{
		Use:   "cypherforge",
		Short: "A neo4j query code generator",
		Long: `A code generation utility that implements annotated go interfaces as
cypher queries run on the neo4j go driver.`,
		Version:           c.version,
		PersistentPreRun:  c.initConfig,
		DisableAutoGenTag: true,
	}
	rootCmd.PersistentFlags().StringVar(&c.rootFlags.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/.cypherforge.yaml)")
	rootCmd.PersistentFlags().StringVar(&c.rootFlags.logLevel, "log-level", "info", "log level")
	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.getQueriesCmd())
	rootCmd.AddCommand(c.getDocCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func (c *Cmd) initConfig(cmd *cobra.Command, args []string) {
	c.log = klog.NewLevelLogger(klog.New(
		klog.OptMinLevelStr(c.rootFlags.logLevel),
		klog.OptHandler(klog.NewTextSlogHandler(os.Stderr)),
	))

	if c.rootFlags.cfgFile != "" {
		viper.SetConfigFile(c.rootFlags.cfgFile)
	} else {
		viper.SetConfigName(".cypherforge")
		viper.AddConfigPath(".")

		// Search config in XDG_CONFIG_HOME directory with name ".cypherforge" (without extension).
		if cfgdir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(cfgdir)
		}
	}

	viper.SetEnvPrefix("CYPHERFORGE")
	viper.AutomaticEnv() // read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		c.log.Debug(context.Background(), "Read config", klog.AString("file", viper.ConfigFileUsed()))
	} else {
		c.log.Debug(context.Background(), "Failed reading config file", klog.AString("err", err.Error()))
	}
}

func (c *Cmd) logFatal(err error) {
	c.log.Err(context.Background(), err)
	os.Exit(1)
}
