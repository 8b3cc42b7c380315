package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"xorkevin.dev/kerrors"
)

type (
	docFlags struct {
		outputDir string
	}
)

func (c *Cmd) getDocCmd() *cobra.Command {
	docCmd := &cobra.Command{
		Use:               "doc",
		Short:             "Generate documentation for cypherforge",
		Long:              `Generate documentation for cypherforge in several formats`,
		DisableAutoGenTag: true,
	}
	docCmd.PersistentFlags().StringVarP(&c.docFlags.outputDir, "output", "o", ".", "documentation output path")

	docManCmd := &cobra.Command{
		Use:               "man",
		Short:             "Generate man page documentation for cypherforge",
		Long:              `Generate man page documentation for cypherforge`,
		Run:               c.execDocMan,
		DisableAutoGenTag: true,
	}
	docCmd.AddCommand(docManCmd)

	docMdCmd := &cobra.Command{
		Use:               "md",
		Short:             "Generate markdown documentation for cypherforge",
		Long:              `Generate markdown documentation for cypherforge`,
		Run:               c.execDocMd,
		DisableAutoGenTag: true,
	}
	docCmd.AddCommand(docMdCmd)

	return docCmd
}

func (c *Cmd) execDocMan(cmd *cobra.Command, args []string) {
	if err := doc.GenManTree(c.rootCmd, &doc.GenManHeader{
		Title:   "cypherforge",
		Section: "1",
	}, c.docFlags.outputDir); err != nil {
		c.logFatal(kerrors.WithMsg(err, "Failed to generate man page documentation"))
		return
	}
}

func (c *Cmd) execDocMd(cmd *cobra.Command, args []string) {
	if err := doc.GenMarkdownTree(c.rootCmd, c.docFlags.outputDir); err != nil {
		c.logFatal(kerrors.WithMsg(err, "Failed to generate markdown documentation"))
		return
	}
}
