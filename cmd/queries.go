package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"xorkevin.dev/cypherforge/queries"
)

type (
	queriesFlags struct {
		output           string
		include          string
		ignore           string
		queriesDirective string
		queryDirective   string
		cypherDirective  string
		aliasDirective   string
		nestingCap       int
		nativeTypes      []string
		manifest         string
	}
)

func (c *Cmd) getQueriesCmd() *cobra.Command {
	queriesCmd := &cobra.Command{
		Use:   "queries",
		Short: "Generates neo4j query implementations",
		Long: `Generates implementations of go interfaces annotated with cypher query
directives

An interface annotated with the queries directive is implemented by a struct
named by the directive prefix, or the interface name with its first letter
lowered, followed by Queries. Each method annotated with a query or cypher
directive runs its statement in a managed transaction of the struct Executor.

	//forge:queries players
	type Players interface {
		//forge:query value="MATCH (p:Player {id: $id}) RETURN p.active"
		IsActive(ctx context.Context, id int64) (bool, error)
	}

queries is meant to be run by go generate.`,
		Run:               c.execQueries,
		DisableAutoGenTag: true,
	}
	flags := queriesCmd.PersistentFlags()
	flags.StringVarP(&c.queriesFlags.output, "output", "o", "queries_gen.go", "output filename")
	flags.StringVar(&c.queriesFlags.include, "include", "", "regex for filenames of files that should be included")
	flags.StringVar(&c.queriesFlags.ignore, "ignore", "", "regex for filenames of files that should be ignored")
	flags.StringVar(&c.queriesFlags.queriesDirective, "queries-directive", "forge:queries", "comment directive of queries interfaces")
	flags.StringVar(&c.queriesFlags.queryDirective, "query-directive", "forge:query", "comment directive of query options")
	flags.StringVar(&c.queriesFlags.cypherDirective, "cypher-directive", "forge:cypher", "comment directive of cypher statement lines")
	flags.StringVar(&c.queriesFlags.aliasDirective, "alias-directive", "forge:alias", "comment directive of parameter aliases")
	flags.IntVar(&c.queriesFlags.nestingCap, "nesting-cap", 1, "max depth of nested lists and maps")
	flags.StringSliceVar(&c.queriesFlags.nativeTypes, "native-types", nil, "additional types decoded natively by the driver, as import/path.Name")
	flags.StringVar(&c.queriesFlags.manifest, "manifest", "", "output filename of a yaml manifest of the generated queries")

	for k, v := range map[string]string{
		"queries.output":            "output",
		"queries.include":           "include",
		"queries.ignore":            "ignore",
		"queries.directive.queries": "queries-directive",
		"queries.directive.query":   "query-directive",
		"queries.directive.cypher":  "cypher-directive",
		"queries.directive.alias":   "alias-directive",
		"queries.nestingcap":        "nesting-cap",
		"queries.nativetypes":       "native-types",
		"queries.manifest":          "manifest",
	} {
		viper.BindPFlag(k, flags.Lookup(v))
	}

	return queriesCmd
}

func (c *Cmd) execQueries(cmd *cobra.Command, args []string) {
	if err := queries.Execute(c.log.Logger, c.version, queries.Opts{
		Output:           viper.GetString("queries.output"),
		Include:          viper.GetString("queries.include"),
		Ignore:           viper.GetString("queries.ignore"),
		QueriesDirective: viper.GetString("queries.directive.queries"),
		QueryDirective:   viper.GetString("queries.directive.query"),
		CypherDirective:  viper.GetString("queries.directive.cypher"),
		AliasDirective:   viper.GetString("queries.directive.alias"),
		NestingCap:       viper.GetInt("queries.nestingcap"),
		NativeTypes:      viper.GetStringSlice("queries.nativetypes"),
		Manifest:         viper.GetString("queries.manifest"),
	}); err != nil {
		c.logFatal(err)
		return
	}
}
