package main

import (
	"os"

	"github.com/aretw0/aastree/internal/cli"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree FILE",
	Short: "Print the rows of a package",
	Long: `Prints the package view of FILE, or with --path the detail view of the item
selected by --item. Item paths are relative to the package row.`,
	Args: cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		return cli.RunTree(env, os.Stdout, editOptions(cmd, args[0]))
	}),
}

var showCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Describe one row and its children",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		return cli.RunShow(env, os.Stdout, editOptions(cmd, args[0]))
	}),
}

var setCmd = &cobra.Command{
	Use:   "set FILE VALUE",
	Short: "Replace the value of a row and save the package",
	Long: `Parses VALUE against the current value of the row. Strings are taken
verbatim; anything else is read as YAML, so objects are written as
{modelType: Property, idShort: X, valueType: "xs:int", value: 1}.`,
	Args: cobra.ExactArgs(2),
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		return cli.RunSet(env, os.Stdout, editOptions(cmd, args[0]), args[1])
	}),
}

var addCmd = &cobra.Command{
	Use:   "add FILE VALUE",
	Short: "Insert a value under a row and save the package",
	Args:  cobra.ExactArgs(2),
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		return cli.RunAdd(env, os.Stdout, editOptions(cmd, args[0]), args[1])
	}),
}

var rmCmd = &cobra.Command{
	Use:   "rm FILE",
	Short: "Remove a row, or reset it when it is an attribute, and save the package",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		return cli.RunClear(env, os.Stdout, editOptions(cmd, args[0]))
	}),
}

var findCmd = &cobra.Command{
	Use:   "find FILE QUERY",
	Short: "List rows whose name contains QUERY",
	Args:  cobra.ExactArgs(2),
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return cli.RunFind(env, os.Stdout, editOptions(cmd, args[0]), args[1], limit)
	}),
}

var convertCmd = &cobra.Command{
	Use:   "convert SRC DST",
	Short: "Rewrite a package in the format of the DST extension",
	Args:  cobra.ExactArgs(2),
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		return cli.RunConvert(env, args[0], args[1])
	}),
}

func editOptions(cmd *cobra.Command, file string) cli.EditOptions {
	item, _ := cmd.Flags().GetString("item")
	path, _ := cmd.Flags().GetString("path")
	depth, _ := cmd.Flags().GetInt("depth")
	plain, _ := cmd.Flags().GetBool("plain")
	return cli.EditOptions{File: file, Item: item, Path: path, Depth: depth, Plain: plain}
}

func addTargetFlags(cmd *cobra.Command, depth int) {
	cmd.Flags().StringP("item", "i", "", "Item path relative to the package row")
	cmd.Flags().StringP("path", "p", "", "Path inside the detail view of the item ('/' for its root)")
	cmd.Flags().Bool("plain", false, "Disable colors and markdown rendering")
	if depth > 0 {
		cmd.Flags().IntP("depth", "d", depth, "Number of levels to expand")
	}
}

func init() {
	addTargetFlags(treeCmd, 2)
	addTargetFlags(showCmd, 0)
	addTargetFlags(setCmd, 0)
	addTargetFlags(addCmd, 0)
	addTargetFlags(rmCmd, 0)
	addTargetFlags(findCmd, 8)
	findCmd.Flags().Int("limit", 0, "Maximum number of hits (0 for all)")

	rootCmd.AddCommand(treeCmd, showCmd, setCmd, addCmd, rmCmd, findCmd, convertCmd)
}
