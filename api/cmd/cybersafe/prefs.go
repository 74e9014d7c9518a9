package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cybersafe/api/internal/prefs"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change local preferences (language, theme, category)",
}

var prefsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one preference, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPrefsGet,
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a preference",
	Args:  cobra.ExactArgs(2),
	RunE:  runPrefsSet,
}

func init() {
	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)
}

func runPrefsGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, done, err := openPrefs(ctx)
	if err != nil {
		return err
	}
	defer done()

	keys := prefs.Keys
	if len(args) == 1 {
		keys = args
	}
	for _, k := range keys {
		v, err := p.Get(ctx, k)
		if err != nil {
			return err
		}
		if len(keys) == 1 {
			fmt.Fprintln(cmd.OutOrStdout(), v)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-9s %s\n", k, v)
	}
	return nil
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, done, err := openPrefs(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := p.Set(ctx, args[0], args[1]); err != nil {
		return err
	}
	v, _ := p.Get(ctx, args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], v)
	return nil
}
