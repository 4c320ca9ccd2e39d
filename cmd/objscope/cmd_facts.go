package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"objscope/internal/access"
)

var factsPredicate string

var factsCmd = &cobra.Command{
	Use:   "facts [target]...",
	Short: "Export target shapes as Datalog facts",
	Long: `Describes each target as Mangle facts (api_kind, display_name,
source_file, mro_entry, attribute, signature_param) and prints the combined,
deduplicated store. Use --predicate to print a single relation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFacts,
}

func init() {
	factsCmd.Flags().StringVarP(&factsPredicate, "predicate", "p", "", "Only print facts of this predicate")
}

// factArity lists the exported relations.
var factArity = map[string]int{
	"api_kind":        2,
	"display_name":    2,
	"source_file":     2,
	"mro_entry":       3,
	"attribute":       3,
	"signature_param": 4,
}

func runFacts(cmd *cobra.Command, args []string) error {
	rt, err := cfg.NewRuntime()
	if err != nil {
		return err
	}
	s := access.NewSession(rt)
	store := access.NewFactStore()
	for _, target := range args {
		a, err := resolve(s, target)
		if err != nil {
			return err
		}
		if _, err := store.Add(access.Facts(a)...); err != nil {
			return fmt.Errorf("target %q: %w", target, err)
		}
	}

	out := cmd.OutOrStdout()
	if factsPredicate != "" {
		arity, ok := factArity[factsPredicate]
		if !ok {
			return fmt.Errorf("unknown predicate %q", factsPredicate)
		}
		facts, err := store.Query(factsPredicate, arity)
		if err != nil {
			return err
		}
		for _, f := range facts {
			fmt.Fprintln(out, f.String())
		}
		return nil
	}

	facts, err := store.All()
	if err != nil {
		return err
	}
	for _, f := range facts {
		fmt.Fprintln(out, f.String())
	}
	logger.Debug("facts exported", zap.Int("count", store.Count()))
	return nil
}
