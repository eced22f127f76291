package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/syssam/veloxext/condition"
	"github.com/syssam/veloxext/jpql"
	"github.com/syssam/veloxext/metadata"
	"github.com/syssam/veloxext/store"
)

var errInvalidMetadata = errors.New("metadata has errors")

func (a *app) validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check the entity metadata and the soft deletion configuration",
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := a.setup(ctx, c)
			if err != nil {
				return err
			}
			return a.validate(e)
		},
	}
}

func (a *app) validate(e *env) error {
	res := metadata.Validate(e.graph)
	fmt.Fprintln(a.out, res.String())
	if res.HasErrors() {
		return errInvalidMetadata
	}
	if _, err := e.bootstrap(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d entities, stores: %s\n", len(e.graph.Entities()), strings.Join(e.graph.Stores(), ", "))
	return nil
}

func (a *app) filtersCommand() *cli.Command {
	return &cli.Command{
		Name:  "filters",
		Usage: "Print the load and association filters added by soft deletion",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "snapshot", Usage: "also write the compiled mapping to this file (msgpack)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := a.setup(ctx, c)
			if err != nil {
				return err
			}
			compiled, err := e.bootstrap()
			if err != nil {
				return err
			}
			for _, name := range compiled.Names() {
				if f := compiled.Filter(name); f != "" {
					fmt.Fprintf(a.out, "%s: %s\n", name, f)
				}
				ce, _ := compiled.Entity(name)
				for _, prop := range sortedKeys(ce.Collections) {
					cc := ce.Collections[prop]
					if cc.Where != "" {
						fmt.Fprintf(a.out, "%s.%s: %s\n", name, prop, cc.Where)
					}
					if cc.ManyToManyWhere != "" {
						fmt.Fprintf(a.out, "%s.%s (link): %s\n", name, prop, cc.ManyToManyWhere)
					}
				}
			}
			if path := c.String("snapshot"); path != "" {
				data, err := compiled.MarshalSnapshot()
				if err != nil {
					return err
				}
				return os.WriteFile(path, data, 0o644)
			}
			return nil
		},
	}
}

func conditionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "entity", Aliases: []string{"e"}, Required: true, Usage: "root entity name"},
		&cli.StringFlag{Name: "property", Aliases: []string{"p"}, Usage: "property path, e.g. customer.email"},
		&cli.StringFlag{Name: "op", Value: string(condition.OpEqual), Usage: "operation, e.g. equal, contains, in_list, in_interval"},
		&cli.StringSliceFlag{Name: "value", Usage: "condition value; repeat for in_list"},
	}
}

func (a *app) whereCommand() *cli.Command {
	return &cli.Command{
		Name:  "where",
		Usage: "Compile a property condition into a query",
		Flags: append(conditionFlags(), &cli.StringFlag{Name: "alias", Value: jpql.DefaultAlias, Usage: "root alias"}),
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := a.setup(ctx, c)
			if err != nil {
				return err
			}
			cond, err := parseCondition(c.String("property"), c.String("op"), c.StringSlice("value"))
			if err != nil {
				return err
			}
			q, err := jpql.NewQueryBuilder(e.graph, jpql.WithAlias(c.String("alias"))).Build(c.String("entity"), cond)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, q.Text)
			for _, name := range sortedKeys(q.Parameters) {
				fmt.Fprintf(a.out, "  :%s = %v\n", name, q.Parameters[name])
			}
			return nil
		},
	}
}

func (a *app) queryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Load the entities matching a property condition from their store",
		Flags: conditionFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := a.setup(ctx, c)
			if err != nil {
				return err
			}
			compiled, err := e.bootstrap()
			if err != nil {
				return err
			}
			cond, err := parseCondition(c.String("property"), c.String("op"), c.StringSlice("value"))
			if err != nil {
				return err
			}
			r, err := store.Open(ctx, e.cfg, e.graph, store.WithFilters(compiled), store.WithLogger(e.log))
			if err != nil {
				return err
			}
			defer r.Close()
			rows, err := r.Select(ctx, c.String("entity"), cond)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		},
	}
}

// parseCondition builds a property condition from command line values.
// An empty property selects everything.
func parseCondition(property, op string, values []string) (condition.Condition, error) {
	if property == "" {
		return nil, nil
	}
	operation, err := condition.ParseOperation(op)
	if err != nil {
		return nil, err
	}
	switch {
	case operation.IsUnary():
		return condition.New(property, operation, true), nil
	case operation.IsInInterval():
		interval, err := condition.ParseInterval(strings.Join(values, " "))
		if err != nil {
			return nil, err
		}
		return condition.InInterval(property, interval), nil
	case operation == condition.OpInList || operation == condition.OpNotInList:
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = parseValue(v)
		}
		return condition.New(property, operation, list), nil
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("operation %s takes exactly one value, got %d", operation, len(values))
	}
	if operation.IsLike() {
		return condition.New(property, operation, values[0]), nil
	}
	return condition.New(property, operation, parseValue(values[0])), nil
}

// parseValue reads integers, floats and booleans. Anything else stays a
// string.
func parseValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
