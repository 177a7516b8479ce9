package main

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-mergefield/pkg/mergefield"
)

var referenceRegex = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)`)

func newFieldsCmd() *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "fields <template.docx>",
		Short: "List the fields of a template and check them against data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := mergefield.New(mergefield.WithCache(nil))
			tmpl, err := engine.PrepareFile(args[0])
			if err != nil {
				return err
			}
			defer tmpl.Close()

			fields, err := tmpl.Fields()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range fields {
				fmt.Fprintf(out, "%s\t%s\t%q\n", f.StartPath(), f.String(), f.Default)
			}
			if dataPath == "" {
				return nil
			}

			data, err := loadData(dataPath)
			if err != nil {
				return err
			}
			root, err := mergefield.BuildTree(fields, engine.Config().FieldKeyword)
			if err != nil {
				return err
			}
			return checkReferences(references(root), data)
		},
	}
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "YAML or JSON data file to check the references against")
	return cmd
}

// reference is a data path used by a template command.
type reference struct {
	path  string
	field string
}

// references collects the data paths used outside of loop variables, in
// document order.
func references(root *mergefield.Container) []reference {
	var out []reference
	collectReferences(root.Children, map[string]bool{"foreach": true}, &out)
	return out
}

func collectReferences(nodes []mergefield.Node, bound map[string]bool, out *[]reference) {
	add := func(path string, n mergefield.Node) {
		if head, _, _ := strings.Cut(path, "."); !bound[head] {
			*out = append(*out, reference{path: path, field: n.String()})
		}
	}

	for _, n := range nodes {
		switch n := n.(type) {
		case *mergefield.Variable:
			add(n.Path, n)
		case *mergefield.If:
			for _, m := range referenceRegex.FindAllStringSubmatch(n.Src, -1) {
				add(m[1], n)
			}
			collectReferences(n.Children, bound, out)
		case *mergefield.ForEach:
			add(n.Src, n)
			inner := make(map[string]bool, len(bound)+1)
			for k := range bound {
				inner[k] = true
			}
			inner[n.Dest] = true
			collectReferences(n.Children, inner, out)
		}
	}
}

// checkReferences reports every reference data cannot resolve, with the
// closest key paths of data.
func checkReferences(refs []reference, data mergefield.Data) error {
	ctx := mergefield.NewContext(data)
	candidates := keyPaths("", map[string]interface{}(data))

	errs := mergefield.NewMultiError()
	seen := make(map[string]bool)
	for _, ref := range refs {
		if seen[ref.path] || ctx.Resolve(ref.path) != nil {
			continue
		}
		seen[ref.path] = true

		msg := fmt.Sprintf("missing $%s used by %s", ref.path, ref.field)
		if s := suggest(ref.path, candidates); len(s) > 0 {
			msg += fmt.Sprintf(" (did you mean $%s?)", strings.Join(s, ", $"))
		}
		errs.Add(errors.New(msg))
	}
	return errs.Err()
}

// keyPaths lists the dotted paths of all mapping keys below m.
func keyPaths(prefix string, m map[string]interface{}) []string {
	var out []string
	for k, v := range m {
		path := prefix + k
		out = append(out, path)
		if child, ok := v.(map[string]interface{}); ok {
			out = append(out, keyPaths(path+".", child)...)
		}
	}
	sort.Strings(out)
	return out
}

// suggest returns up to three candidates close to path, best first.
func suggest(path string, candidates []string) []string {
	ranks := fuzzy.RankFindFold(path, candidates)
	if len(ranks) == 0 {
		// a misspelling is rarely a subsequence; compare the other way round
		for _, c := range candidates {
			if fuzzy.MatchFold(c, path) {
				ranks = append(ranks, fuzzy.Rank{Source: c, Target: c, Distance: len(path) - len(c)})
			}
		}
	}
	sort.Sort(ranks)

	var out []string
	for _, r := range ranks {
		if len(out) == 3 {
			break
		}
		out = append(out, r.Target)
	}
	return out
}
