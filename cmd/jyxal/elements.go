package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"jyxal/elements"

	"github.com/spf13/cobra"
)

func newElementsCmd() *cobra.Command {
	var extra string
	cmd := &cobra.Command{
		Use:   "elements",
		Short: "List the elements the compiler can resolve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(extra)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, key := range cat.Keys() {
				e, _ := cat.Lookup(key)
				fmt.Fprintf(w, "%s\t%s\n", key, describeElement(e))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d elements\n", cat.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&extra, "catalog", "", "YAML file with extra element definitions")
	return cmd
}

// loadCatalog returns the default catalog, extended by the YAML file at
// path when one is given
func loadCatalog(path string) (*elements.Catalog, error) {
	cat, err := elements.Default()
	if err != nil || path == "" {
		return cat, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cat.LoadYAML(data); err != nil {
		return nil, err
	}
	return cat, nil
}

func describeElement(e elements.Element) string {
	switch v := e.(type) {
	case *elements.Call:
		return v.Owner + "." + v.Method + v.Descriptor()
	case elements.NumberConstant:
		return "number " + string(v)
	case elements.StringConstant:
		return fmt.Sprintf("string %q", string(v))
	case elements.Input:
		return fmt.Sprintf("argument %d", v.Index)
	default:
		return fmt.Sprintf("%T", e)
	}
}
