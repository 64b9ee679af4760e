package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/example/go-dotprod/internal/vector"
	"github.com/spf13/cobra"
)

var demoPairs = [][2][]int{
	{{1, 3, -5}, {4, -2, -1}},
	{{1, 2, 3, 4, 5}, {6, 7, 8, 9, 10}},
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Print the dot products of two fixed example vector pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd.OutOrStdout())
		},
	}
}

func runDemo(w io.Writer) error {
	for _, p := range demoPairs {
		got, err := vector.DotProductInt(p[0], p[1])
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "dotProduct(%s, %s) = %d\n", formatInts(p[0]), formatInts(p[1]), got); err != nil {
			return err
		}
	}
	return nil
}

func formatInts(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprint(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
