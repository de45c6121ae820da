package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowci/condexpr/pkg/condexpr"
)

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <expression>",
		Short: "Parse a condition expression without evaluating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := condexpr.Parse(args[0], nil, nil)
			if err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}
