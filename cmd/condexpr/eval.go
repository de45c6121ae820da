package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flowci/condexpr/cmd/condexpr/config"
	"github.com/flowci/condexpr/internal/trace"
	"github.com/flowci/condexpr/pkg/condexpr"
)

func newEvalCmd(_ context.Context) *cobra.Command {
	var statePath, varsPath string
	var showTrace bool

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate a condition expression and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(args[0], statePath, varsPath, showTrace)
		},
	}
	cmd.Flags().StringVar(&statePath, "state", "", "path to a JSON document bound as testData()")
	cmd.Flags().StringVar(&varsPath, "vars", "", "path to a YAML file declaring variables and extension arities")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "print the verbose coercion trace to stderr")
	return cmd
}

func runEval(expr, statePath, varsPath string, showTrace bool) error {
	// Load .env so environment overrides (applied after the vars file below)
	// work for local runs without exporting anything.
	_ = godotenv.Load()

	state := condexpr.State{Variables: map[string]interface{}{}}
	if statePath != "" {
		raw, err := os.ReadFile(statePath)
		if err != nil {
			return errors.Wrapf(err, "reading state document %s", statePath)
		}
		var doc interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return errors.Wrapf(err, "parsing state document %s", statePath)
		}
		state.Data = doc
	}

	registry := condexpr.NewRegistry()
	if err := condexpr.RegisterReferenceExtensions(registry); err != nil {
		return errors.Wrap(err, "registering reference extensions")
	}

	if varsPath != "" {
		doc, err := config.Load(varsPath)
		if err != nil {
			return err
		}
		for k, v := range doc.Variables {
			if env, ok := os.LookupEnv(k); ok {
				state.Variables[k] = env
				continue
			}
			state.Variables[k] = v
		}
		arities, err := doc.Arities()
		if err != nil {
			return err
		}
		for _, a := range arities {
			err := registry.Register(a.Name, a.Min, a.Max, func() condexpr.ExtensionFunc {
				return func(ctx condexpr.EvaluationContext, args []condexpr.Value) (condexpr.Value, error) {
					return condexpr.NewNull(), nil
				}
			})
			if err != nil {
				return errors.Wrapf(err, "registering declared extension %s", a.Name)
			}
		}
	}

	logger := logrus.New()
	if showTrace {
		logger.SetLevel(logrus.TraceLevel)
	}
	writer := trace.NewBufferedTraceWriter(logger)

	root, err := condexpr.Parse(expr, writer, registry)
	if err != nil {
		return err
	}

	result, err := root.Evaluate(condexpr.EvaluationContext{Trace: writer, State: state})
	if showTrace {
		for _, line := range writer.Lines() {
			fmt.Fprintln(os.Stderr, line)
		}
	}
	if err != nil {
		return err
	}

	fmt.Println(renderValue(result))
	return nil
}

// renderValue prints a human-readable form of a result. Array/Object have no
// lossless textual form at this layer, so they render as their kind tag.
func renderValue(v condexpr.Value) string {
	switch v.Kind() {
	case condexpr.KindNull:
		return "null"
	case condexpr.KindBoolean:
		if v.AsBoolean() {
			return "true"
		}
		return "false"
	case condexpr.KindNumber:
		return v.AsNumber().String()
	case condexpr.KindString:
		return v.AsString()
	case condexpr.KindVersion:
		return v.AsVersion().String()
	default:
		return fmt.Sprintf("<%s>", v.Kind())
	}
}
