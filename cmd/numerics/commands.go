package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/reglet-dev/reglet-numerics/config"
	"github.com/reglet-dev/reglet-numerics/exports"
	"github.com/reglet-dev/reglet-numerics/host"
	"github.com/reglet-dev/reglet-numerics/infrastructure/jsonhost"
	wazeroadapter "github.com/reglet-dev/reglet-numerics/infrastructure/wazero"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the export table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			meta := a.registry.Describe()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(meta)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "NAME\tARITY\tSIGNATURE\n")
			for _, exp := range a.registry.Exports() {
				fmt.Fprintf(w, "%s\t%d\t%s\n", exp.Name, exp.Signature.Arity(), exp.Signature)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print module metadata as JSON")
	return cmd
}

func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call NAME [JSON-ARG...]",
		Short: "Invoke an export in process",
		Long: `Invoke an export with JSON arguments, for example:

  numerics call IRR '[-100, 110]'
  numerics call gammaDistFunction 2 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := jsonhost.New(a.registry, jsonhost.WithLogger(a.logger))
			argsJSON := "[" + strings.Join(args[1:], ",") + "]"

			out, err := h.CallJSON(cmd.Context(), args[0], []byte(argsJSON))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			// Successful results are numbers or strings; an object is an error body.
			var resp exports.ErrorResponse
			if bytes.HasPrefix(bytes.TrimSpace(out), []byte("{")) && json.Unmarshal(out, &resp) == nil && resp.Code != 0 {
				return fmt.Errorf("%s: %s", resp.Error, resp.Message)
			}
			return nil
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var (
		array   bool
		str     bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run GUEST.wasm EXPORT [F64...]",
		Short: "Run an export of a WebAssembly guest that imports the numerics module",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseFloats(args[2:])
			if err != nil {
				return err
			}
			wasm, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read guest: %w", err)
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			executor, err := host.NewExecutor(ctx, executorOptions(a)...)
			if err != nil {
				return err
			}
			defer executor.Close(ctx)

			guest, err := executor.LoadGuest(ctx, wasm)
			if err != nil {
				return err
			}
			defer guest.Close(ctx)

			name := args[1]
			var result any
			switch {
			case str:
				result, err = guest.CallString(ctx, name)
			case array:
				result, err = guest.CallArray(ctx, name, values)
			default:
				result, err = guest.CallFloat64(ctx, name, values...)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&array, "array", false, "pass the numbers as one float64 array (ptr, len)")
	flags.BoolVar(&str, "string", false, "the export takes no arguments and returns a packed string")
	flags.DurationVar(&timeout, "timeout", 0, "abort the guest call after this duration")
	cmd.MarkFlagsMutuallyExclusive("array", "string")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the configuration file",
		Args:  cobra.NoArgs,
		// Skip config loading; the schema does not depend on it.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.Schema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func executorOptions(a *app) []host.Option {
	opts := []host.Option{
		host.WithRegistry(a.registry),
		host.WithLogger(a.logger),
		host.WithABIConstraint(a.cfg.Wasm.ABIConstraint),
	}
	if n := a.cfg.Wasm.MaxArrayLength; n > 0 {
		opts = append(opts, host.WithAdapterOptions(wazeroadapter.WithMaxArrayLength(n)))
	}
	return opts
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, s := range args {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}
