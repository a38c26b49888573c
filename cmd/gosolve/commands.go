package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gosolve"
	"github.com/njchilds90/gosolve/internal/config"
	"github.com/njchilds90/gosolve/internal/server"
)

type rootOptions struct {
	configPath string
	asJSON     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "gosolve",
		Short:         "Symbolic equation and inequality solver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")

	root.AddCommand(
		newSolveCmd(opts),
		newSimplifyCmd(opts),
		newDomainCmd(opts),
		newFactorCmd(opts),
		newToolCmd(opts),
		newSchemaCmd(),
		newServeCmd(opts),
	)
	return root
}

// setup loads the config and builds a solver that logs to stderr.
func (o *rootOptions) setup(cmd *cobra.Command) (config.Config, *gosolve.AlgebraSolver, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := cfg.Logger(cmd.ErrOrStderr())
	return cfg, gosolve.NewAlgebraSolver(cfg.SolverOptions(logger)...), nil
}

// readExpr decodes a JSON expression argument; "-" reads stdin.
func readExpr(cmd *cobra.Command, arg string) (gosolve.Expr, error) {
	text := arg
	if arg == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}
	return gosolve.ParseJSON(strings.TrimSpace(text))
}

func (o *rootOptions) print(cmd *cobra.Command, v interface{}, text string) error {
	if !o.asJSON {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSolveCmd(opts *rootOptions) *cobra.Command {
	var v, cmpText, upperCmp, upper string
	cmd := &cobra.Command{
		Use:   "solve LEFT RIGHT",
		Short: "Solve LEFT cmp RIGHT, or LEFT cmp RIGHT cmp2 UPPER",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, solver, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			left, err := readExpr(cmd, args[0])
			if err != nil {
				return fmt.Errorf("left: %w", err)
			}
			right, err := readExpr(cmd, args[1])
			if err != nil {
				return fmt.Errorf("right: %w", err)
			}
			c, err := gosolve.ParseComparison(cmpText)
			if err != nil {
				return err
			}
			eq := gosolve.Ineq(left, c, right)
			if upper != "" {
				c2, err := gosolve.ParseComparison(upperCmp)
				if err != nil {
					return err
				}
				hi, err := readExpr(cmd, upper)
				if err != nil {
					return fmt.Errorf("upper: %w", err)
				}
				eq = gosolve.Between(left, c, right, c2, hi)
			}

			ctx, cancel := cmd.Context(), func() {}
			if cfg.Solver.Timeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, cfg.Solver.Timeout)
			}
			defer cancel()
			res := solver.SolveEquation(ctx, v, eq)
			if err := opts.print(cmd, res, res.String()); err != nil {
				return err
			}
			if res.Status == gosolve.StatusFailed {
				return res.Err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&v, "var", "", "variable to solve for (guessed when empty)")
	cmd.Flags().StringVar(&cmpText, "cmp", "=", "comparison between LEFT and RIGHT")
	cmd.Flags().StringVar(&upper, "upper", "", "third side of a compound inequality")
	cmd.Flags().StringVar(&upperCmp, "cmp2", "<", "comparison between RIGHT and --upper")
	return cmd
}

func newSimplifyCmd(opts *rootOptions) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "simplify EXPR",
		Short: "Simplify an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := readExpr(cmd, args[0])
			if err != nil {
				return err
			}
			switch mode {
			case "basic":
				e = gosolve.Simplify(e)
			case "deep":
				e = gosolve.DeepSimplify(e)
			case "harsh":
				e = gosolve.HarshSimplify(e)
			case "expand":
				e = gosolve.Expand(e)
			default:
				return fmt.Errorf("unknown mode %q", mode)
			}
			return opts.print(cmd, gosolve.ToJSONValue(e), e.String())
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "basic", "basic, deep, harsh or expand")
	return cmd
}

func newDomainCmd(opts *rootOptions) *cobra.Command {
	var v string
	cmd := &cobra.Command{
		Use:   "domain EXPR",
		Short: "Real values of --var for which EXPR is defined",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, solver, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			e, err := readExpr(cmd, args[0])
			if err != nil {
				return err
			}
			r, err := solver.Domain(cmd.Context(), e, v)
			if err != nil {
				return err
			}
			return opts.print(cmd, r, r.String())
		},
	}
	cmd.Flags().StringVar(&v, "var", "x", "variable")
	return cmd
}

func newFactorCmd(opts *rootOptions) *cobra.Command {
	var v string
	cmd := &cobra.Command{
		Use:   "factor EXPR",
		Short: "Factor a polynomial in --var",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := readExpr(cmd, args[0])
			if err != nil {
				return err
			}
			fr := gosolve.Factor(e, v)
			factors := make([]interface{}, len(fr.Factors))
			for i, f := range fr.Factors {
				factors[i] = gosolve.ToJSONValue(f)
			}
			return opts.print(cmd, map[string]interface{}{"factors": factors, "success": fr.Success}, fr.String())
		},
	}
	cmd.Flags().StringVar(&v, "var", "x", "variable")
	return cmd
}

func newToolCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tool REQUEST",
		Short: `Run a tool request {"tool": ..., "params": {...}}`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, solver, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			text := args[0]
			if text == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(b)
			}
			var req gosolve.ToolRequest
			if err := json.Unmarshal([]byte(text), &req); err != nil {
				return fmt.Errorf("decode tool request: %w", err)
			}
			resp := solver.HandleToolCall(cmd.Context(), req)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if resp.Error != "" {
				return fmt.Errorf("%s", resp.Error)
			}
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the tool schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), gosolve.MCPToolSpec())
			return err
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger := cfg.Logger(os.Stderr)
			solver := gosolve.NewAlgebraSolver(cfg.SolverOptions(logger)...)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg, solver, logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
