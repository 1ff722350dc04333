package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/marcelocantos/tubes/internal/audit"
	"github.com/marcelocantos/tubes/internal/config"
	"github.com/marcelocantos/tubes/internal/expr"
	"github.com/marcelocantos/tubes/internal/script"
)

// RunArgs executes a pipeline given as argv tokens: tubes <cmd> [¦ <cmd>]...
// Streams are inherited unless redirected with ‹ or ›.
func RunArgs(ctx context.Context, logger *audit.Logger, args []string) int {
	spec, err := Parse(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tubes: %v\n", err)
		return 2
	}

	stdin := expr.Inherit()
	if spec.RedirectIn != "" {
		f, err := os.Open(spec.RedirectIn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tubes: %v\n", err)
			return 2
		}
		defer f.Close()
		stdin = expr.File(f)
	}

	stdout := expr.Inherit()
	if spec.RedirectOut != "" {
		f, err := os.Create(spec.RedirectOut)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tubes: %v\n", err)
			return 2
		}
		defer f.Close()
		stdout = expr.File(f)
	}

	return execute(ctx, logger, spec.Root, stdin, stdout)
}

// RunScript executes a pipeline defined in the Tubesfile by name.
func RunScript(ctx context.Context, cfg *config.Config, logger *audit.Logger, name string) int {
	pipelines, err := script.Load(cfg.Script.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tubes: %v\n", err)
		return 2
	}

	root, ok := pipelines[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "tubes: no pipeline %q in %s\n", name, cfg.Script.Path)
		return 2
	}

	return execute(ctx, logger, root, expr.Inherit(), expr.Inherit())
}

func execute(ctx context.Context, logger *audit.Logger, root expr.Expression, stdin, stdout expr.Stream) int {
	start := time.Now()
	res, err := expr.NewDriver().RunWith(ctx, root, stdin, stdout, expr.Inherit())
	duration := time.Since(start)

	exitCode := res.Code
	errMsg := ""
	if err != nil {
		fmt.Fprintf(os.Stderr, "tubes: %v\n", err)
		exitCode, errMsg = 2, err.Error()
	}

	logAudit(logger, root.String(), exitCode, errMsg, duration)
	return exitCode
}

func logAudit(logger *audit.Logger, expression string, exitCode int, errMsg string, duration time.Duration) {
	if logger == nil {
		return
	}
	cwd, _ := os.Getwd()
	// Best-effort audit logging — don't fail the command if audit fails.
	_ = logger.Log(expression, exitCode, errMsg, duration, cwd)
}
