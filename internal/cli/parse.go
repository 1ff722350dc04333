package cli

import (
	"fmt"

	"github.com/marcelocantos/tubes/internal/expr"
)

// Unicode operators used in command-line pipelines.
// These are not shell metacharacters, so they survive unquoted in
// bash/zsh/fish.
const (
	OpPipe        = "¦"  // U+00A6 BROKEN BAR — pipe (stdout → stdin)
	OpAndThen     = "＆＆" // U+FF06 ×2 FULLWIDTH AMPERSAND — and-then (short-circuit)
	OpRedirectIn  = "‹"  // U+2039 SINGLE LEFT-POINTING ANGLE QUOTATION MARK — redirect stdin from file
	OpRedirectOut = "›"  // U+203A SINGLE RIGHT-POINTING ANGLE QUOTATION MARK — redirect stdout to file
)

// Spec is a parsed command line: the expression tree plus optional
// redirect paths for the outermost stdin and stdout.
type Spec struct {
	Root        expr.Expression
	RedirectIn  string
	RedirectOut string
}

// Parse takes pre-tokenized args (as delivered by the shell) and builds
// a Spec. ＆＆ binds looser than ¦; both fold left to right. Redirects
// may appear anywhere and apply to the whole command.
func Parse(args []string) (*Spec, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	spec := &Spec{}

	// First pass: extract redirects from the flat arg list.
	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case OpRedirectIn:
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a file path", OpRedirectIn)
			}
			if spec.RedirectIn != "" {
				return nil, fmt.Errorf("multiple %s redirects", OpRedirectIn)
			}
			i++
			spec.RedirectIn = args[i]
		case OpRedirectOut:
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a file path", OpRedirectOut)
			}
			if spec.RedirectOut != "" {
				return nil, fmt.Errorf("multiple %s redirects", OpRedirectOut)
			}
			i++
			spec.RedirectOut = args[i]
		default:
			filtered = append(filtered, args[i])
		}
	}

	// Second pass: split on ＆＆ into sections, each section a pipeline.
	var current []string
	for _, arg := range filtered {
		if arg == OpAndThen {
			if len(current) == 0 {
				return nil, fmt.Errorf("empty command before %s", OpAndThen)
			}
			section, err := parsePipeline(current)
			if err != nil {
				return nil, err
			}
			if spec.Root == nil {
				spec.Root = section
			} else {
				spec.Root = expr.NewAnd(spec.Root, section)
			}
			current = nil
		} else {
			current = append(current, arg)
		}
	}
	if len(current) == 0 {
		return nil, fmt.Errorf("empty command after %s", OpAndThen)
	}
	section, err := parsePipeline(current)
	if err != nil {
		return nil, err
	}
	if spec.Root == nil {
		spec.Root = section
	} else {
		spec.Root = expr.NewAnd(spec.Root, section)
	}

	return spec, nil
}

// parsePipeline splits one section on ¦ and folds the segments into a
// Pipe tree.
func parsePipeline(args []string) (expr.Expression, error) {
	var root expr.Expression
	var current []string
	flush := func() error {
		if len(current) == 0 {
			return fmt.Errorf("empty segment around %s", OpPipe)
		}
		cmd := expr.NewCommand(current[0], current[1:]...)
		if root == nil {
			root = cmd
		} else {
			root = expr.NewPipe(root, cmd)
		}
		current = nil
		return nil
	}
	for _, arg := range args {
		if arg == OpPipe {
			if err := flush(); err != nil {
				return nil, err
			}
		} else {
			current = append(current, arg)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return root, nil
}
