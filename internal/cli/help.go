package cli

import (
	"fmt"
	"io"
)

// RunHelp prints general usage.
func RunHelp(w io.Writer) int {
	fmt.Fprintln(w, "tubes — process expression pipelines")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "usage:")
	fmt.Fprintf(w, "  tubes <cmd> [args...] [%s <cmd>...]  run a pipeline given as argv tokens\n", OpPipe)
	fmt.Fprintln(w, "  tubes --run <name>                  run a pipeline from the Tubesfile")
	fmt.Fprintln(w, "  tubes --list                        list Tubesfile pipelines")
	fmt.Fprintln(w, "  tubes --serve                       serve the engine over MCP stdio")
	fmt.Fprintln(w, "  tubes --audit <verify|show|tail>    audit log operations")
	fmt.Fprintln(w, "  tubes --help                        show this help")
	fmt.Fprintln(w, "  tubes --version                     show version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "operators:")
	fmt.Fprintf(w, "  %s   pipe (stdout → stdin)\n", OpPipe)
	fmt.Fprintf(w, "  %s  and-then (run next if previous succeeded)\n", OpAndThen)
	fmt.Fprintf(w, "  %s   redirect stdin from file\n", OpRedirectIn)
	fmt.Fprintf(w, "  %s   redirect stdout to file\n", OpRedirectOut)
	return 0
}
