package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/marcelocantos/tubes/internal/config"
	"github.com/marcelocantos/tubes/internal/script"
)

// RunList lists the pipelines defined in the Tubesfile.
func RunList(w io.Writer, cfg *config.Config) int {
	pipelines, err := script.Load(cfg.Script.Path)
	if err != nil {
		fmt.Fprintf(w, "tubes list: %v\n", err)
		return 1
	}

	names := make([]string, 0, len(pipelines))
	for name := range pipelines {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "%-20s %s\n", name, pipelines[name])
	}
	return 0
}
