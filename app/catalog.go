package app

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gtonic/defillama-mcp/pkg/config"

	"github.com/charmbracelet/glamour"
)

// Catalog prints the tool catalog rendered as markdown.
func Catalog(cfg config.Config) error {
	registry, _, err := buildRegistry(cfg)

	if err != nil {
		return err
	}

	var sb strings.Builder

	sb.WriteString("# " + Name + " tools\n\n")

	for _, t := range registry.Tools() {
		sb.WriteString("## " + t.Name + "\n\n")
		sb.WriteString(t.Description + "\n\n")

		if params := requiredParams(t.Schema); len(params) > 0 {
			sb.WriteString("Required: `" + strings.Join(params, "`, `") + "`\n\n")
		}
	}

	md, err := glamour.Render(sb.String(), "auto")

	if err != nil {
		fmt.Fprintln(os.Stdout, sb.String())
		return nil
	}

	fmt.Fprintln(os.Stdout, md)

	return nil
}

func requiredParams(schema map[string]any) []string {
	var params []string

	switch required := schema["required"].(type) {
	case []string:
		params = append(params, required...)

	case []any:
		for _, r := range required {
			if name, ok := r.(string); ok {
				params = append(params, name)
			}
		}
	}

	sort.Strings(params)

	return params
}
