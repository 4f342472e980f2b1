package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcrawl/pkg/infoschema"
	"github.com/spf13/cobra"
)

// NewViewsCommand creates the views command.
func NewViewsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "views [KEY]",
		Short: "Show the information-schema views configured for the target",
		Long: `Show the information-schema SQL the crawl context would carry for the
configured target: the adapter's built-in views merged with views_dir and
inline overrides. With a KEY, print that view's SQL. Does not connect.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runViews,
	}
}

func runViews(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)

	adp, err := cc.NewAdapter()
	if err != nil {
		return err
	}
	overrides, err := cc.Cfg.CrawlOverrides(adp.Defaults())
	if err != nil {
		return err
	}
	views := overrides.Views

	if len(args) == 1 {
		key := infoschema.NormalizeKey(args[0])
		sql, ok := views.Get(key)
		if !ok {
			return fmt.Errorf("view %s is not defined for %s", key, adp.DialectName())
		}
		if done, err := cc.Renderer.Structured(map[string]string{string(key): sql}); done {
			return err
		}
		cc.Renderer.Println(strings.TrimSpace(sql))
		return nil
	}

	if done, err := cc.Renderer.Structured(views.Map()); done {
		return err
	}
	styles := cc.Renderer.Styles()
	rows := make([][]any, 0, views.Len())
	for _, k := range views.Keys() {
		name := string(k)
		if !k.IsKnown() {
			name = styles.Muted.Render(name)
		}
		sql, _ := views.Get(k)
		rows = append(rows, []any{name, firstLine(sql)})
	}
	cc.Renderer.Table([]string{"key", "sql"}, rows)
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
