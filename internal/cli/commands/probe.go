package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcrawl/internal/cli/output"
	"github.com/leapstack-labs/leapcrawl/pkg/crawl"
	"github.com/spf13/cobra"
)

// ProbeReport is what probe prints: the crawl context summary plus the
// adapter it came from.
type ProbeReport struct {
	Adapter string `json:"adapter" yaml:"adapter"`
	crawl.Summary `yaml:",inline"`
}

// NewProbeCommand creates the probe command.
func NewProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Connect to the target and show how each metadata category is retrieved",
		Long: `Connect to the configured target, probe its capabilities and build the
crawl context. Prints the engine's product name, catalog and schema support,
table types, and the retrieval strategy chosen for each metadata category.`,
		Args: cobra.NoArgs,
		RunE: runProbe,
	}
}

func runProbe(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	adp, cleanup, err := cc.Connect(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	overrides, err := cc.Cfg.CrawlOverrides(adp.Defaults())
	if err != nil {
		return err
	}

	rc, err := crawl.NewRetrieverContext(ctx, adp, overrides, crawl.WithLogger(cc.Logger))
	if err != nil {
		return err
	}

	report := ProbeReport{Adapter: adp.DialectName(), Summary: rc.Summary()}
	if done, err := cc.Renderer.Structured(report); done {
		return err
	}
	renderProbeText(cc.Renderer, report)
	return nil
}

func renderProbeText(r *output.Renderer, rep ProbeReport) {
	styles := r.Styles()

	r.Println(styles.Header.Render(fmt.Sprintf("%s (%s)", rep.Product, rep.Adapter)))
	r.Println("")
	r.Printf("  %s %s\n", styles.Bold.Render("catalogs:   "), yesNo(rep.SupportsCatalogs))
	r.Printf("  %s %s\n", styles.Bold.Render("schemas:    "), yesNo(rep.SupportsSchemas))
	r.Printf("  %s %s\n", styles.Bold.Render("table types:"), orNone(strings.Join(rep.TableTypes, ", ")))
	r.Printf("  %s %d\n", styles.Bold.Render("type names: "), rep.NativeTypes)
	if len(rep.UnmappedTypes) > 0 {
		r.Printf("  %s %s\n", styles.Muted.Render("unmapped:   "), strings.Join(rep.UnmappedTypes, ", "))
	}
	r.Println("")

	rows := make([][]any, 0, len(rep.Categories))
	for _, c := range rep.Categories {
		view := string(c.View)
		if !c.HasView {
			view = styles.Muted.Render(view + " (not defined)")
		}
		rows = append(rows, []any{c.Category.String(), c.Strategy.String(), view})
	}
	r.Table([]string{"category", "strategy", "view"}, rows)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
