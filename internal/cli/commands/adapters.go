package commands

import (
	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
	"github.com/spf13/cobra"
)

// AdapterInfo describes a registered adapter and its built-in defaults.
type AdapterInfo struct {
	Name          string `json:"name" yaml:"name"`
	Views         int    `json:"views" yaml:"views"`
	Quote         string `json:"quote" yaml:"quote"`
	Normalization string `json:"normalization" yaml:"normalization"`
	Reserved      int    `json:"reserved_words" yaml:"reserved_words"`
}

// NewAdaptersCommand creates the adapters command.
func NewAdaptersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List the registered database adapters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			infos := listAdapterInfo()

			if done, err := cc.Renderer.Structured(infos); done {
				return err
			}
			rows := make([][]any, 0, len(infos))
			for _, a := range infos {
				rows = append(rows, []any{a.Name, a.Views, a.Quote, a.Normalization, a.Reserved})
			}
			cc.Renderer.Table([]string{"adapter", "views", "quote", "normalization", "reserved"}, rows)
			return nil
		},
	}
}

func listAdapterInfo() []AdapterInfo {
	names := adapter.ListAdapters()
	infos := make([]AdapterInfo, 0, len(names))
	for _, name := range names {
		factory, ok := adapter.Get(name)
		if !ok {
			continue
		}
		d := factory(nil).Defaults()
		info := AdapterInfo{Name: name, Views: d.Views.Len()}
		if d.Identifiers != nil {
			idc := d.Identifiers.Config()
			info.Quote = idc.Quote
			info.Normalization = idc.Normalization.String()
			info.Reserved = len(d.Identifiers.ReservedWords())
		}
		infos = append(infos, info)
	}
	return infos
}
