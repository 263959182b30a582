package cli

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/fichas/internal/catalog"
	"github.com/taibuivan/fichas/pkg/pagination"
)

// filterFlags are shared by the commands that take a selection.
type filterFlags struct {
	search  string
	filters map[string]string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "q", "", "Case-insensitive substring of id or name")
	cmd.Flags().StringToStringVarP(&f.filters, "filter", "f", nil, "Facet filter as field=value, repeatable (e.g. -f category=Agregados)")
}

func (f *filterFlags) selection(service *catalog.Service) (catalog.Selection, error) {
	selection := catalog.Selection{}.WithSearch(f.search)
	for field, value := range f.filters {
		selection = selection.With(catalog.Field(field), value)
	}

	if err := service.ValidateSelection(selection); err != nil {
		return catalog.Selection{}, err
	}
	return selection, nil
}

func newFacetsCommand() *cobra.Command {
	filter := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "facets",
		Short: "Show the options of every facet for a selection",
		Long: `Resolve the facet options for the given search and filters.

A filter whose value is no longer among its facet's options is cleared and
reported, the same way the API reports it in its reset list.`,
		Example: `  # Options with nothing selected
  fichasctl facets

  # Elementary groups reachable from one collector
  fichasctl facets -f collector=Estrutura`,
		Args: cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			service, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			selection, err := filter.selection(service)
			if err != nil {
				return err
			}

			resolution, err := service.Resolve(cmd.Context(), selection)
			if err != nil {
				return err
			}

			return a.renderer(cmd.OutOrStdout()).facets(resolution.Facets(service.Schema()), resolution.Reset)
		}),
	}

	filter.register(cmd)
	return cmd
}

func newListCommand() *cobra.Command {
	filter := &filterFlags{}
	var (
		page  int
		limit int
		sort  string
		desc  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of filtered records",
		Example: `  # First page of everything
  fichasctl list

  # Page 2 of the aggregates, 10 per page, by name
  fichasctl list -f category=Agregados --page 2 --limit 10 --sort name

  # Search, as JSON
  fichasctl list -q cimento -o json`,
		Args: cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			service, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			selection, err := filter.selection(service)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.DefaultPageSize
			}

			result, err := service.Browse(cmd.Context(), selection, catalog.PageRequest{
				Page:  page,
				Size:  min(max(limit, 1), pagination.MaxLimit),
				Order: catalog.Order{Field: catalog.Field(sort), Desc: desc},
			})
			if err != nil {
				return err
			}

			return a.renderer(cmd.OutOrStdout()).records(service.Schema(), result.Records, result.Window, result.Resolution.Reset)
		}),
	}

	filter.register(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "Page number; out of range pages are clamped")
	cmd.Flags().IntVar(&limit, "limit", pagination.DefaultLimit, "Records per page")
	cmd.Flags().StringVar(&sort, "sort", "", "Sort field (default id)")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			service, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			record, err := service.GetRecord(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return a.renderer(cmd.OutOrStdout()).record(service.Schema(), record)
		}),
	}
}
