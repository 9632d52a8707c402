package app

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/cobjpanel/internal/domain/model"
)

// NewRecords returns the "records" command group.
func NewRecords(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "list or create custom object records",
	}
	cmd.AddCommand(newRecordsList(opts), newRecordsCreate(opts))
	return cmd
}

func newRecordsList(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list up to 100 records with the configured properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.recordService(cmd.Context())
			if err != nil {
				return err
			}

			records, err := svc.ListRecords(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", model.UserMessage(err), err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			props := svc.Properties()
			header := append([]string{"ID"}, props...)
			fmt.Fprintln(tw, strings.ToUpper(strings.Join(header, "\t")))
			for _, rec := range records {
				row := []string{rec.ID}
				for _, name := range props {
					row = append(row, oneLine(rec.Value(name)))
				}
				fmt.Fprintln(tw, strings.Join(row, "\t"))
			}
			return tw.Flush()
		},
	}
}

type recordsCreate struct {
	opts *Options
	sets []string
}

func newRecordsCreate(opts *Options) *cobra.Command {
	c := &recordsCreate{opts: opts}
	cmd := &cobra.Command{
		Use:   "create --set <property>=<value> ...",
		Short: "create one record; unknown properties are dropped",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	cmd.Flags().StringArrayVar(&c.sets, "set", nil, "property assignment, repeatable")
	return cmd
}

func (c *recordsCreate) run(cmd *cobra.Command, _ []string) error {
	sub, err := parseAssignments(c.sets)
	if err != nil {
		return err
	}

	svc, err := c.opts.recordService(cmd.Context())
	if err != nil {
		return err
	}

	record, err := svc.CreateRecord(cmd.Context(), sub)
	if err != nil {
		return fmt.Errorf("%s: %w", model.UserMessage(err), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s %s\n", svc.ObjectType(), record.ID)
	return nil
}

// parseAssignments turns "name=value" pairs into a submission. The first
// assignment of a repeated name wins, matching form posts.
func parseAssignments(sets []string) (model.Submission, error) {
	sub := model.Submission{}
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected <property>=<value>", s)
		}
		if _, seen := sub[name]; !seen {
			sub[name] = value
		}
	}
	return sub, nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
