package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sphere/internal/model"
	"sphere/internal/service"
)

func newUsersCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect portal users",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := o.open()
			users, err := service.NewUserService(s.client, nil).List(cmd.Context())
			if err != nil {
				return s.check(err)
			}
			return o.render(cmd.OutOrStdout(), users, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
				for i := range users {
					u := &users[i]
					_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, roleLabel(u), u.IsActive)
				}
				return tw.Flush()
			})
		},
	})
	return cmd
}

func newDepartmentsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "departments",
		Aliases: []string{"depts"},
		Short:   "Inspect departments",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List departments",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := o.open()
			depts, err := service.NewDepartmentService(s.client).List(cmd.Context())
			if err != nil {
				return s.check(err)
			}
			return o.render(cmd.OutOrStdout(), depts, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tCODE\tNAME\tACTIVE")
				for _, d := range depts {
					_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", d.ID, d.Code, d.Name, d.IsActive)
				}
				return tw.Flush()
			})
		},
	})
	return cmd
}

func newLogsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect the audit trail",
	}

	var filters model.AuditLogFilters
	list := &cobra.Command{
		Use:     "list",
		Short:   "List audit log entries",
		Example: `  portalctl logs list --action login --page 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := o.open()
			page, err := service.NewAuditLogService(s.client, nil).List(cmd.Context(), filters)
			if err != nil {
				return s.check(err)
			}
			return o.render(cmd.OutOrStdout(), page, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tWHEN\tUSER\tACTION\tENTITY")
				for _, l := range page.Logs {
					who := "-"
					if l.User != nil {
						who = l.User.Name
					}
					_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s#%d\n", l.ID, l.CreatedAt, who, l.Action, l.EntityType, l.EntityID)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				p := page.Pagination
				_, err := fmt.Fprintf(w, "page %d of %d (%d entries)\n", p.CurrentPage, p.LastPage, p.Total)
				return err
			})
		},
	}
	f := list.Flags()
	f.StringVar(&filters.Action, "action", "", "only this action")
	f.StringVar(&filters.EntityType, "entity-type", "", "only this entity type")
	f.StringVar(&filters.Search, "search", "", "free-text search")
	f.StringVar(&filters.DateFrom, "from", "", "earliest date (YYYY-MM-DD)")
	f.StringVar(&filters.DateTo, "to", "", "latest date (YYYY-MM-DD)")
	f.IntVar(&filters.Page, "page", 1, "page number")
	f.IntVar(&filters.PerPage, "per-page", 0, "entries per page")

	cmd.AddCommand(list)
	return cmd
}
