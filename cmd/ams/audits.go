package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ams-studio/ams/pkg/models"
	"github.com/ams-studio/ams/pkg/paginate"
	"github.com/ams-studio/ams/pkg/screen"
)

func newAuditsCmd(flags *rootFlags) *cobra.Command {
	var (
		afip        bool
		pages       int
		pageSize    int
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "audits",
		Short: "List audits, most recent first",
		RunE: run(flags, true, func(cmd *cobra.Command, a *app, _ []string) error {
			if pageSize <= 0 {
				pageSize = a.cfg.List.PageSize
			}
			p := a.printer(cmd)
			l := screen.NewAuditList(a.client, p, pageSize, a.cfg.List.ScrollThreshold, a.log)
			ctx := cmd.Context()

			if !interactive {
				l.ShowPages(ctx, afip, pages)
				return shown(p.LastError())
			}

			l.ShowPages(ctx, afip, 1)
			in := bufio.NewScanner(cmd.InOrStdin())
			for l.State() == paginate.Ready && ctx.Err() == nil {
				fmt.Fprint(cmd.ErrOrStderr(), "-- Enter for more, q to quit -- ")
				if !in.Scan() || strings.EqualFold(strings.TrimSpace(in.Text()), "q") {
					break
				}
				l.ScrollToEnd(ctx)
				l.Wait()
			}
			return shown(p.LastError())
		}),
	}

	cmd.Flags().BoolVar(&afip, "afip", false, "list AFIP audits instead of internal ones")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to reveal")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "audits per page (default from config)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "reveal one more page per Enter")
	return cmd
}

func newInputsCmd(flags *rootFlags) *cobra.Command {
	var afip bool

	cmd := &cobra.Command{
		Use:   "inputs <auditId>",
		Short: "Show the people attached to an audit",
		Args:  cobra.ExactArgs(1),
		RunE: run(flags, true, func(cmd *cobra.Command, a *app, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid audit id %q", args[0])
			}
			d := screen.NewAuditDetail(a.client, a.printer(cmd))
			return shown(d.Load(cmd.Context(), id, models.KindOf(afip)))
		}),
	}

	cmd.Flags().BoolVar(&afip, "afip", false, "the audit is an AFIP audit")
	return cmd
}
