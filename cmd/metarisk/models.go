package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	service "github.com/okian/metarisk/internal/app"
)

func newModelsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "models [id]",
		Short: "List the models, or the inputs of one model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := e.newService()
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				return printModels(out, svc)
			}
			form, err := svc.Form(args[0])
			if err != nil {
				return err
			}
			return printForm(out, form)
		},
	}
}

func printModels(w io.Writer, svc *service.Service) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tINPUTS")
	for _, m := range svc.Models() {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", m.ID, m.Name, len(m.Features))
	}
	return tw.Flush()
}

func printForm(w io.Writer, form service.Form) error {
	fmt.Fprintf(w, "%s (%s)\n", form.Model.Name, form.Model.ID)
	if form.Model.Description != "" {
		fmt.Fprintln(w, form.Model.Description)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, g := range form.Groups {
		fmt.Fprintf(tw, "\n%s\n", g.Title)
		for _, f := range g.Features {
			if opts, ok := form.Options[f.Name]; ok {
				fmt.Fprintf(tw, "  %s\t%s\tone of: %s\n", f.Name, f.DisplayLabel(), strings.Join(opts, " | "))
				continue
			}
			fmt.Fprintf(tw, "  %s\t%s\tdefault %s\n", f.Name, f.DisplayLabel(), form.Defaults[f.Name])
		}
	}
	return tw.Flush()
}
