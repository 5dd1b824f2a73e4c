package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/metarisk/internal/app"
	"github.com/okian/metarisk/internal/client"
	"github.com/okian/metarisk/internal/domain/collect"
)

// ErrBadAssignment marks a --set value that is not name=value.
var ErrBadAssignment = errors.New("expected name=value")

type scoreOptions struct {
	model    string
	sets     []string
	remote   string
	defaults bool
	json     bool
	timeout  time.Duration
}

func newScoreCmd(e *env) *cobra.Command {
	o := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Assess one patient with a model",
		Example: `  metarisk score --model baseline --set sex="1 (male)" --set age=52 --set bmi=27.4
  metarisk score --model clinical --remote http://localhost:9080 --set hba1c=6.1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.score(cmd.Context(), cmd.OutOrStdout(), o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.model, "model", "m", "", "model id")
	f.StringArrayVarP(&o.sets, "set", "s", nil, "input value as name=value (repeatable)")
	f.StringVar(&o.remote, "remote", "", "score through a running server at this base URL")
	f.BoolVar(&o.defaults, "defaults", true, "fill unset inputs with the form defaults")
	f.BoolVar(&o.json, "json", false, "print the assessment as JSON")
	f.DurationVar(&o.timeout, "timeout", 30*time.Second, "request timeout with --remote")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

// parseSets turns repeated name=value flags into raw form values. Later
// assignments win.
func parseSets(sets []string) (map[string]string, error) {
	out := make(map[string]string, len(sets))
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadAssignment, s)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}

func withDefaults(raw, defaults map[string]string) map[string]string {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range raw {
		out[k] = v
	}
	return out
}

func (e *env) score(ctx context.Context, w io.Writer, o *scoreOptions) error {
	raw, err := parseSets(o.sets)
	if err != nil {
		return err
	}

	var a service.Assessment
	if o.remote != "" {
		a, err = scoreRemote(ctx, o, raw)
	} else {
		a, err = e.scoreLocal(ctx, o, raw)
	}
	if err != nil {
		printFieldErrors(w, err)
		return err
	}

	if o.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}
	fmt.Fprintf(w, "Model:       %s (%s)\n", a.ModelName, a.ModelID)
	fmt.Fprintf(w, "Probability: %.1f%%\n", a.Probability*100)
	fmt.Fprintf(w, "Risk tier:   %s\n", a.Tier)
	fmt.Fprintf(w, "Advice:      %s\n", a.Advice)
	return nil
}

func (e *env) scoreLocal(ctx context.Context, o *scoreOptions, raw map[string]string) (service.Assessment, error) {
	svc := e.newService()
	if err := svc.Start(ctx); err != nil {
		return service.Assessment{}, err
	}
	defer svc.Stop()

	if o.defaults {
		form, err := svc.Form(o.model)
		if err != nil {
			return service.Assessment{}, err
		}
		raw = withDefaults(raw, form.Defaults)
	}
	return svc.Submit(ctx, o.model, raw)
}

func scoreRemote(ctx context.Context, o *scoreOptions, raw map[string]string) (service.Assessment, error) {
	c := client.New(o.remote, client.WithTimeout(o.timeout))
	if o.defaults {
		form, err := c.Form(ctx, o.model)
		if err != nil {
			return service.Assessment{}, err
		}
		raw = withDefaults(raw, form.Defaults)
	}
	return c.Assess(ctx, o.model, raw)
}

// printFieldErrors lists rejected inputs from either pipeline.
func printFieldErrors(w io.Writer, err error) {
	for _, fe := range collect.FieldErrors(err) {
		fmt.Fprintf(w, "  %s: %v (got %q)\n", fe.Feature, fe.Kind, fe.Value)
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		for _, fe := range apiErr.Fields {
			fmt.Fprintf(w, "  %s: %s (got %q)\n", fe.Feature, fe.Error, fe.Value)
		}
	}
}
