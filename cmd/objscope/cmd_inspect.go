package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"objscope/internal/access"
	"objscope/internal/config"
	"objscope/internal/logging"
	"objscope/internal/metrics"
	"objscope/internal/object"
)

var (
	showAttrs bool
	showDoc   bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [target]...",
	Short: "Describe targets without running code they define",
	Long: `Resolves each module:attr.path target in its own runtime and prints its
kind, qualified name, repr, signature and a bounded preview of its items.
Targets are inspected concurrently, up to limits.max_concurrent_targets.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

type attrVerdict struct {
	Name string
	Safe bool
}

// report is what inspect prints for one target. Err is set when the target
// could not be resolved; the other fields are then empty.
type report struct {
	Target     string
	Kind       access.APIKind
	QualName   string
	Repr       string
	Signature  string
	SourceFile string
	Doc        string
	Preview    []string
	Attrs      []attrVerdict
	Err        error
}

func runInspect(cmd *cobra.Command, args []string) error {
	var m *metrics.SessionMetrics
	if cfg.Metrics.Enabled {
		var err error
		if m, err = metrics.NewSessionMetrics(prometheus.NewRegistry()); err != nil {
			return err
		}
	}

	reports, err := inspectAll(cmd.Context(), cfg, m, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
		renderReport(out, r)
	}

	if m != nil {
		lines, err := m.Summary()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, headerStyle.Render("metrics"))
		for _, l := range lines {
			fmt.Fprintln(out, "  "+l)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d targets failed", failed, len(reports))
	}
	return nil
}

// inspectAll resolves targets concurrently. Each target gets a fresh
// runtime and session since neither is safe for concurrent use. Per-target
// failures land in the report; only cancellation fails the whole run.
func inspectAll(ctx context.Context, cfg *config.Config, m *metrics.SessionMetrics, targets []string) ([]report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reports := make([]report, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Limits.MaxConcurrentTargets)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			timer := logging.StartTimer(logging.CategoryAccess, "inspect "+target)
			defer timer.StopWithThreshold(cfg.SlowOperationThreshold())

			rt, err := cfg.NewRuntime()
			if err != nil {
				return err
			}
			opts := []access.SessionOption{}
			if m != nil {
				opts = append(opts, access.WithMetrics(m))
			}
			s := access.NewSession(rt, opts...)
			reports[i] = inspectTarget(s, target)
			if logger != nil && reports[i].Err != nil {
				logger.Debug("target failed", zap.String("target", target), zap.Error(reports[i].Err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func inspectTarget(s *access.Session, target string) report {
	r := report{Target: target}
	a, err := resolve(s, target)
	if err != nil {
		r.Err = err
		return r
	}

	r.Kind = a.APIKind()
	if qn, ok := a.QualifiedName(); ok {
		r.QualName = qn
	}
	if repr, err := a.Repr(); err == nil {
		r.Repr = repr
	} else {
		r.Repr = "<repr failed: " + err.Error() + ">"
	}
	if sig, err := a.SignatureString(); err == nil {
		r.Signature = sig
	}
	if file, ok := a.SourceFile(); ok {
		r.SourceFile = file
	}
	if showDoc {
		r.Doc = a.Doc(false)
	}
	if items, err := a.IterPreview(); err == nil {
		for _, item := range items {
			r.Preview = append(r.Preview, previewString(s, item))
		}
	}
	if showAttrs {
		for _, name := range a.Dir() {
			safe, err := a.IsAllowedGetattr(name)
			if err != nil {
				continue
			}
			r.Attrs = append(r.Attrs, attrVerdict{Name: name, Safe: safe})
		}
	}
	return r
}

// previewString shows literals by repr. Anything else is shown by kind and
// name, since repr may run a script hook.
func previewString(s *access.Session, item *access.Access) string {
	if v, err := item.SafeValue(); err == nil {
		if r, err := object.Repr(s.Runtime(), v); err == nil {
			return r
		}
	}
	if name, ok := item.QualifiedName(); ok {
		return "<" + string(item.APIKind()) + " " + name + ">"
	}
	return "<" + string(item.APIKind()) + ">"
}

func renderReport(w io.Writer, r report) {
	if r.Err != nil {
		fmt.Fprintln(w, errorStyle.Render(r.Target+": "+r.Err.Error()))
		return
	}
	lines := []string{
		headerStyle.Render(r.Target),
		field("kind", string(r.Kind)),
	}
	if r.QualName != "" {
		lines = append(lines, field("name", r.QualName))
	}
	lines = append(lines, field("repr", r.Repr))
	if r.Signature != "" {
		lines = append(lines, field("signature", r.Signature))
	}
	if r.SourceFile != "" {
		lines = append(lines, field("file", r.SourceFile))
	}
	if len(r.Preview) > 0 {
		suffix := ""
		if len(r.Preview) == access.PreviewLimit {
			suffix = ", ..."
		}
		lines = append(lines, field("items", "["+strings.Join(r.Preview, ", ")+suffix+"]"))
	}
	if r.Doc != "" {
		lines = append(lines, "", r.Doc)
	}
	if len(r.Attrs) > 0 {
		lines = append(lines, "")
		for _, attr := range r.Attrs {
			if attr.Safe {
				lines = append(lines, safeStyle.Render("  + "+attr.Name))
			} else {
				lines = append(lines, unsafeStyle.Render("  ! "+attr.Name))
			}
		}
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}
