package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"ArchiveDesk/internal/cli/service"
	"ArchiveDesk/internal/cli/state"
	"ArchiveDesk/internal/config"
	"ArchiveDesk/internal/model"
)

type statsCmd struct{}

func (statsCmd) Name() string { return "stats" }
func (statsCmd) Description() string {
	return "Загрузить все ресурсы параллельно и показать счётчики"
}
func (statsCmd) Usage() string { return "stats" }

func (statsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()

	fetches := map[string]func(context.Context) error{
		"departments": func(ctx context.Context) error { return root.Departments.FetchList(ctx, nil) },
		"collections": func(ctx context.Context) error { return root.Collections.FetchList(ctx, nil) },
		"records":     func(ctx context.Context) error { return root.Records.FetchList(ctx, service.RecordQuery{}) },
		"news":        func(ctx context.Context) error { return root.News.FetchList(ctx, nil) },
		"events":      func(ctx context.Context) error { return root.Events.FetchList(ctx, nil) },
		"notices":     func(ctx context.Context) error { return root.Notices.FetchList(ctx, nil) },
	}
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for name, fetch := range fetches {
		name, fetch := name, fetch
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fetch(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	snap := root.Snapshot()
	fmt.Fprintln(Out, "Resources:")
	printCount("departments", len(snap.Departments.Items), snap.Departments.Error)
	printCount("collections", len(snap.Collections.Items), snap.Collections.Error)
	printCount("records", len(snap.Records.Items), snap.Records.Error)
	printCount("news", len(snap.News.Items), snap.News.Error)
	printCount("events", len(snap.Events.Items), snap.Events.Error)
	printCount("notices", len(snap.Notices.Items), snap.Notices.Error)
	printAccessBreakdown(snap)

	fmt.Fprintln(Out, "Metrics:")
	if err := printMetrics(prometheus.DefaultGatherer, "archive_client_"); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func printCount(name string, n int, storeErr string) {
	if storeErr != "" {
		fmt.Fprintf(Out, "  %-12s error: %s\n", name, storeErr)
		return
	}
	fmt.Fprintf(Out, "  %-12s %d\n", name, n)
}

func printAccessBreakdown(snap state.Snapshot) {
	counts := map[model.AccessLevel]int{}
	for _, r := range snap.Records.Items {
		counts[r.AccessLevel]++
	}
	if len(counts) == 0 {
		return
	}
	parts := make([]string, 0, 3)
	for _, lvl := range []model.AccessLevel{model.AccessPublic, model.AccessRestricted, model.AccessConfidential} {
		parts = append(parts, fmt.Sprintf("%s=%d", lvl, counts[lvl]))
	}
	fmt.Fprintf(Out, "  %-12s %s\n", "access", strings.Join(parts, " "))
}

// printMetrics печатает счётчики с префиксом prefix в виде name{labels} value.
func printMetrics(g prometheus.Gatherer, prefix string) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), prefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			var value string
			switch {
			case m.GetCounter() != nil:
				value = fmt.Sprintf("%g", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				value = fmt.Sprintf("count=%d sum=%.3fs", h.GetSampleCount(), h.GetSampleSum())
			default:
				continue
			}
			lines = append(lines, fmt.Sprintf("  %s{%s} %s", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(Out, l)
	}
	return nil
}

func init() { RegisterCmd(statsCmd{}) }
