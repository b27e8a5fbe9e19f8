package converter

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/xxxbrian/geosite2abp/internal/fetcher"
	"github.com/xxxbrian/geosite2abp/internal/metrics"
	"github.com/xxxbrian/geosite2abp/internal/source"
)

// Options tune how rules are rendered.
type Options struct {
	// Punycode converts internationalized domains to their ASCII form.
	Punycode bool
}

// Resolver expands one root item and everything it includes into ABP lines.
// A Resolver is single-use: create one per root item.
type Resolver struct {
	root     string
	template string
	fetcher  Fetcher
	opts     Options
	log      *logrus.Entry

	visited   map[string]struct{}
	stack     []frame
	lines     []string
	ruleCount int
	fetches   int
	failures  int
}

// frame is a fetched list still being consumed.
type frame struct {
	item  string
	lines []string
	next  int
}

// NewResolver creates a Resolver for root. Every included name is expanded
// through template, the template chosen for root.
func NewResolver(root, template string, f Fetcher, opts Options) *Resolver {
	return &Resolver{
		root:     root,
		template: template,
		fetcher:  f,
		opts:     opts,
		log:      logrus.WithField("root", root),
		visited:  make(map[string]struct{}),
	}
}

// RootURL returns the URL the root item resolves to.
func (r *Resolver) RootURL() string {
	return source.Expand(r.template, r.root)
}

// Process resolves the root item and all transitive includes. Each distinct
// name is fetched at most once; fetch failures drop only their own branch.
func (r *Resolver) Process(ctx context.Context) Result {
	r.enter(ctx, r.root)
	for len(r.stack) > 0 {
		top := &r.stack[len(r.stack)-1]
		if top.next >= len(top.lines) {
			r.stack = r.stack[:len(r.stack)-1]
			continue
		}
		line := top.lines[top.next]
		top.next++
		r.handle(ctx, Classify(line))
	}
	return Result{
		Item:      r.root,
		RootURL:   r.RootURL(),
		Lines:     r.lines,
		RuleCount: r.ruleCount,
		Fetches:   r.fetches,
		Failures:  r.failures,
	}
}

// Run is Process with a panic inside the root item turned into an error, so
// one broken root cannot take the remaining roots down with it.
func (r *Resolver) Run(ctx context.Context) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			metrics.Roots.WithLabelValues("fault").Inc()
			err = fmt.Errorf("unexpected error while processing %s: %v", r.root, p)
		}
	}()
	r.log.Infof("--- Processing: %s ---", r.root)
	res = r.Process(ctx)
	metrics.Roots.WithLabelValues("ok").Inc()
	return res, nil
}

// enter fetches item and pushes its lines for processing. The name is marked
// visited before the fetch so include cycles terminate.
func (r *Resolver) enter(ctx context.Context, item string) {
	if _, ok := r.visited[item]; ok {
		r.log.Debugf("skip already visited %s", item)
		return
	}
	r.visited[item] = struct{}{}

	url := source.Expand(r.template, item)
	r.fetches++
	body, err := r.fetcher.Fetch(ctx, url)
	if err == nil && body == "" {
		err = fetcher.ErrEmptyBody
	}
	if err != nil {
		r.failures++
		r.log.WithField("item", item).Warnf("Failed to fetch %s: %v", url, err)
		return
	}

	if n := len(r.lines); n > 0 && r.lines[n-1] != "" {
		r.lines = append(r.lines, "")
	}
	r.stack = append(r.stack, frame{item: item, lines: splitLines(body)})
}

func (r *Resolver) handle(ctx context.Context, d Directive) {
	switch d.Kind {
	case LineBlank:
		r.lines = append(r.lines, "")
	case LineComment:
		r.lines = append(r.lines, d.Value)
	case LineInclude:
		r.enter(ctx, d.Value)
	case LineRegexp:
		r.emit(FormatRegexRule(d.Value), d.Kind)
	case LineFull:
		r.emitDomain(d.Value, MatchExact, d.Kind)
	case LineDomain:
		r.emitDomain(d.Value, MatchSubdomains, d.Kind)
	}
}

func (r *Resolver) emitDomain(raw string, kind MatchKind, lineKind LineKind) {
	domain := NormalizeDomain(raw)
	if domain == "" {
		return
	}
	if r.opts.Punycode {
		domain = ToASCII(domain)
	}
	r.emit(FormatDomainRule(domain, kind), lineKind)
}

func (r *Resolver) emit(rule string, kind LineKind) {
	r.lines = append(r.lines, rule)
	r.ruleCount++
	metrics.Rules.WithLabelValues(kind.String()).Inc()
}

// splitLines breaks body at every line boundary Python's str.splitlines
// honours: \n, \r, \r\n, \v, \f, \x1c-\x1e, U+0085, U+2028 and U+2029.
func splitLines(body string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 0, 4096), len(body)+1)
	sc.Split(scanLines)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i := 0; i < len(data); {
		if !atEOF && !utf8.FullRune(data[i:]) {
			return 0, nil, nil
		}
		r, size := utf8.DecodeRune(data[i:])
		switch r {
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				// a following \n may still arrive
				return 0, nil, nil
			}
			return i + 1, data[:i], nil
		case '\n', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
			return i + size, data[:i], nil
		}
		i += size
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
