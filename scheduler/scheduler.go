// Package scheduler runs named jobs on cron schedules with a seconds field,
// e.g. "0 */5 * * * *" for every five minutes.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSpec checks that spec is a valid six-field cron expression or
// descriptor such as "@every 1m".
func ParseSpec(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("cron spec %q: %w", spec, err)
	}
	return nil
}

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

type Options struct {
	Logger *slog.Logger
}

// Entry describes a registered job.
type Entry struct {
	Name string
	Spec string
	Next time.Time
	Prev time.Time
}

type job struct {
	spec string
	id   cron.EntryID
	fn   Job
	runs int
	errs int
}

// Scheduler wraps a cron.Cron. A job whose previous run is still going is
// skipped rather than queued.
type Scheduler struct {
	ctx  context.Context
	cron *cron.Cron
	log  *slog.Logger

	mu   sync.Mutex
	jobs map[string]*job
}

// New returns a stopped scheduler whose jobs receive ctx.
func New(ctx context.Context, opts Options) *Scheduler {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	cl := cronLogger{l}
	return &Scheduler{
		ctx:  ctx,
		log:  l,
		jobs: make(map[string]*job),
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
}

// Add registers fn under name. Names must be unique.
func (s *Scheduler) Add(name, spec string, fn Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("register %s: job already exists", name)
	}
	j := &job{spec: spec, fn: fn}
	id, err := s.cron.AddFunc(spec, func() { s.run(name, j) })
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	j.id = id
	s.jobs[name] = j
	return nil
}

// RunNow runs the named job synchronously and returns its error.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.run(name, j)
}

func (s *Scheduler) run(name string, j *job) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := j.fn(s.ctx)

	s.mu.Lock()
	j.runs++
	if err != nil {
		j.errs++
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error("job failed", "job", name, "err", err, "elapsed", time.Since(start))
		return err
	}
	s.log.Debug("job done", "job", name, "elapsed", time.Since(start))
	return nil
}

// Runs reports how many times the named job has run and how many of those
// runs failed.
func (s *Scheduler) Runs(name string) (runs, failures int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[name]; ok {
		return j.runs, j.errs
	}
	return 0, 0
}

// Entries lists registered jobs by name.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.jobs))
	for name, j := range s.jobs {
		e := s.cron.Entry(j.id)
		out = append(out, Entry{Name: name, Spec: j.spec, Next: e.Next, Prev: e.Prev})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.Entries()))
}

// Stop stops scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
