package awful

import (
	"fmt"
	"log"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/imagvfx/awful/lib/container"
	"github.com/rs/xid"
)

// Policy decides which pending job could be admitted next.
type Policy int

const (
	// HeadOfLine admits only the oldest pending job.
	// A job that doesn't fit blocks every job behind it.
	HeadOfLine = Policy(iota)

	// WorkConserving admits the oldest pending job that fits.
	WorkConserving
)

func (p Policy) String() string {
	switch p {
	case HeadOfLine:
		return "head-of-line"
	case WorkConserving:
		return "work-conserving"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses a string made by Policy.String.
// Empty string is HeadOfLine.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "head-of-line":
		return HeadOfLine, nil
	case "work-conserving":
		return WorkConserving, nil
	}
	return -1, fmt.Errorf("unknown admission policy: %v", s)
}

// Config is configuration of a Scheduler.
// Zero values are replaced with defaults.
type Config struct {
	// Procs is total number of processors the scheduler can use.
	// Zero means number of cpus of this machine.
	Procs int

	// Poll is the interval of admission check when nothing happens.
	// Zero means a second.
	Poll time.Duration

	// Policy is the admission policy.
	Policy Policy

	// MaxRunning limits the number of jobs running at the same time,
	// regardless of the processors. Zero means no limit.
	MaxRunning int

	// Output defines where outputs of jobs go.
	// Empty patterns are taken from DefaultOutputConfig.
	Output OutputConfig

	// Runner runs commands of jobs.
	// Nil Runner means a ShellRunner with default shell and launcher.
	Runner Runner

	// Journal keeps history of jobs. Nil Journal means no history.
	Journal JournalService
}

// Scheduler runs submitted jobs as processors are available.
//
// It has two tables of jobs. Pending table has jobs waiting for admission
// in submission order. Active table has running and finished jobs.
// Jobs in active table stay there until they are deleted.
type Scheduler struct {
	procs      int
	poll       time.Duration
	policy     Policy
	maxRunning int
	output     OutputConfig
	runner     Runner
	journal    JournalService

	pending *container.KeyQueue[string, *Job]
	active  *container.KeyQueue[string, *Job]

	// Following fields are guarded by the locks of both tables.
	// See lockTables.
	free    int
	running int
	started bool
	closed  bool

	// kickCh wakes the admission loop up without waiting the poll interval.
	kickCh   chan struct{}
	stopCh   chan struct{}
	loopDone chan struct{}

	// executors tracks jobs those commands are running.
	executors sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
// It doesn't admit any job until Start is called.
func NewScheduler(cfg Config) (*Scheduler, error) {
	if cfg.Procs < 0 {
		return nil, fmt.Errorf("%w: procs should not be negative, got %v", ErrInvalidResource, cfg.Procs)
	}
	if cfg.Procs == 0 {
		cfg.Procs = runtime.NumCPU()
	}
	if cfg.Poll <= 0 {
		cfg.Poll = time.Second
	}
	cfg.Output = cfg.Output.withDefaults()
	if cfg.Runner == nil {
		cfg.Runner = &ShellRunner{}
	}
	if cfg.Journal == nil {
		cfg.Journal = NopJournalService{}
	}
	s := &Scheduler{
		procs:      cfg.Procs,
		poll:       cfg.Poll,
		policy:     cfg.Policy,
		maxRunning: cfg.MaxRunning,
		output:     cfg.Output,
		runner:     cfg.Runner,
		journal:    cfg.Journal,
		pending:    container.NewKeyQueue[string, *Job](0),
		active:     container.NewKeyQueue[string, *Job](0),
		free:       cfg.Procs,
		kickCh:     make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		loopDone:   make(chan struct{}),
	}
	return s, nil
}

// tableGroups is the locked tables of a scheduler.
type tableGroups struct {
	active  *container.Group[string, *Job]
	pending *container.Group[string, *Job]
}

func (t tableGroups) Unlock() {
	t.pending.Unlock()
	t.active.Unlock()
}

// lockTables locks both tables, always active first.
// Changes to the tables and the processor counter happens only with them locked,
// so a capacity check and the reservation cannot be interleaved.
func (s *Scheduler) lockTables() tableGroups {
	a := s.active.Lock()
	p := s.pending.Lock()
	return tableGroups{active: a, pending: p}
}

// Procs returns total number of processors of the scheduler.
func (s *Scheduler) Procs() int {
	if s == nil {
		return 0
	}
	return s.procs
}

// Free returns number of processors not used by running jobs.
func (s *Scheduler) Free() int {
	if s == nil {
		return 0
	}
	t := s.lockTables()
	defer t.Unlock()
	return s.free
}

// Submit adds a job to the pending table.
// When the spec doesn't have a name, it derives one from the first word
// of the command, like sleep1, sleep2.
//
// A job asks more processors than the scheduler has is rejected
// with ErrInvalidResource, as it could never run.
func (s *Scheduler) Submit(spec JobSpec) (JobID, error) {
	info, err := s.SubmitJob(spec)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// SubmitJob is Submit, but it returns snapshot of the job as it was submitted,
// which has the name the scheduler derived.
func (s *Scheduler) SubmitJob(spec JobSpec) (JobInfo, error) {
	if s == nil {
		return JobInfo{}, ErrNoScheduler
	}
	if strings.TrimSpace(spec.Command) == "" {
		return JobInfo{}, fmt.Errorf("%w: empty command", ErrInvalidJob)
	}
	if spec.Procs > s.procs {
		return JobInfo{}, fmt.Errorf("%w: job needs %v procs, scheduler has %v", ErrInvalidResource, spec.Procs, s.procs)
	}
	t := s.lockTables()
	if s.closed {
		t.Unlock()
		return JobInfo{}, ErrClosed
	}
	if spec.Name == "" {
		spec.Name = defaultName(spec.Command, t)
	} else if t.active.Has(spec.Name) || t.pending.Has(spec.Name) {
		log.Printf("job name is already in use, it will be overwritten: %v", spec.Name)
	}
	j, err := newJob(JobID(xid.New().String()), spec, s.output)
	if err != nil {
		t.Unlock()
		return JobInfo{}, err
	}
	s.record(EventSubmitted, j)
	// pending table is unbounded, it cannot be full.
	t.pending.TryPut(j.Name, j)
	info := j.Info()
	t.Unlock()

	log.Printf("job submitted: %v (%v procs): %v", j.Name, j.Procs, j.Command)
	s.kick()
	return info, nil
}

// defaultName returns a name for a job, which is the first word of the command
// followed by a number. The number is one more than number of existing jobs
// with the same prefix, case-insensitively.
// The number increases further when the name is already taken.
func defaultName(cmd string, t tableGroups) string {
	word := strings.Fields(cmd)[0]
	upper := strings.ToUpper(word)
	n := 0
	for _, names := range [][]string{t.active.Keys(), t.pending.Keys()} {
		for _, name := range names {
			if strings.HasPrefix(strings.ToUpper(name), upper) {
				n++
			}
		}
	}
	for {
		n++
		name := fmt.Sprintf("%s%d", word, n)
		if !t.active.Has(name) && !t.pending.Has(name) {
			return name
		}
	}
}

// List returns snapshot of the jobs.
// Jobs of the active table come first, then pending jobs, in their orders.
func (s *Scheduler) List() ([]JobInfo, error) {
	if s == nil {
		return nil, ErrNoScheduler
	}
	t := s.lockTables()
	defer t.Unlock()
	infos := make([]JobInfo, 0, t.active.Len()+t.pending.Len())
	for _, j := range t.active.Values() {
		infos = append(infos, j.Info())
	}
	for _, j := range t.pending.Values() {
		infos = append(infos, j.Info())
	}
	return infos, nil
}

// Job returns snapshot of a job.
func (s *Scheduler) Job(name string) (JobInfo, error) {
	if s == nil {
		return JobInfo{}, ErrNoScheduler
	}
	t := s.lockTables()
	defer t.Unlock()
	j, err := t.active.Item(name)
	if err != nil {
		j, err = t.pending.Item(name)
	}
	if err != nil {
		return JobInfo{}, fmt.Errorf("%w: %v", err, name)
	}
	return j.Info(), nil
}

// Delete deletes a job from the scheduler.
// A pending job will never run after it is deleted.
// Deleting a running job doesn't stop its command,
// and its processors are released only when the command exits.
func (s *Scheduler) Delete(name string) error {
	if s == nil {
		return ErrNoScheduler
	}
	t := s.lockTables()
	j, err := t.pending.Item(name)
	if err == nil {
		t.pending.RemoveItem(name)
	} else {
		j, err = t.active.Item(name)
		if err == nil {
			t.active.RemoveItem(name)
		}
	}
	if err != nil {
		t.Unlock()
		return fmt.Errorf("%w: %v", err, name)
	}
	s.record(EventDeleted, j)
	t.Unlock()
	log.Printf("job deleted: %v (%v)", j.Name, j.Status())
	s.kick()
	return nil
}

// Start launches the admission loop.
// Calling it more than once doesn't launch another loop.
func (s *Scheduler) Start() error {
	if s == nil {
		return ErrNoScheduler
	}
	t := s.lockTables()
	defer t.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.started {
		return nil
	}
	s.started = true
	go s.admitting()
	log.Printf("scheduler started with %v procs (%v)", s.procs, s.policy)
	return nil
}

// Close stops the admission loop. Pending jobs will not run anymore.
// Running commands are not killed, use Wait to wait for them.
func (s *Scheduler) Close() error {
	if s == nil {
		return ErrNoScheduler
	}
	t := s.lockTables()
	if s.closed {
		t.Unlock()
		return nil
	}
	s.closed = true
	started := s.started
	t.Unlock()
	close(s.stopCh)
	if started {
		<-s.loopDone
	}
	return nil
}

// Wait waits until all running commands exit.
func (s *Scheduler) Wait() {
	if s == nil {
		return
	}
	s.executors.Wait()
}

// kick wakes the admission loop up.
func (s *Scheduler) kick() {
	select {
	case s.kickCh <- struct{}{}:
	default:
		// the loop will check the tables anyway.
	}
}

// admitting checks the pending table whenever it is kicked,
// or the poll interval has passed, until the scheduler is closed.
func (s *Scheduler) admitting() {
	defer close(s.loopDone)
	for {
		s.admit()
		// kickCh gives faster admission when something has changed.
		// time.After makes sure the tables checked periodically anyway.
		select {
		case <-s.kickCh:
		case <-time.After(s.poll):
		case <-s.stopCh:
			return
		}
	}
}

// admit moves pending jobs to the active table while they fit in
// free processors, and launches executors for them.
// It returns the admitted jobs.
func (s *Scheduler) admit() []*Job {
	t := s.lockTables()
	defer t.Unlock()
	if s.closed {
		return nil
	}
	admitted := make([]*Job, 0)
	for {
		if s.maxRunning > 0 && s.running >= s.maxRunning {
			break
		}
		j := s.next(t.pending)
		if j == nil {
			break
		}
		t.pending.RemoveItem(j.Name)
		t.active.TryPut(j.Name, j)
		s.free -= j.Procs
		s.running++
		err := j.setStatus(JobRunning)
		if err != nil {
			log.Print(err)
		}
		s.record(EventStarted, j)
		s.executors.Add(1)
		go s.execute(j)
		admitted = append(admitted, j)
	}
	return admitted
}

// next returns a pending job which could be admitted now, or nil.
func (s *Scheduler) next(pending *container.Group[string, *Job]) *Job {
	switch s.policy {
	case WorkConserving:
		for _, j := range pending.Values() {
			if j.Procs <= s.free {
				return j
			}
		}
		return nil
	default:
		_, j, ok := pending.Peek()
		if !ok || j.Procs > s.free {
			return nil
		}
		return j
	}
}

// finishJob releases processors of the job and marks it as finished.
// It is called by the job's executor once its command exits.
func (s *Scheduler) finishJob(j *Job) {
	t := s.lockTables()
	s.free += j.Procs
	s.running--
	err := j.setStatus(JobFinished)
	if err == nil {
		s.record(EventFinished, j)
	}
	t.Unlock()
	if err != nil {
		log.Print(err)
	}
	log.Printf("job finished: %v", j.Name)
	s.kick()
}

// record adds an event to the journal.
// It is called with the tables locked, so events of a job are kept
// in the order the job has changed.
// Journal failure doesn't affect the scheduler.
func (s *Scheduler) record(kind JobEventKind, j *Job) {
	err := s.journal.AddEvent(newJobEvent(kind, j))
	if err != nil {
		log.Printf("journal: %v: %v", j.Name, err)
	}
}
