package scheduler

import (
	"fmt"
	"math"
	"sort"

	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/models"
	"github.com/julianstephens/rota/internal/roster"
	"github.com/julianstephens/rota/internal/rules"
)

// Options tunes the solver's overflow and break behaviour.
type Options struct {
	// FillTasks is the priority list used for employees no demanding rule needs.
	FillTasks []string
	// BreakStagger is the share of on-shift staff that may be on break at once.
	BreakStagger float64
}

// IdleSlot is an on-shift employee the solver could not give any task.
type IdleSlot struct {
	Employee string `json:"employee"`
	Time     string `json:"time"`
}

// Result is a solved day. Unmet minimums are reported in Violations, not as errors.
type Result struct {
	Assignment models.Assignment  `json:"assignment"`
	Violations []models.Violation `json:"violations,omitempty"`
	Idle       []IdleSlot         `json:"idle,omitempty"`
}

// Feasible reports whether every demanding rule was met.
func (r Result) Feasible() bool { return len(r.Violations) == 0 }

type Solver struct {
	opts Options
}

func New(opts Options) *Solver {
	if opts.BreakStagger <= 0 {
		opts.BreakStagger = constants.DefaultBreakStagger
	}
	if opts.FillTasks == nil {
		opts.FillTasks = rules.DefaultFillTasks
	}
	return &Solver{opts: opts}
}

// Solve assigns every on-shift employee at most one task per slot.
func (s *Solver) Solve(employees []models.Employee, catalog *rules.Catalog) (Result, error) {
	if len(employees) == 0 {
		return Result{}, &roster.EmptyRosterError{}
	}
	seq := catalog.Slots()
	seen := make(map[string]bool, len(employees))
	for _, e := range employees {
		if err := e.Validate(seq); err != nil {
			return Result{}, err
		}
		if seen[e.Name] {
			return Result{}, fmt.Errorf("employee %q is listed twice", e.Name)
		}
		seen[e.Name] = true
	}

	st := newState(employees, seq)
	catalogRules := catalog.Rules()

	for _, ts := range seq.All() {
		onShift := st.onShift(ts)
		if len(onShift) == 0 {
			continue
		}

		// Step 1: breaks that cannot wait past this slot
		for _, i := range onShift {
			if !st.breakTaken[i] && employees[i].Break.End-1 == ts {
				st.assign(i, ts, constants.BreakLabel)
			}
		}

		// Step 2: bring every demanding rule up to its minimum
		for _, rule := range catalogRules {
			if !rule.Demanding() {
				continue
			}
			lo, _, ok := rule.Bounds(ts)
			if !ok {
				continue
			}
			for st.occupancy(ts, rule.Task) < lo {
				i, found := st.pickForDemand(onShift, ts, rule)
				if !found {
					break
				}
				st.assign(i, ts, rule.Task)
			}
		}

		// Step 3: stagger the remaining breaks
		limit := int(math.Ceil(s.opts.BreakStagger * float64(len(onShift))))
		if limit < 1 {
			limit = 1
		}
		pending := st.pendingBreaks(onShift, ts)
		for _, i := range pending {
			if st.occupancy(ts, constants.BreakLabel) >= limit {
				break
			}
			st.assign(i, ts, constants.BreakLabel)
		}

		// Step 4: overflow
		for _, i := range onShift {
			if st.grid[i][ts] != "" {
				continue
			}
			task, found := s.fillTask(st, catalog, i, ts)
			if !found {
				st.idle = append(st.idle, IdleSlot{Employee: employees[i].Name, Time: seq.Label(ts)})
				continue
			}
			st.assign(i, ts, task)
		}
	}

	return Result{
		Assignment: st.assignment(),
		Violations: st.shortfalls(catalogRules),
		Idle:       st.idle,
	}, nil
}

// fillTask returns the first fill task the employee can take at ts.
func (s *Solver) fillTask(st *state, catalog *rules.Catalog, i int, ts models.TimeSlot) (string, bool) {
	for _, task := range s.opts.FillTasks {
		rule, err := catalog.RulesFor(task)
		if err != nil {
			// Unconstrained task.
			return task, true
		}
		_, hi, ok := rule.Bounds(ts)
		if !ok {
			continue
		}
		if hi >= 0 && st.occupancy(ts, task) >= hi {
			continue
		}
		if st.capReached(i, rule) {
			continue
		}
		return task, true
	}
	return "", false
}

// state is the solver's working grid for one day.
type state struct {
	employees  []models.Employee
	seq        models.SlotSequence
	grid       [][]string
	breakTaken []bool
	taskCount  []map[string]int
	occ        []map[string]int
	idle       []IdleSlot
}

func newState(employees []models.Employee, seq models.SlotSequence) *state {
	st := &state{
		employees:  employees,
		seq:        seq,
		grid:       make([][]string, len(employees)),
		breakTaken: make([]bool, len(employees)),
		taskCount:  make([]map[string]int, len(employees)),
		occ:        make([]map[string]int, seq.Len()),
	}
	for i := range employees {
		st.grid[i] = make([]string, seq.Len())
		st.taskCount[i] = make(map[string]int)
	}
	for ts := range st.occ {
		st.occ[ts] = make(map[string]int)
	}
	return st
}

func (st *state) onShift(ts models.TimeSlot) []int {
	var out []int
	for i, e := range st.employees {
		if e.OnShift(ts) {
			out = append(out, i)
		}
	}
	return out
}

func (st *state) assign(i int, ts models.TimeSlot, task string) {
	st.grid[i][ts] = task
	st.taskCount[i][task]++
	st.occ[ts][task]++
	if task == constants.BreakLabel {
		st.breakTaken[i] = true
	}
}

func (st *state) occupancy(ts models.TimeSlot, task string) int {
	return st.occ[ts][task]
}

func (st *state) capReached(i int, rule rules.TaskRule) bool {
	return rule.MaxSlotsPerPerson > 0 && st.taskCount[i][rule.Task] >= rule.MaxSlotsPerPerson
}

// pickForDemand chooses the free employee with the fewest slots on the task,
// falling back to input order.
func (st *state) pickForDemand(onShift []int, ts models.TimeSlot, rule rules.TaskRule) (int, bool) {
	best, found := -1, false
	for _, i := range onShift {
		if st.grid[i][ts] != "" || st.capReached(i, rule) {
			continue
		}
		if !found || st.taskCount[i][rule.Task] < st.taskCount[best][rule.Task] {
			best, found = i, true
		}
	}
	return best, found
}

// pendingBreaks lists free employees whose break window is open at ts,
// earliest deadline first.
func (st *state) pendingBreaks(onShift []int, ts models.TimeSlot) []int {
	var out []int
	for _, i := range onShift {
		if st.breakTaken[i] || st.grid[i][ts] != "" || !st.employees[i].Break.Contains(ts) {
			continue
		}
		out = append(out, i)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return st.employees[out[a]].Break.End < st.employees[out[b]].Break.End
	})
	return out
}

// shortfalls re-checks every demanding rule at every slot someone works.
func (st *state) shortfalls(catalogRules []rules.TaskRule) []models.Violation {
	var out []models.Violation
	for _, rule := range catalogRules {
		if !rule.Demanding() {
			continue
		}
		for _, ts := range rule.WindowSlots(st.seq) {
			if len(st.onShift(ts)) == 0 {
				continue
			}
			lo, _, _ := rule.Bounds(ts)
			if got := st.occupancy(ts, rule.Task); got < lo {
				out = append(out, models.Violation{
					Rule:     rule.Name,
					Task:     rule.Task,
					Time:     st.seq.Label(ts),
					Assigned: got,
					Required: lo,
				})
			}
		}
	}
	return out
}

func (st *state) assignment() models.Assignment {
	a := models.Assignment{Rows: make([]models.Row, 0, len(st.employees))}
	for i, e := range st.employees {
		row := models.Row{Employee: e.Name, Entries: []models.Entry{}}
		for ts, task := range st.grid[i] {
			if task == "" {
				continue
			}
			row.Entries = append(row.Entries, models.Entry{Time: st.seq.Label(models.TimeSlot(ts)), Task: task})
		}
		a.Rows = append(a.Rows, row)
	}
	return a
}
