package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/version"
)

// Report file names inside the cache directory.
const (
	ReportJSONFilename = "build-report.json"
	ReportTextFilename = "build-report.txt"
)

// Outcome is the typed enumeration of final build result states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// PageCount aggregates compile results for one page type.
type PageCount struct {
	Compiled int `json:"compiled"`
	Failed   int `json:"failed"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
}

// Report captures what happened during one build.
type Report struct {
	SchemaVersion  int
	Generator      string // sitegen version that produced the build
	BuildID        string
	Start          time.Time
	End            time.Time
	Errors         []error // fatal errors and page compile failures
	Warnings       []error // recovered task failures
	StageDurations map[StageName]time.Duration
	StageCounts    map[StageName]StageCount
	TaskDurations  map[string]time.Duration
	Pages          map[pagetype.Type]PageCount
	Routes         int
	Tasks          []string // executed task names, in order
	Outcome        Outcome
}

// NewReport constructs an empty report for buildID.
func NewReport(buildID string) *Report {
	return &Report{
		SchemaVersion:  1,
		Generator:      version.String(),
		BuildID:        buildID,
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
		StageCounts:    make(map[StageName]StageCount),
		TaskDurations:  make(map[string]time.Duration),
		Pages:          make(map[pagetype.Type]PageCount),
	}
}

// Finish sets the end time of the report.
func (r *Report) Finish() { r.End = time.Now() }

// PagesCompiled sums compiled pages across page types.
func (r *Report) PagesCompiled() int {
	n := 0
	for _, c := range r.Pages {
		n += c.Compiled
	}
	return n
}

func (r *Report) recordPage(t pagetype.Type, ok bool) {
	c := r.Pages[t]
	if ok {
		c.Compiled++
	} else {
		c.Failed++
	}
	r.Pages[t] = c
}

// RecordStageResult updates stage counters and emits metrics (if recorder non-nil).
func (r *Report) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	sc := r.StageCounts[stage]
	var label metrics.ResultLabel
	switch res {
	case StageResultSuccess:
		sc.Success++
		label = metrics.ResultSuccess
	case StageResultWarning:
		sc.Warning++
		label = metrics.ResultWarning
	case StageResultFatal:
		sc.Fatal++
		label = metrics.ResultFatal
	case StageResultCanceled:
		sc.Canceled++
		label = metrics.ResultCanceled
	}
	r.StageCounts[stage] = sc
	if recorder != nil {
		recorder.IncStageResult(string(stage), label)
	}
}

// DeriveOutcome sets Outcome based on recorded errors and warnings.
func (r *Report) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	types := make([]string, 0, len(r.Pages))
	for t := range r.Pages {
		types = append(types, string(t))
	}
	sort.Strings(types)
	parts := make([]string, 0, len(types))
	for _, t := range types {
		c := r.Pages[pagetype.Type(t)]
		parts = append(parts, fmt.Sprintf("%s=%d/%d", t, c.Compiled, c.Compiled+c.Failed))
	}
	return fmt.Sprintf("build=%s routes=%d pages=[%s] tasks=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.BuildID, r.Routes, strings.Join(parts, " "), len(r.Tasks), r.End.Sub(r.Start).Truncate(time.Millisecond),
		len(r.Errors), len(r.Warnings), r.Outcome)
}

// Persist writes the report atomically into dir.
func (r *Report) Persist(dir string) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("ensure dir for report: %w", err)
	}
	jb, err := json.MarshalIndent(r.Serializable(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, ReportJSONFilename), jb); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, ReportTextFilename), []byte(r.Summary()+"\n"))
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Serializable returns a copy with errors converted to strings and durations
// to milliseconds for JSON output.
func (r *Report) Serializable() *ReportSerializable {
	s := &ReportSerializable{
		SchemaVersion:    r.SchemaVersion,
		Generator:        r.Generator,
		BuildID:          r.BuildID,
		Start:            r.Start,
		End:              r.End,
		Errors:           make([]string, len(r.Errors)),
		Warnings:         make([]string, len(r.Warnings)),
		StageDurationsMS: make(map[string]int64, len(r.StageDurations)),
		StageCounts:      make(map[string]StageCount, len(r.StageCounts)),
		TaskDurationsMS:  make(map[string]int64, len(r.TaskDurations)),
		Pages:            make(map[string]PageCount, len(r.Pages)),
		Routes:           r.Routes,
		Tasks:            append([]string{}, r.Tasks...),
		Outcome:          string(r.Outcome),
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	for k, v := range r.StageDurations {
		s.StageDurationsMS[string(k)] = v.Milliseconds()
	}
	for k, v := range r.StageCounts {
		s.StageCounts[string(k)] = v
	}
	for k, v := range r.TaskDurations {
		s.TaskDurationsMS[k] = v.Milliseconds()
	}
	for k, v := range r.Pages {
		s.Pages[string(k)] = v
	}
	return s
}

// ReportSerializable mirrors Report for JSON output.
type ReportSerializable struct {
	SchemaVersion    int                   `json:"schema_version"`
	Generator        string                `json:"generator"`
	BuildID          string                `json:"build_id"`
	Start            time.Time             `json:"start"`
	End              time.Time             `json:"end"`
	Errors           []string              `json:"errors"`
	Warnings         []string              `json:"warnings"`
	StageDurationsMS map[string]int64      `json:"stage_durations_ms"`
	StageCounts      map[string]StageCount `json:"stage_counts"`
	TaskDurationsMS  map[string]int64      `json:"task_durations_ms"`
	Pages            map[string]PageCount  `json:"pages"`
	Routes           int                   `json:"routes"`
	Tasks            []string              `json:"tasks"`
	Outcome          string                `json:"outcome"`
}
