package datarecording

import (
	"context"
	"os"
	"strings"
	"time"
)

// ExecInfoTable is the table that ExecRecorder writes into.
const ExecInfoTable = "exec_info"

const execTimeFormat = "2006-01-02 15:04:05.000000000"

// ExecInfo is one property of a program execution.
type ExecInfo struct {
	Property string
	Value    string
}

// An ExecRecorder records how the program was invoked next to the data the
// program records.
type ExecRecorder struct {
	recorder DataRecorder
	entries  []ExecInfo
}

// NewExecRecorder creates the execution table and notes the start time, the
// command line and the working directory.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	e := &ExecRecorder{
		recorder: recorder,
	}

	recorder.CreateTable(ExecInfoTable, ExecInfo{})

	e.Set("Start Time", time.Now().Format(execTimeFormat))
	e.Set("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err == nil {
		e.Set("Working Directory", cwd)
	}

	return e
}

// Set adds a property. Properties are written in the order they are set.
func (e *ExecRecorder) Set(property, value string) {
	e.entries = append(e.entries, ExecInfo{property, value})
}

// End writes the properties along with the end time.
func (e *ExecRecorder) End() {
	e.Set("End Time", time.Now().Format(execTimeFormat))

	for _, entry := range e.entries {
		e.recorder.InsertData(ExecInfoTable, entry)
	}

	e.entries = nil

	e.recorder.Flush()
}

// ReadExecInfo returns the execution properties stored in a recording.
func ReadExecInfo(ctx context.Context, reader DataReader) ([]ExecInfo, error) {
	reader.MapTable(ExecInfoTable, ExecInfo{})

	results, _, err := reader.Query(ctx, ExecInfoTable,
		QueryParams{OrderBy: "rowid"})
	if err != nil {
		return nil, err
	}

	info := make([]ExecInfo, 0, len(results))
	for _, r := range results {
		info = append(info, *r.(*ExecInfo))
	}

	return info, nil
}
