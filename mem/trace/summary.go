package trace

import (
	"context"

	"github.com/sarchlab/pagesim/datarecording"
)

// ReadSummaries returns the summaries stored in a recording, in the order
// the simulations finished.
func ReadSummaries(
	ctx context.Context,
	reader datarecording.DataReader,
) ([]SummaryEntry, error) {
	reader.MapTable(SummaryTable, SummaryEntry{})

	results, _, err := reader.Query(ctx, SummaryTable,
		datarecording.QueryParams{OrderBy: "rowid"})
	if err != nil {
		return nil, err
	}

	summaries := make([]SummaryEntry, 0, len(results))
	for _, r := range results {
		summaries = append(summaries, *r.(*SummaryEntry))
	}

	return summaries, nil
}

// ReadEvictions returns the evictions a simulation recorded, oldest first.
func ReadEvictions(
	ctx context.Context,
	reader datarecording.DataReader,
	simulation string,
) ([]EvictionEntry, error) {
	reader.MapTable(EvictionTable, EvictionEntry{})

	results, _, err := reader.Query(ctx, EvictionTable,
		datarecording.QueryParams{
			Where:   "Simulation = ?",
			Args:    []any{simulation},
			OrderBy: "Time",
		})
	if err != nil {
		return nil, err
	}

	evictions := make([]EvictionEntry, 0, len(results))
	for _, r := range results {
		evictions = append(evictions, *r.(*EvictionEntry))
	}

	return evictions, nil
}
