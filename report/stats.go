package report

import "github.com/harperreed/pipetrack/models"

// ComputeStats summarizes the current generation and its change from the previous one.
// An empty generation has an average deal size of zero.
func ComputeStats(current, previous []models.Opportunity) models.PipelineStats {
	curTotal, curCount, curAvg := summarize(current)
	prevTotal, prevCount, prevAvg := summarize(previous)

	return models.PipelineStats{
		TotalValue:      curTotal,
		ActiveDeals:     curCount,
		AverageDealSize: curAvg,
		ChangeFromLastUpload: models.StatsChange{
			TotalValue:      curTotal - prevTotal,
			ActiveDeals:     curCount - prevCount,
			AverageDealSize: curAvg - prevAvg,
		},
	}
}

func summarize(records []models.Opportunity) (total int64, count int, avg float64) {
	for _, r := range records {
		total += r.Amount
	}
	count = len(records)
	if count > 0 {
		avg = float64(total) / float64(count)
	}
	return total, count, avg
}
