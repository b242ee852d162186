package tracker

import (
	"slices"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pipetrack/ingest"
	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/report"
)

// UploadPipeline runs rows through the import pipeline and swaps the result in:
// the current generation becomes previous and the import becomes current. On any
// row error nothing changes.
func (t *Tracker) UploadPipeline(rows []ingest.Row) (*ingest.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	res, err := ingest.Process(rows, t.pipeline.Current, t.now())
	if err != nil {
		return nil, err
	}
	if err := t.swapGeneration(res.Records); err != nil {
		return nil, err
	}
	log.Info("pipeline uploaded", "records", len(res.Records), "reused", res.Reused, "minted", res.Minted)
	return res, nil
}

func (t *Tracker) swapGeneration(records []models.Opportunity) error {
	next := models.PipelineState{
		Current:  records,
		Previous: t.pipeline.Current,
	}
	if err := t.savePipeline(next); err != nil {
		return err
	}
	t.pipeline = next
	return nil
}

// CurrentPipeline returns the current generation.
func (t *Tracker) CurrentPipeline() []models.Opportunity {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.pipeline.Current)
}

// PipelineState returns both generations.
func (t *Tracker) PipelineState() models.PipelineState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.PipelineState{
		Current:  slices.Clone(t.pipeline.Current),
		Previous: slices.Clone(t.pipeline.Previous),
	}
}

// Opportunity finds a current record by ID.
func (t *Tracker) Opportunity(id string) (models.Opportunity, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opportunity(id)
}

func (t *Tracker) opportunity(id string) (models.Opportunity, bool) {
	i := slices.IndexFunc(t.pipeline.Current, func(o models.Opportunity) bool { return o.ID == id })
	if i < 0 {
		return models.Opportunity{}, false
	}
	return t.pipeline.Current[i], true
}

// Stats compares the current generation with the previous one.
func (t *Tracker) Stats() models.PipelineStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return report.ComputeStats(t.pipeline.Current, t.pipeline.Previous)
}

// ClearPipeline empties both generations after taking a rollback snapshot. Notes are kept.
func (t *Tracker) ClearPipeline() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.takeSnapshot("pipeline clear"); err != nil {
		return err
	}
	next := models.PipelineState{Current: []models.Opportunity{}, Previous: []models.Opportunity{}}
	if err := t.savePipeline(next); err != nil {
		return err
	}
	t.pipeline = next
	return nil
}

// Groups returns the current pipeline grouped by partner and fiscal quarter.
func (t *Tracker) Groups() []report.PartnerGroup {
	t.mu.Lock()
	defer t.mu.Unlock()
	return report.GroupByPartner(slices.Clone(t.pipeline.Current), t.partners)
}

// Window returns the four-quarter partner table as of the tracker clock.
func (t *Tracker) Window() report.WindowTable {
	t.mu.Lock()
	defer t.mu.Unlock()
	return report.BuildWindow(t.pipeline.Current, t.partners, t.now())
}
