package media

import "context"

// BatchItem is the per-file outcome of a batch conversion.
type BatchItem struct {
	Input      string `json:"input"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchReport aggregates a best-effort batch conversion.
type BatchReport struct {
	Total        int         `json:"total"`
	SuccessCount int         `json:"success_count"`
	FailCount    int         `json:"fail_count"`
	Items        []BatchItem `json:"items"`
}

// AllSucceeded reports whether every item converted.
func (r *BatchReport) AllSucceeded() bool {
	return r.FailCount == 0
}

// BatchConvert converts independent input files best-effort: a failure is
// recorded per item and the batch continues. This is the opposite policy
// from speaker-audio extraction, which aborts on the first failure.
func (r *Runner) BatchConvert(ctx context.Context, inputs []string, targetFormat string, opts ConvertOptions) *BatchReport {
	report := &BatchReport{Total: len(inputs), Items: make([]BatchItem, 0, len(inputs))}
	for _, input := range inputs {
		item := BatchItem{Input: input}
		result, err := r.Convert(ctx, input, targetFormat, opts)
		if err != nil {
			item.Error = err.Error()
			report.FailCount++
		} else {
			item.OutputPath = result.OutputPath
			report.SuccessCount++
		}
		report.Items = append(report.Items, item)
	}
	return report
}
