package report

import (
	"github.com/crillab/gensat/genetic"
)

type tee []genetic.Reporter

// Tee returns a reporter that gives each result to all the given reporters, in order.
// It stops at the first error.
func Tee(reporters ...genetic.Reporter) genetic.Reporter {
	return tee(reporters)
}

func (t tee) Report(res genetic.Result) error {
	for _, r := range t {
		if err := r.Report(res); err != nil {
			return err
		}
	}
	return nil
}
