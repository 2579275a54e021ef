package analytics

import (
	"context"

	"github.com/vinodismyname/hrpulse/internal/dataset"
	"github.com/vinodismyname/hrpulse/internal/dataset/datasettest"
)

// sampleDataset has three active employees (E1, E2, E4), one terminated (E3)
// and a termination record referencing an unknown employee (X99).
func sampleDataset() *dataset.Dataset { return datasettest.Sample() }

// uniform builds n active employees produced by mutate.
func uniform(n int, mutate func(i int, e *dataset.Employee)) *dataset.Dataset {
	emps := make([]dataset.Employee, n)
	for i := range emps {
		e := datasettest.Employee(string(rune('A'+i%26)) + string(rune('0'+i/26)))
		if mutate != nil {
			mutate(i, &e)
		}
		emps[i] = e
	}
	return datasettest.Dataset(emps, nil, nil, nil)
}

func snapshotOf(ds *dataset.Dataset, f Filters) Snapshot {
	return Compute(context.Background(), InputFor(NewView(ds, f)))
}
