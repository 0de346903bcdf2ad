// pkg/cleaner/split.go
package cleaner

import (
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/model"
)

// Partitions are the disjoint train, validate and test subsets of a table
type Partitions struct {
	Train    *model.Table
	Validate *model.Table
	Test     *model.Table
}

// Sizes returns the row counts of train, validate and test
func (p *Partitions) Sizes() (train, validate, test int) {
	return p.Train.NumRows(), p.Validate.NumRows(), p.Test.NumRows()
}

// All returns the partitions keyed by name, in write order
func (p *Partitions) All() []NamedTable {
	return []NamedTable{
		{Name: "train", Table: p.Train},
		{Name: "validate", Table: p.Validate},
		{Name: "test", Table: p.Test},
	}
}

// NamedTable pairs a partition with its name
type NamedTable struct {
	Name  string
	Table *model.Table
}

// TrainTestSplit shuffles row positions 0..n-1 with a generator seeded by
// seed and holds out the first ceil(testSize·n) as test
func TrainTestSplit(n int, testSize float64, seed int64) (train, test []int, err error) {
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest <= 0 || nTrain <= 0 {
		return nil, nil, fmt.Errorf("%w: cannot split %d rows with test size %v", ErrEmptyTable, n, testSize)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// Split divides t into train, validate and test. Test is testSize of all
// rows; validate is validateSize of the rest. Both draws use the configured
// seed, so the split is reproducible.
func (c *DataCleaner) Split(t *model.Table) (*Partitions, error) {
	trainValidateIdx, testIdx, err := TrainTestSplit(t.NumRows(), c.cfg.TestSize, c.cfg.Seed)
	if err != nil {
		return nil, err
	}
	trainValidate := t.Select(trainValidateIdx)

	trainIdx, validateIdx, err := TrainTestSplit(trainValidate.NumRows(), c.cfg.ValidateSize, c.cfg.Seed)
	if err != nil {
		return nil, err
	}

	p := &Partitions{
		Train:    trainValidate.Select(trainIdx),
		Validate: trainValidate.Select(validateIdx),
		Test:     t.Select(testIdx),
	}

	train, validate, test := p.Sizes()
	c.record(StageSplit, "", model.OpFilterRows, "train_partition", train, fmt.Sprint(c.cfg.Seed))
	c.record(StageSplit, "", model.OpFilterRows, "validate_partition", validate, fmt.Sprint(c.cfg.Seed))
	c.record(StageSplit, "", model.OpFilterRows, "test_partition", test, fmt.Sprint(c.cfg.Seed))
	c.logger.Info("Split table",
		zap.Int64("seed", c.cfg.Seed),
		zap.Int("train", train),
		zap.Int("validate", validate),
		zap.Int("test", test))
	return p, nil
}
