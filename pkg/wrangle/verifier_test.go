package wrangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/property-wrangle/pkg/cleaner"
	"github.com/David-Botos/property-wrangle/pkg/testutil"
)

func partitions() *cleaner.Partitions {
	return &cleaner.Partitions{
		Train:    testutil.Table(testutil.Num("a", 1, 2, 3), testutil.Cat("b", "x", "y", "z")),
		Validate: testutil.Table(testutil.Num("a", 4), testutil.Cat("b", "x")),
		Test:     testutil.Table(testutil.Num("a", 5), testutil.Cat("b", "y")),
	}
}

func TestVerifyPartitions_Passes(t *testing.T) {
	report := NewVerifier(nil).VerifyPartitions(partitions(), 5)
	assert.True(t, report.Passed())
	assert.NoError(t, report.Err())
	assert.Equal(t, 5, report.PartitionRows)
}

func TestVerifyPartitions_RowCount(t *testing.T) {
	report := NewVerifier(nil).VerifyPartitions(partitions(), 6)
	assert.False(t, report.RowCountMatches)
	require.Error(t, report.Err())
	assert.Contains(t, report.Err().Error(), "partitions hold 5 rows, expected 6")
}

func TestVerifyPartitions_Structure(t *testing.T) {
	p := partitions()
	p.Validate = testutil.Table(testutil.Num("a", 4), testutil.Num("b", 1))
	p.Test = testutil.Table(testutil.Num("a", 5), testutil.Cat("b", "y"), testutil.Num("c", 1))

	report := NewVerifier(nil).VerifyPartitions(p, 5)
	assert.False(t, report.StructureMatches)
	require.Len(t, report.StructureDiscrepancies, 2)

	kind := report.StructureDiscrepancies[0]
	assert.Equal(t, "validate", kind.Partition)
	assert.Equal(t, "b", kind.ColumnName)
	assert.Equal(t, "categorical", kind.ExpectedKind)
	assert.Equal(t, "numeric", kind.ActualKind)

	extra := report.StructureDiscrepancies[1]
	assert.Equal(t, "test", extra.Partition)
	assert.True(t, extra.IsExtra)
}

func TestVerifyPartitions_Integrity(t *testing.T) {
	p := partitions()
	p.Validate = testutil.Table(testutil.Num("a", nil), testutil.Cat("b", "x"))
	p.Test = testutil.Table(testutil.Num("a"), testutil.Cat("b"))
	p.Train = testutil.Table(
		testutil.Num("a", 1, 2, 3, 4),
		testutil.Cat("b", "x", "y", "z", "x"),
	)
	require.NoError(t, p.Train.AddColumn(testutil.Num("a"+cleaner.OutlierSuffix, 0, 0, 0, 0)))

	report := NewVerifier(nil).VerifyPartitions(p, 5)
	assert.False(t, report.IntegrityVerified)

	types := make(map[string]int)
	for _, issue := range report.IntegrityIssues {
		types[issue.IssueType]++
	}
	assert.Equal(t, 1, types[IssueEmptyPartition])
	assert.Equal(t, 1, types[IssueNullValues])
	assert.Equal(t, 1, types[IssueOutlierColumn])
	assert.Zero(t, types[IssueRowCount])
	assert.Error(t, report.Err())
}

func TestFingerprint(t *testing.T) {
	a := testutil.Table(testutil.Num("a", 1, 2), testutil.Cat("b", "x", ""))
	same := testutil.Table(testutil.Num("a", 1, 2), testutil.Cat("b", "x", ""))
	withNull := testutil.Table(testutil.Num("a", 1, 2), testutil.Cat("b", "x", nil))
	reordered := testutil.Table(testutil.Num("a", 2, 1), testutil.Cat("b", "", "x"))

	assert.Equal(t, Fingerprint(a), Fingerprint(same))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(withNull))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(reordered))
}
