// pkg/wrangle/verifier.go
package wrangle

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/cleaner"
	"github.com/David-Botos/property-wrangle/pkg/model"
)

// Issue types reported by the verifier
const (
	IssueEmptyPartition = "empty_partition"
	IssueNullValues     = "null_values"
	IssueOutlierColumn  = "outlier_column"
	IssueRowCount       = "row_count"
)

// StructureDiscrepancy represents a partition whose columns differ from train
type StructureDiscrepancy struct {
	Partition    string
	ColumnName   string
	ExpectedKind string
	ActualKind   string
	IsMissing    bool
	IsExtra      bool
}

// IntegrityIssue represents a data integrity issue in a partition
type IntegrityIssue struct {
	IssueType    string
	Partition    string
	ColumnName   string
	Description  string
	AffectedRows int
}

// VerificationReport contains the results of verifying a run's output
type VerificationReport struct {
	VerificationTime       time.Time
	RowCountMatches        bool
	ExpectedRows           int
	PartitionRows          int
	StructureMatches       bool
	StructureDiscrepancies []StructureDiscrepancy
	IntegrityVerified      bool
	IntegrityIssues        []IntegrityIssue
	Duration               time.Duration
}

// Passed reports whether every check succeeded
func (r *VerificationReport) Passed() bool {
	return r.RowCountMatches && r.StructureMatches && r.IntegrityVerified
}

// Err summarizes a failed report as an error, or nil when it passed
func (r *VerificationReport) Err() error {
	if r.Passed() {
		return nil
	}
	var problems []string
	if !r.RowCountMatches {
		problems = append(problems, fmt.Sprintf("partitions hold %d rows, expected %d", r.PartitionRows, r.ExpectedRows))
	}
	for _, d := range r.StructureDiscrepancies {
		switch {
		case d.IsMissing:
			problems = append(problems, fmt.Sprintf("%s is missing column %s", d.Partition, d.ColumnName))
		case d.IsExtra:
			problems = append(problems, fmt.Sprintf("%s has extra column %s", d.Partition, d.ColumnName))
		default:
			problems = append(problems, fmt.Sprintf("%s column %s is %s, expected %s", d.Partition, d.ColumnName, d.ActualKind, d.ExpectedKind))
		}
	}
	for _, issue := range r.IntegrityIssues {
		if issue.IssueType == IssueRowCount {
			continue
		}
		problems = append(problems, issue.Description)
	}
	return fmt.Errorf("output verification failed: %s", strings.Join(problems, "; "))
}

// Verifier checks the partitions a run produced
type Verifier struct {
	logger *zap.Logger
}

// NewVerifier creates a new verifier
func NewVerifier(logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{logger: logger}
}

// VerifyPartitions checks that the partitions are non-empty, share train's
// column schema, hold no nulls or outlier magnitude columns, and together hold
// expectedRows rows
func (v *Verifier) VerifyPartitions(p *cleaner.Partitions, expectedRows int) *VerificationReport {
	start := time.Now()
	report := &VerificationReport{
		VerificationTime: start,
		ExpectedRows:     expectedRows,
		StructureMatches: true,
	}

	train, validate, test := p.Sizes()
	report.PartitionRows = train + validate + test
	report.RowCountMatches = report.PartitionRows == expectedRows
	if !report.RowCountMatches {
		report.IntegrityIssues = append(report.IntegrityIssues, IntegrityIssue{
			IssueType:    IssueRowCount,
			Description:  fmt.Sprintf("partitions hold %d rows, expected %d", report.PartitionRows, expectedRows),
			AffectedRows: report.PartitionRows - expectedRows,
		})
	}

	for _, part := range p.All() {
		report.StructureDiscrepancies = append(report.StructureDiscrepancies,
			v.compareStructure(p.Train, part.Name, part.Table)...)
		report.IntegrityIssues = append(report.IntegrityIssues, v.checkIntegrity(part.Name, part.Table)...)
	}
	report.StructureMatches = len(report.StructureDiscrepancies) == 0
	report.IntegrityVerified = len(report.IntegrityIssues) == 0
	report.Duration = time.Since(start)

	v.logger.Info("Verified partitions",
		zap.Bool("passed", report.Passed()),
		zap.Int("rows", report.PartitionRows),
		zap.Int("structureDiscrepancies", len(report.StructureDiscrepancies)),
		zap.Int("integrityIssues", len(report.IntegrityIssues)))
	return report
}

// compareStructure lists differences between a partition's columns and the reference's
func (v *Verifier) compareStructure(reference *model.Table, partition string, t *model.Table) []StructureDiscrepancy {
	var discrepancies []StructureDiscrepancy
	for _, want := range reference.Columns() {
		got, err := t.Column(want.Name)
		if err != nil {
			discrepancies = append(discrepancies, StructureDiscrepancy{
				Partition:    partition,
				ColumnName:   want.Name,
				ExpectedKind: want.Kind.String(),
				IsMissing:    true,
			})
			continue
		}
		if got.Kind != want.Kind {
			discrepancies = append(discrepancies, StructureDiscrepancy{
				Partition:    partition,
				ColumnName:   want.Name,
				ExpectedKind: want.Kind.String(),
				ActualKind:   got.Kind.String(),
			})
		}
	}
	for _, got := range t.Columns() {
		if !reference.Has(got.Name) {
			discrepancies = append(discrepancies, StructureDiscrepancy{
				Partition:  partition,
				ColumnName: got.Name,
				ActualKind: got.Kind.String(),
				IsExtra:    true,
			})
		}
	}
	return discrepancies
}

// checkIntegrity looks for empty partitions, nulls and leftover outlier columns
func (v *Verifier) checkIntegrity(partition string, t *model.Table) []IntegrityIssue {
	var issues []IntegrityIssue
	if t.NumRows() == 0 {
		issues = append(issues, IntegrityIssue{
			IssueType:   IssueEmptyPartition,
			Partition:   partition,
			Description: fmt.Sprintf("%s partition is empty", partition),
		})
	}
	for _, col := range t.Columns() {
		if strings.HasSuffix(col.Name, cleaner.OutlierSuffix) {
			issues = append(issues, IntegrityIssue{
				IssueType:   IssueOutlierColumn,
				Partition:   partition,
				ColumnName:  col.Name,
				Description: fmt.Sprintf("%s partition still has %s", partition, col.Name),
			})
		}
		if nulls := col.Len() - col.NonNull(); nulls > 0 {
			issues = append(issues, IntegrityIssue{
				IssueType:    IssueNullValues,
				Partition:    partition,
				ColumnName:   col.Name,
				Description:  fmt.Sprintf("%s partition has %d nulls in %s", partition, nulls, col.Name),
				AffectedRows: nulls,
			})
		}
	}
	return issues
}
