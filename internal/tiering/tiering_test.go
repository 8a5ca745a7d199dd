package tiering

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/rank"
)

const sampleCSV = `CASE_STATUS,EMPLOYER_NAME,QUARTER,EMPLOYER_CITY,EMPLOYER_STATE,EMPLOYER_POC_FIRST_NAME,EMPLOYER_POC_LAST_NAME,EMPLOYER_POC_EMAIL,EMPLOYER_POC_PHONE
Certified,"Acme, Inc.",Q1,Austin,TX,Ann,Lee,ann@acme.test,555
Certified - Withdrawn,"ACME, INC. ",q2,Dallas,TX,Bob,Ray,bob@acme.test,556
Denied,"acme, inc.",Q9,,,,,,
Withdrawn,Globex,Q3,Springfield,IL,,,,
,,Q1,,,,,,
Certified
`

func TestCompanyID(t *testing.T) {
	assert.Equal(t, "ACME_INC_", CompanyID(GroupKey(" Acme, Inc. ")))
	assert.Equal(t, "A_B", CompanyID("A -- B"))
	assert.Equal(t, "_CAF_", CompanyID("(café)"))
	long := strings.Repeat("X", 60)
	assert.Len(t, CompanyID(long), 50)
}

func TestReadCSVAndAggregate(t *testing.T) {
	agg := NewAggregator()
	st, err := ReadCSV(strings.NewReader(sampleCSV), agg.Add)
	require.NoError(t, err)
	assert.Equal(t, 6, st.Rows)
	assert.Equal(t, 1, st.Malformed)
	assert.Equal(t, 1, agg.emptyNames)
	require.Equal(t, 2, agg.Len())

	cs := agg.Companies(rank.DefaultScorer, rank.DefaultThresholds)
	acme := cs[0]
	assert.Equal(t, "ACME_INC_", acme.ID)
	assert.Equal(t, "Acme, Inc.", acme.Name)
	assert.Equal(t, "Austin", acme.City)
	assert.Equal(t, "ann@acme.test", acme.POCEmail)
	assert.Equal(t, 3, acme.LCACount)
	assert.Equal(t, 1, acme.LCAQ1)
	assert.Equal(t, 1, acme.LCAQ2)
	assert.Equal(t, 0, acme.LCAQ3+acme.LCAQ4)
	assert.Equal(t, 0.67, acme.ApprovalRate)
	// 0.5*3 + 0.5*(2/3*100)
	assert.Equal(t, 34.83, acme.PriorityScore)
	assert.Equal(t, domain.TierBelow50, acme.Tier)

	globex := cs[1]
	assert.Equal(t, 0.0, globex.ApprovalRate)
	assert.Equal(t, 0.5, globex.PriorityScore)
	assert.Equal(t, 1, globex.LCAQ3)
}

func TestReadCSVMissingEmployerColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("A,B\n1,2\n"), func(Filing) {})
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ReadCSV(strings.NewReader(""), func(Filing) {})
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func filings(name string, n, certified int) []Filing {
	out := make([]Filing, n)
	for i := range out {
		out[i] = Filing{EmployerName: name, CaseStatus: "Denied", Quarter: "Q4"}
		if i < certified {
			out[i].CaseStatus = "CERTIFIED"
		}
	}
	return out
}

func TestBuildAssignsTiersAtBoundaries(t *testing.T) {
	var rows []Filing
	rows = append(rows, filings("Thousand", 1000, 1000)...)
	rows = append(rows, filings("FiveHundred", 500, 250)...)
	rows = append(rows, filings("Hundred", 100, 0)...)
	rows = append(rows, filings("Fifty", 50, 50)...)

	b := NewBuilder(rank.DefaultThresholds, nil)
	fixed := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	b.Now = func() time.Time { return fixed }

	res := b.Build(rows)
	require.Len(t, res.Companies, 4)

	byName := map[string]domain.Company{}
	for _, c := range res.Companies {
		byName[c.Name] = c
	}
	assert.Equal(t, domain.TierTop, byName["Thousand"].Tier)
	assert.Equal(t, domain.TierLower, byName["FiveHundred"].Tier)
	assert.Equal(t, domain.TierLowest, byName["Hundred"].Tier)
	assert.Equal(t, domain.TierBelow50, byName["Fifty"].Tier)

	assert.Equal(t, 1, res.Tiers[domain.TierTop].Count)
	assert.Equal(t, 0, res.Tiers[domain.TierMiddle].Count)
	assert.NotNil(t, res.Tiers[domain.TierMiddle].Companies)
	assert.Equal(t, fixed, res.Tiers[domain.TierTop].GeneratedAt)

	for i := 1; i < len(res.Companies); i++ {
		assert.GreaterOrEqual(t, res.Companies[i-1].PriorityScore, res.Companies[i].PriorityScore)
	}
}

func TestBuildEveryCompanyInExactlyOneTier(t *testing.T) {
	var rows []Filing
	for _, n := range []int{1, 50, 51, 100, 101, 500, 501, 999, 1000, 1001} {
		rows = append(rows, filings(fmt.Sprintf("Co%d", n), n, n/2)...)
	}
	res := NewBuilder(rank.DefaultThresholds, nil).Build(rows)

	total := 0
	for _, td := range res.Tiers {
		total += td.Count
	}
	assert.Equal(t, len(res.Companies), total)
}

type memTiers map[domain.Tier]domain.TierData

func (m memTiers) SetTier(_ context.Context, td domain.TierData) error {
	m[td.Tier] = td
	return nil
}

func TestSaveAndWriteTiers(t *testing.T) {
	res := NewBuilder(rank.DefaultThresholds, nil).Build(filings("Acme", 2000, 1900))

	mem := memTiers{}
	require.NoError(t, SaveTiers(context.Background(), mem, res))
	assert.Len(t, mem, 4)
	assert.Equal(t, 1, mem[domain.TierTop].Count)
	_, hasBelow := mem[domain.TierBelow50]
	assert.False(t, hasBelow)

	dir := t.TempDir()
	require.NoError(t, WriteTierFiles(dir, res))
	assert.FileExists(t, filepath.Join(dir, "top-tier.json"))
	assert.FileExists(t, filepath.Join(dir, "below50-tier.json"))
}

func TestBuildFileXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lca.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"EMPLOYER_NAME", "CASE_STATUS", "QUARTER"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Initech", "Certified", "Q1"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"INITECH ", "Denied", "Q2"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"Hooli", "Certified", "Q3"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	res, err := NewBuilder(rank.DefaultThresholds, nil).BuildFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stats.Rows)
	require.Len(t, res.Companies, 2)
	// Hooli: 0.5*1 + 0.5*100 outranks Initech: 0.5*2 + 0.5*50
	assert.Equal(t, "HOOLI", res.Companies[0].ID)
	initech := res.Companies[1]
	assert.Equal(t, "INITECH", initech.ID)
	assert.Equal(t, "Initech", initech.Name)
	assert.Equal(t, 2, initech.LCACount)
	assert.Equal(t, 0.5, initech.ApprovalRate)
}

func TestBuildFileCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lca.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	res, err := NewBuilder(rank.DefaultThresholds, nil).BuildFile(path)
	require.NoError(t, err)
	assert.Len(t, res.Companies, 2)

	_, err = NewBuilder(rank.DefaultThresholds, nil).BuildFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestRenderTop(t *testing.T) {
	res := NewBuilder(rank.DefaultThresholds, nil).Build(append(filings("Acme", 3, 3), filings("Globex", 1, 0)...))
	var buf bytes.Buffer
	RenderTop(&buf, res.Companies, 10)
	out := buf.String()
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Globex")
	assert.Less(t, strings.Index(out, "Acme"), strings.Index(out, "Globex"))

	buf.Reset()
	RenderTierCounts(&buf, res)
	assert.Contains(t, buf.String(), "below50")
}
