package navigator

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractCampusSetting(t *testing.T) {
	doc := docFromHTML(t, `<table><tr>
		<td class="srb">Campus setting:</td>
		<td>City: Midsize</td>
	</tr></table>`)

	got := ExtractCampusSetting(doc)
	require.NotNil(t, got)
	require.Equal(t, "Midsize", *got)

	empty := docFromHTML(t, `<table><tr><td class="srb">Other row:</td><td>x</td></tr></table>`)
	require.Nil(t, ExtractCampusSetting(empty))
}

func TestExtractStudentPopulation(t *testing.T) {
	doc := docFromHTML(t, `<table><tr>
		<td class="srb">Student population:</td>
		<td>12,345 (10,200 undergraduate)</td>
	</tr></table>`)

	total, undergrad := ExtractStudentPopulation(doc)
	require.NotNil(t, total)
	require.Equal(t, 12345, *total)
	require.NotNil(t, undergrad)
	require.Equal(t, 10200, *undergrad)
}

func TestExtractStudentPopulationNoUndergrad(t *testing.T) {
	doc := docFromHTML(t, `<table><tr>
		<td class="srb">Student population:</td>
		<td>900</td>
	</tr></table>`)

	total, undergrad := ExtractStudentPopulation(doc)
	require.NotNil(t, total)
	require.Equal(t, 900, *total)
	require.Nil(t, undergrad)
}

func TestExtractFacultyRatio(t *testing.T) {
	doc := docFromHTML(t, `<table><tr>
		<td class="srb">Student-to-faculty ratio:</td>
		<td>16 to 1</td>
	</tr></table>`)

	got := ExtractFacultyRatio(doc)
	require.NotNil(t, got)
	require.Equal(t, 16.0, *got)
}

func TestExtractRetentionAvg(t *testing.T) {
	doc := docFromHTML(t, `<table>
		<tr><th>Retention Rates</th></tr>
		<tr><td><img src="https://nces.ed.gov/chart.aspx?data=80%3B60&type=bar"/></td></tr>
	</table>`)

	got := ExtractRetentionAvg(doc)
	require.NotNil(t, got)
	require.Equal(t, 70.0, *got)
}

func TestExtractRetentionAvgSingleValue(t *testing.T) {
	doc := docFromHTML(t, `<table>
		<tr><th>Retention Rates</th></tr>
		<tr><td><img src="https://nces.ed.gov/chart.aspx?data=80&type=bar"/></td></tr>
	</table>`)

	got := ExtractRetentionAvg(doc)
	require.NotNil(t, got)
	require.Equal(t, 80.0, *got)
}

func TestExtractAcceptanceRate(t *testing.T) {
	doc := docFromHTML(t, `<table><tr>
		<td>Percent admitted</td>
		<td>68%</td>
	</tr></table>`)

	got := ExtractAcceptanceRate(doc)
	require.NotNil(t, got)
	require.Equal(t, 68.0, *got)
}

const testScoresHTML = `<div id="admsns">
	<table class="tabular">
		<thead><tr><th>Test Scores</th><th>25th</th><th>50th</th><th>75th</th></tr></thead>
		<tbody>
			<tr><td>SAT Evidence-Based Reading and Writing</td><td>580</td><td>650</td><td>700</td></tr>
			<tr><td>SAT Math</td><td>570</td><td>640</td><td>710</td></tr>
			<tr><td>ACT Composite</td><td>24</td><td>28</td><td>31</td></tr>
		</tbody>
	</table>
</div>`

func TestExtractTestScores(t *testing.T) {
	sat, act := ExtractTestScores(docFromHTML(t, testScoresHTML))
	require.NotNil(t, sat)
	require.Equal(t, 1290, *sat)
	require.NotNil(t, act)
	require.Equal(t, 28, *act)
}

func TestExtractTestScoresPartialSAT(t *testing.T) {
	// Only the math component reported; no partial sums.
	html := `<div id="admsns">
	<table class="tabular">
		<thead><tr><th>Test Scores</th><th>25th</th><th>50th</th><th>75th</th></tr></thead>
		<tbody>
			<tr><td>SAT Math</td><td>570</td><td>640</td><td>710</td></tr>
		</tbody>
	</table>
</div>`
	sat, act := ExtractTestScores(docFromHTML(t, html))
	require.Nil(t, sat)
	require.Nil(t, act)
}

func TestExtractGradRate4yr(t *testing.T) {
	doc := docFromHTML(t, `<div>
		<div class="tablenames">Overall Bachelor's Degree Graduation Rates</div>
		<table class="graphtabs">
			<tr><td><img src="https://nces.ed.gov/chart.aspx?data=52%3B58%3B60"/></td></tr>
		</table>
	</div>`)

	got := ExtractGradRate4yr(doc)
	require.NotNil(t, got)
	require.Equal(t, 52.0, *got)
}

func TestExtractAvgAidAwarded(t *testing.T) {
	doc := docFromHTML(t, `<div id="finaid">
	<table class="tabular">
		<tr><td>Grant aid</td><td>90%</td><td>1,000</td><td>$6,800</td><td>$7,500</td></tr>
		<tr><td>Loans</td><td>55%</td><td>700</td><td>$4,900</td><td>$5,000</td></tr>
		<tr><td>Narrow row</td><td>skipped</td></tr>
	</table>
</div>`)

	got := ExtractAvgAidAwarded(doc)
	require.NotNil(t, got)
	require.Equal(t, 6250.0, *got)
}

func TestExtractTotalExpenses(t *testing.T) {
	doc := docFromHTML(t, `<div id="expenses">
	<table>
		<tr><td>Total Expenses</td><td>2021-2022</td><td>2022-2023</td><td></td></tr>
		<tr><td>In-state</td></tr>
		<tr><td>On Campus</td><td>$20,000</td><td>$21,500</td><td></td></tr>
		<tr><td>Out-of-state</td></tr>
		<tr><td>On Campus</td><td>$30,000</td><td>$32,000</td><td></td></tr>
	</table>
</div>`)

	inState, outState := ExtractTotalExpenses(doc)
	require.NotNil(t, inState)
	require.Equal(t, 21500, *inState)
	require.NotNil(t, outState)
	require.Equal(t, 32000, *outState)
}

func TestParseIntLoose(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"12,345 students", intPtr(12345)},
		{"$7,500", intPtr(7500)},
		{"N/A", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := parseIntLoose(tt.in)
		if tt.want == nil {
			require.Nil(t, got, "parseIntLoose(%q)", tt.in)
		} else {
			require.NotNil(t, got, "parseIntLoose(%q)", tt.in)
			require.Equal(t, *tt.want, *got, "parseIntLoose(%q)", tt.in)
		}
	}
}

func intPtr(v int) *int { return &v }
