package render

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go-occurrence-assess/internal/model"
)

// narratives gives each assessor its standing interpretation block; the
// numbers vary per run, the caveats do not.
var narratives = map[string]string{
	model.AssessRecordCounts: "Raw record counts per period. Rising counts reflect recording effort at " +
		"least as much as abundance; compare groups before reading a trend as biological.",
	model.AssessSpeciesCounts: "Distinct species recorded per period. Taxonomic concepts drift over time " +
		"and between source datasets, so identical names across periods are not guaranteed to mean the same taxon.",
	model.AssessTaxonomicRes: "Proportion of records identified to species rank. A falling proportion " +
		"usually signals bulk-collected or weakly determined material entering the sources.",
	model.AssessRarityBias: "Fit (R²) of record count against a range-size proxy per period. Weak fits " +
		"suggest recorders target rare or charismatic species rather than sampling in proportion to range.",
	model.AssessSpatialCover: "Occupied grid cells per period and the overlap between consecutive " +
		"periods. Low overlap means period comparisons partly measure where people went, not what changed.",
	model.AssessSpatialBias: "Nearest-neighbour index per period against a bootstrapped random baseline. " +
		"Values below the simulated band indicate clustered sampling (roads, towns, reserves).",
	model.AssessEnvBias: "Sampled versus background environmental space (PCA). A centroid offset means " +
		"records over-represent part of the region's climate space.",
}

// WriteReport renders the markdown report for a finished assessment run
func WriteReport(path, jobID string, spec model.AssessmentJobSpec, tables []model.SummaryTable, charts map[string][]string) (model.ExportResult, error) {
	var sb strings.Builder

	sb.WriteString("# Occurrence sampling-bias assessment\n\n")
	sb.WriteString(fmt.Sprintf("Job `%s`, generated %s.\n\n", jobID, time.Now().Format("2006-01-02 15:04")))

	sb.WriteString("## Setup\n\n")
	sb.WriteString(fmt.Sprintf("- Grouping column: `%s`\n", spec.GroupBy))
	labels := make([]string, len(spec.Periods))
	for i, p := range spec.Periods {
		labels[i] = p.Label()
	}
	sb.WriteString(fmt.Sprintf("- Periods: %s\n", strings.Join(labels, ", ")))
	for _, src := range spec.Sources {
		sb.WriteString(fmt.Sprintf("- Source: %s (%s)\n", src.URL, src.Type))
	}
	sb.WriteString("\n")

	for _, table := range tables {
		sb.WriteString(fmt.Sprintf("## %s\n\n", table.Assessor))
		if n, ok := narratives[table.Assessor]; ok {
			sb.WriteString(n + "\n\n")
		}

		writeExclusions(&sb, table)
		writeTable(&sb, table)

		for _, note := range table.Notes {
			sb.WriteString(fmt.Sprintf("> %s\n", note))
		}
		if len(table.Notes) > 0 {
			sb.WriteString("\n")
		}
		for _, chart := range charts[table.Assessor] {
			sb.WriteString(fmt.Sprintf("![%s](%s)\n\n", table.Assessor, chart))
		}
	}

	err := os.WriteFile(path, []byte(sb.String()), 0644)
	result := model.ExportResult{
		Type:        "report",
		Path:        path,
		RecordCount: len(tables),
		Success:     err == nil,
		ExportedAt:  time.Now(),
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result, err
}

// writeExclusions surfaces filtering so bias from the filtering itself
// stays visible to the analyst
func writeExclusions(sb *strings.Builder, table model.SummaryTable) {
	if table.Excluded == 0 {
		return
	}
	reasons := make([]string, 0, len(table.Exclusions))
	for r := range table.Exclusions {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)

	sb.WriteString(fmt.Sprintf("Excluded %d records: ", table.Excluded))
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = fmt.Sprintf("%s %d", strings.ReplaceAll(r, "_", " "), table.Exclusions[r])
	}
	sb.WriteString(strings.Join(parts, ", ") + ".\n\n")
}

func writeTable(sb *strings.Builder, table model.SummaryTable) {
	metrics := metricColumns(table)
	if len(table.Rows) == 0 {
		return
	}

	sb.WriteString("| period | group | records |")
	for _, m := range metrics {
		sb.WriteString(" " + m + " |")
	}
	sb.WriteString("\n|---|---|---|")
	for range metrics {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for _, row := range table.Rows {
		group := row.Group
		if group == "" {
			group = "all"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %d |", row.Period, group, row.RecordCount))
		for _, m := range metrics {
			if v, ok := row.Metrics[m]; ok {
				sb.WriteString(fmt.Sprintf(" %.4g |", v))
			} else {
				sb.WriteString(" n/a |")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// metricColumns returns the union of metric names across rows, sorted
func metricColumns(table model.SummaryTable) []string {
	seen := make(map[string]struct{})
	for _, row := range table.Rows {
		for m := range row.Metrics {
			seen[m] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for m := range seen {
		cols = append(cols, m)
	}
	sort.Strings(cols)
	return cols
}
