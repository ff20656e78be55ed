package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/pricemap/pkg/combiner"
	"github.com/agentstation/pricemap/pkg/registry"
	"github.com/agentstation/pricemap/pkg/status"
)

// Write renders data in format, converting it with toTable first when the
// format is a table.
func Write(w io.Writer, format Format, data any, toTable func(wide bool) Data) error {
	formatter := NewFormatter(format)
	if format.IsTable() && toTable != nil {
		return formatter.Format(w, toTable(format == FormatWide))
	}
	return formatter.Format(w, data)
}

// CombineTable converts combiner results to one row per category.
func CombineTable(results []*combiner.Result, wide bool) Data {
	headers := []string{"Category", "Products", "Model", "Attributes", "Unmatched", "No Brand", "Missing", "Unparsable"}
	if wide {
		headers = append(headers, "Vendors", "Reused", "Duration", "Output")
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		s := r.Stats
		row := []string{
			r.Category,
			strconv.Itoa(s.Emitted),
			strconv.Itoa(s.ModelMatches),
			strconv.Itoa(s.AttributeMatches),
			strconv.Itoa(s.Unmatched),
			strconv.Itoa(s.NoBrand),
			strconv.Itoa(len(s.MissingFiles)),
			strconv.Itoa(len(s.UnparsableFiles)),
		}
		if wide {
			row = append(row,
				vendorCounts(s.Vendors),
				strconv.FormatBool(s.Reused),
				s.Duration.Round(time.Millisecond).String(),
				r.Output,
			)
		}
		rows = append(rows, row)
	}

	align := []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// StatusTable converts a status report to one row per vendor file, followed
// by the combined output of each category and the aggregate.
func StatusTable(report *status.Report, wide bool) Data {
	headers := []string{"Category", "Vendor", "Products", "Size", "Age", "Freshness"}
	if wide {
		headers = append(headers, "Path")
	}

	var rows [][]string
	for _, c := range report.Categories {
		for _, vf := range c.Vendors {
			row := []string{c.Name, vf.Vendor, "-", "-", "-", "missing"}
			switch {
			case vf.Error != "":
				row[5] = "unreadable"
				if vf.Exists {
					row[3] = FormatSize(vf.Size)
					row[4] = status.FormatAge(vf.Age)
				}
			case vf.Exists:
				row[2] = strconv.Itoa(vf.Products)
				row[3] = FormatSize(vf.Size)
				row[4] = status.FormatAge(vf.Age)
				row[5] = string(vf.Freshness)
			}
			if wide {
				row = append(row, vf.Path)
			}
			rows = append(rows, row)
		}
		rows = append(rows, outputRow(c.Name, "(combined)", c.Combined, wide))
	}
	rows = append(rows, outputRow("(all)", "(aggregate)", report.Aggregate, wide))

	align := []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignLeft}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// RegistryTable converts a registry to one row per category.
func RegistryTable(reg *registry.Registry, wide bool) Data {
	headers := []string{Header("category"), Header("directory"), Header("feature_source")}
	if wide {
		headers = append(headers, "Vendors", "Output")
	}

	rows := make([][]string, 0, len(reg.Categories))
	for i := range reg.Categories {
		cat := &reg.Categories[i]
		row := []string{cat.Name, reg.Dir(cat), cat.FeatureSource}
		if wide {
			row = append(row, strings.Join(reg.Vendors, ", "), reg.OutputFile(cat))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

// FormatSize renders a byte count in KB with one decimal.
func FormatSize(size int64) string {
	return fmt.Sprintf("%.1fKB", float64(size)/1024)
}

func outputRow(category, label string, out status.Output, wide bool) []string {
	row := []string{category, label, "-", "-", "-", "missing"}
	switch {
	case out.Error != "":
		row[5] = "unreadable"
	case out.Exists:
		row[2] = strconv.Itoa(out.Products)
		row[3] = FormatSize(out.Size)
		row[5] = "present"
	}
	if wide {
		row = append(row, out.Path)
	}
	return row
}

func vendorCounts(counts map[string]int) string {
	vendors := make([]string, 0, len(counts))
	for v := range counts {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)

	parts := make([]string, len(vendors))
	for i, v := range vendors {
		parts[i] = fmt.Sprintf("%s=%d", v, counts[v])
	}
	return strings.Join(parts, " ")
}
