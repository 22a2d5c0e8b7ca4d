package main

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	appModels "github.com/unigate/admissions/internal/app/models"
	appRepos "github.com/unigate/admissions/internal/app/repositories"
)

func lookupHeader(def appRepos.LookupDefinition) []string {
	header := []string{"id"}
	header = append(header, def.Columns...)
	for _, col := range def.ReadOnly {
		if i := strings.LastIndex(col, "."); i >= 0 {
			col = col[i+1:]
		}
		header = append(header, col)
	}
	return append(header, "active")
}

func lookupRow(rec appModels.LookupRecord, width int) []string {
	row := make([]string, 0, width)
	row = append(row, rec.Base().ID.String())
	for _, target := range rec.Targets() {
		row = append(row, cell(target))
	}
	for len(row) < width-1 {
		row = append(row, "")
	}
	active := "no"
	if rec.Base().IsActive {
		active = "yes"
	}
	return append(row[:width-1], active)
}

// cell prints a scan target, following pointers and leaving nil blank
func cell(v interface{}) string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if s, ok := rv.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(rv.Interface())
}

func renderLookupTable(out io.Writer, def appRepos.LookupDefinition, rows []appModels.LookupRecord) {
	color.New(color.FgCyan).Fprintf(out, "\n%s (%d)\n", def.Label, len(rows))

	header := lookupHeader(def)
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	for _, rec := range rows {
		table.Append(lookupRow(rec, len(header)))
	}
	table.Render()
}
