package app

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"hn-newest-parser/internal/normalize"
)

// Reporter печатает результаты анализов в человекочитаемом виде
type Reporter struct {
	out        io.Writer
	normalizer *normalize.Normalizer
}

func NewReporter(out io.Writer, normalizer *normalize.Normalizer) *Reporter {
	return &Reporter{out: out, normalizer: normalizer}
}

func (r *Reporter) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	return t
}

func (r *Reporter) PrintOrder(rep *OrderReport) {
	fmt.Fprintf(r.out, "Number of articles: %d\n", len(rep.Sample.Records))

	answer := "Yes"
	if !rep.Check.Sorted {
		answer = "No"
	}
	fmt.Fprintf(r.out, "Are the articles sorted correctly? %s\n", answer)
	if !rep.Check.Sorted {
		fmt.Fprintf(r.out, "First violation: %s\n", rep.Check.Reason)
	}

	r.printLookupSummary(rep.Sample)
}

func (r *Reporter) PrintAuthors(rep *AuthorsReport) {
	n := len(rep.Sample.Records)
	if len(rep.Duplicates) == 0 {
		fmt.Fprintf(r.out, "No duplicate authors found within the first %d articles!\n", n)
		r.printLookupSummary(rep.Sample)
		return
	}

	fmt.Fprintf(r.out, "Authors with more than one article within the first %d articles:\n", n)
	t := r.newTable()
	t.AppendHeader(table.Row{"#", "Author", "Articles"})
	for i, d := range rep.Duplicates {
		t.AppendRow(table.Row{i + 1, d.Author, d.Count})
	}
	t.Render()

	r.printLookupSummary(rep.Sample)
}

func (r *Reporter) PrintSearch(rep *SearchReport) {
	if len(rep.Matches) == 0 {
		fmt.Fprintf(r.out, "No articles found matching the keyword %q.\n", rep.Keyword)
		return
	}

	fmt.Fprintf(r.out, "Found %d matching articles for %q:\n", len(rep.Matches), rep.Keyword)
	t := r.newTable()
	t.AppendHeader(table.Row{"#", "ID", "Title"})
	for i, m := range rep.Matches {
		t.AppendRow(table.Row{i + 1, m.ID, r.normalizer.TruncatePreview(m.Title)})
	}
	t.Render()
}

func (r *Reporter) printLookupSummary(s *Sample) {
	if len(s.Failures) == 0 {
		return
	}
	fmt.Fprintf(r.out, "Warning: %s\n", s.LookupSummary())
}
