package renderer

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/etnz/sitebook"
	md "github.com/nao1215/markdown"
)

// byDate sorts undated payments first, then by date.
func byDate[P sitebook.PaymentIn | sitebook.PaymentOut](payments []P, date func(P) int64) []P {
	sorted := slices.Clone(payments)
	slices.SortStableFunc(sorted, func(a, b P) int {
		switch da, db := date(a), date(b); {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})
	return sorted
}

// PaymentsInMarkdown lists the payments received on a project, by date.
func PaymentsInMarkdown(p sitebook.Project, s sitebook.Settings) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Payments received for %s", p.Name))
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"ID", "Date", "Type", "Amount", "Client", "Description", "Files"},
		Rows:      [][]string{},
	}
	payments := byDate(p.PaymentsIn, func(in sitebook.PaymentIn) int64 { return in.Date.Time().Unix() })
	for _, in := range payments {
		table.Rows = append(table.Rows, []string{
			in.ID,
			in.Date.Format(s.DateFormat),
			string(in.Type),
			sitebook.FormatCurrency(in.Amount, s.Currency),
			in.ClientName,
			in.Description,
			fmt.Sprint(len(in.Attachments)),
		})
	}
	table.Rows = append(table.Rows, []string{"", "", md.Bold("Total"), md.Bold(sitebook.FormatCurrency(sitebook.TotalIn(payments), s.Currency)), "", "", ""})
	doc.Table(table)
	return doc.String()
}

// PaymentsOutMarkdown lists the expenses of a project, by date. Expenses of
// deleted departments show as Unknown.
func PaymentsOutMarkdown(p sitebook.Project, s sitebook.Settings) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Expenses for %s", p.Name))
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignRight},
		Header:    []string{"ID", "Date", "Department", "Category", "Amount", "Description", "Files"},
		Rows:      [][]string{},
	}
	payments := byDate(p.PaymentsOut, func(out sitebook.PaymentOut) int64 { return out.Date.Time().Unix() })
	for _, out := range payments {
		table.Rows = append(table.Rows, []string{
			out.ID,
			out.Date.Format(s.DateFormat),
			sitebook.DepartmentName(p.Departments, out.DepartmentID),
			string(out.Category),
			sitebook.FormatCurrency(out.Amount, s.Currency),
			out.Description,
			fmt.Sprint(len(out.Attachments)),
		})
	}
	table.Rows = append(table.Rows, []string{"", "", "", md.Bold("Total"), md.Bold(sitebook.FormatCurrency(sitebook.TotalOut(payments), s.Currency)), "", ""})
	doc.Table(table)
	return doc.String()
}

// AttachmentsMarkdown lists attached files.
func AttachmentsMarkdown(attachments []sitebook.Attachment) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2("Attachments")
	if len(attachments) == 0 {
		doc.PlainText("No attachments.")
		return doc.String()
	}
	items := make([]string, 0, len(attachments))
	for _, a := range attachments {
		kind := sitebook.FileExtension(a.Name)
		switch {
		case sitebook.IsImage(a.Type):
			kind = "image"
		case sitebook.IsPDF(a.Type):
			kind = "pdf"
		}
		items = append(items, fmt.Sprintf("%s (%s, %s) id %s", a.Name, kind, sitebook.FormatFileSize(a.Size), a.ID))
	}
	doc.BulletList(items...)
	return doc.String()
}
