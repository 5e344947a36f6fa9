package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/sitebook"
	md "github.com/nao1215/markdown"
)

// ProjectsMarkdown lists the projects of d, the current one marked with a
// star.
func ProjectsMarkdown(d *sitebook.Document) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Projects")
	if len(d.Projects) == 0 {
		doc.PlainText("No projects yet.")
		return doc.String()
	}
	cur, _ := d.CurrentProject()
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"", "ID", "Name", "Status", "Committed", "Received", "Progress"},
		Rows:      [][]string{},
	}
	for _, p := range d.Projects {
		mark := ""
		if p.ID == cur.ID {
			mark = "*"
		}
		progress := sitebook.PaymentProgress(p)
		table.Rows = append(table.Rows, []string{
			mark,
			p.ID,
			p.Name,
			string(p.Status),
			sitebook.FormatCurrency(progress.TotalCommitted, d.Settings.Currency),
			sitebook.FormatCurrency(progress.TotalReceived, d.Settings.Currency),
			progress.PercentageReceived.String(),
		})
	}
	doc.Table(table)
	return doc.String()
}

// SummaryMarkdown is the dashboard of a project: payment progress, expenses
// and their breakdown by department and category.
func SummaryMarkdown(p sitebook.Project, s sitebook.Settings) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	money := func(a sitebook.Amount) string { return sitebook.FormatCurrency(a, s.Currency) }

	summary := sitebook.ProjectSummary(p)

	doc.H1(p.Name)
	doc.PlainText(fmt.Sprintf("Status: %s, started on %s", p.Status, sitebook.FormatDate(p.StartDate, s.DateFormat)))
	if p.Description != "" {
		doc.PlainText(p.Description)
	}

	doc.H2("Payments")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"", "Amount", "%"},
		Rows: [][]string{
			{"Committed", money(summary.TotalCommitted), ""},
			{"Received", money(summary.TotalReceived), summary.PercentageReceived.String()},
			{"Remaining", money(summary.RemainingBalance), summary.PercentageRemaining.String()},
			{"Expenses", money(summary.TotalExpenses), ""},
			{md.Bold("Net Balance"), md.Bold(money(summary.NetBalance)), ""},
		},
	})
	if summary.NeedsPaymentReminder {
		doc.Blockquote(fmt.Sprintf("Payment reminder: expenses exceed the payments received by %s.", money(summary.NetBalance.Neg())))
	}

	departments := sitebook.Spent(sitebook.ExpensesByDepartment(p.PaymentsOut, p.Departments))
	if len(departments) > 0 {
		doc.H2("Expenses by Department")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
			Header:    []string{"Department", "Total", "Count"},
			Rows:      [][]string{},
		}
		for _, b := range departments {
			table.Rows = append(table.Rows, []string{b.Name, money(b.Total), fmt.Sprint(b.Count)})
		}
		doc.Table(table)
	}

	categories := sitebook.ExpensesByCategory(p.PaymentsOut)
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Category", "Total", "Count"},
		Rows:      [][]string{},
	}
	for _, b := range categories {
		if b.Count == 0 {
			continue
		}
		table.Rows = append(table.Rows, []string{string(b.Category), money(b.Total), fmt.Sprint(b.Count)})
	}
	if len(table.Rows) > 0 {
		doc.H2("Expenses by Category")
		doc.Table(table)
	}
	return doc.String()
}

// DepartmentsMarkdown lists the departments of a project.
func DepartmentsMarkdown(p sitebook.Project) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Departments of %s", p.Name))
	table := md.TableSet{
		Header: []string{"ID", "Name", "Default"},
		Rows:   [][]string{},
	}
	for _, d := range p.Departments {
		def := ""
		if d.IsDefault {
			def = "yes"
		}
		table.Rows = append(table.Rows, []string{d.ID, d.Name, def})
	}
	doc.Table(table)
	return doc.String()
}

// SettingsMarkdown shows the document settings and metadata.
func SettingsMarkdown(d *sitebook.Document) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Settings")
	doc.Table(md.TableSet{
		Header: []string{"Setting", "Value"},
		Rows: [][]string{
			{"Currency", d.Settings.Currency},
			{"Date format", d.Settings.DateFormat},
			{"Auto backup", fmt.Sprint(d.Settings.AutoBackup)},
			{"Backup frequency", string(d.Settings.BackupFrequency)},
			{"Version", d.Metadata.Version},
			{"Created", sitebook.FormatDate(d.Metadata.CreatedAt, d.Settings.DateFormat)},
			{"Last modified", sitebook.FormatDate(d.Metadata.LastModified, d.Settings.DateFormat)},
		},
	})
	return doc.String()
}
