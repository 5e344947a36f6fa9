package sitebook

import (
	"errors"
	"slices"
	"time"

	"github.com/etnz/sitebook/date"
)

// ErrNoCurrentProject is returned, with the document unchanged, by operations
// on the current project when there is none.
var ErrNoCurrentProject = errors.New("no current project")

// Mutations never validate their arguments: empty names or non positive
// amounts are the caller's to reject. Each one returns a new Document and
// leaves the receiver untouched.

// AddProject appends a new active project with the default departments and
// makes it current.
func (d *Document) AddProject(name string, committed Amount, description string) (*Document, Project) {
	p := NewProject(name, committed, timeNow())
	p.Description = description

	next := d.clone()
	next.Projects = append(next.Projects, p)
	next.CurrentProjectID = &p.ID
	return next, p
}

// ProjectPatch lists the project fields to update; nil fields are kept.
type ProjectPatch struct {
	Name                 *string
	TotalCommittedAmount *Amount
	Description          *string
	StartDate            *time.Time
	Status               *Status
}

// UpdateProject applies patch to the project id.
func (d *Document) UpdateProject(id string, patch ProjectPatch) *Document {
	return d.withProject(id, func(p *Project) {
		setIf(&p.Name, patch.Name)
		setIf(&p.TotalCommittedAmount, patch.TotalCommittedAmount)
		setIf(&p.Description, patch.Description)
		setIf(&p.StartDate, patch.StartDate)
		setIf(&p.Status, patch.Status)
	})
}

// DeleteProject removes the project id. When it was the current project, the
// first remaining project becomes current, or none.
func (d *Document) DeleteProject(id string) *Document {
	next := d.clone()
	next.Projects = slices.DeleteFunc(next.Projects, func(p Project) bool { return p.ID == id })
	if next.CurrentProjectID != nil && *next.CurrentProjectID == id {
		next.CurrentProjectID = nil
		if len(next.Projects) > 0 {
			first := next.Projects[0].ID
			next.CurrentProjectID = &first
		}
	}
	return next
}

// SetCurrentProject points the current project to id. The id is not checked.
func (d *Document) SetCurrentProject(id string) *Document {
	next := d.clone()
	next.CurrentProjectID = &id
	return next
}

// UpdateSettings replaces the settings.
func (d *Document) UpdateSettings(s Settings) *Document {
	next := d.clone()
	next.Settings = s
	return next
}

// AddDepartment adds a department to the current project.
func (d *Document) AddDepartment(name string) (*Document, Department, error) {
	dep := Department{ID: NewID(), Name: name}
	next, err := d.withCurrentProject(func(p *Project) {
		p.Departments = append(slices.Clip(p.Departments), dep)
	})
	if err != nil {
		return d, Department{}, err
	}
	return next, dep, nil
}

// DeleteDepartment removes a department of the current project. Default
// departments are never removed: deleting one is a no-op. Expenses keep
// their reference to the deleted department.
func (d *Document) DeleteDepartment(id string) (*Document, error) {
	return d.withCurrentProject(func(p *Project) {
		p.Departments = slices.DeleteFunc(slices.Clone(p.Departments), func(dep Department) bool {
			return dep.ID == id && !dep.IsDefault
		})
	})
}

// AddPaymentIn records a payment received on the current project. The id and
// timestamps are stamped; an unset date defaults to now.
func (d *Document) AddPaymentIn(payment PaymentIn) (*Document, PaymentIn, error) {
	now := timeNow()
	payment.ID = NewID()
	if payment.Date.IsZero() {
		payment.Date = date.At(now)
	}
	payment.Attachments = nonNil(payment.Attachments)
	payment.CreatedAt = now
	payment.UpdatedAt = now

	next, err := d.withCurrentProject(func(p *Project) {
		p.PaymentsIn = append(slices.Clip(p.PaymentsIn), payment)
	})
	if err != nil {
		return d, PaymentIn{}, err
	}
	return next, payment, nil
}

// PaymentInPatch lists the fields to update; nil fields are kept.
type PaymentInPatch struct {
	Amount      *Amount
	Date        *date.Moment
	Type        *PaymentType
	Description *string
	ClientName  *string
	Attachments *[]Attachment
}

// UpdatePaymentIn applies patch to the payment id of the current project.
func (d *Document) UpdatePaymentIn(id string, patch PaymentInPatch) (*Document, error) {
	now := timeNow()
	return d.withCurrentProject(func(p *Project) {
		p.PaymentsIn = slices.Clone(p.PaymentsIn)
		for i := range p.PaymentsIn {
			in := &p.PaymentsIn[i]
			if in.ID != id {
				continue
			}
			setIf(&in.Amount, patch.Amount)
			setIf(&in.Date, patch.Date)
			setIf(&in.Type, patch.Type)
			setIf(&in.Description, patch.Description)
			setIf(&in.ClientName, patch.ClientName)
			setIf(&in.Attachments, patch.Attachments)
			in.UpdatedAt = now
		}
	})
}

// DeletePaymentIn removes the payment id from the current project.
func (d *Document) DeletePaymentIn(id string) (*Document, error) {
	return d.withCurrentProject(func(p *Project) {
		p.PaymentsIn = slices.DeleteFunc(slices.Clone(p.PaymentsIn), func(in PaymentIn) bool { return in.ID == id })
	})
}

// AddPaymentOut records an expense on the current project. The department
// is the caller's to choose; it is not checked.
func (d *Document) AddPaymentOut(payment PaymentOut) (*Document, PaymentOut, error) {
	now := timeNow()
	payment.ID = NewID()
	if payment.Date.IsZero() {
		payment.Date = date.At(now)
	}
	payment.Attachments = nonNil(payment.Attachments)
	payment.CreatedAt = now
	payment.UpdatedAt = now

	next, err := d.withCurrentProject(func(p *Project) {
		p.PaymentsOut = append(slices.Clip(p.PaymentsOut), payment)
	})
	if err != nil {
		return d, PaymentOut{}, err
	}
	return next, payment, nil
}

// PaymentOutPatch lists the fields to update; nil fields are kept.
type PaymentOutPatch struct {
	Amount       *Amount
	Date         *date.Moment
	DepartmentID *string
	Description  *string
	Category     *Category
	Attachments  *[]Attachment
}

// UpdatePaymentOut applies patch to the expense id of the current project.
func (d *Document) UpdatePaymentOut(id string, patch PaymentOutPatch) (*Document, error) {
	now := timeNow()
	return d.withCurrentProject(func(p *Project) {
		p.PaymentsOut = slices.Clone(p.PaymentsOut)
		for i := range p.PaymentsOut {
			out := &p.PaymentsOut[i]
			if out.ID != id {
				continue
			}
			setIf(&out.Amount, patch.Amount)
			setIf(&out.Date, patch.Date)
			setIf(&out.DepartmentID, patch.DepartmentID)
			setIf(&out.Description, patch.Description)
			setIf(&out.Category, patch.Category)
			setIf(&out.Attachments, patch.Attachments)
			out.UpdatedAt = now
		}
	})
}

// DeletePaymentOut removes the expense id from the current project.
func (d *Document) DeletePaymentOut(id string) (*Document, error) {
	return d.withCurrentProject(func(p *Project) {
		p.PaymentsOut = slices.DeleteFunc(slices.Clone(p.PaymentsOut), func(out PaymentOut) bool { return out.ID == id })
	})
}

// withProject returns a copy of d where f has modified the project id, and
// its updatedAt is refreshed. f works on a copy of the project: it must
// replace the nested slices it changes, never write through them.
func (d *Document) withProject(id string, f func(p *Project)) *Document {
	i := d.projectIndex(id)
	if i < 0 {
		return d
	}
	next := d.clone()
	p := next.Projects[i]
	f(&p)
	p.UpdatedAt = timeNow()
	next.Projects[i] = p
	return next
}

func (d *Document) withCurrentProject(f func(p *Project)) (*Document, error) {
	cur, ok := d.CurrentProject()
	if !ok {
		return d, ErrNoCurrentProject
	}
	return d.withProject(cur.ID, f), nil
}

// setIf sets *dst to *src when src is not nil.
func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
