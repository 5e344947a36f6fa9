package sitebook

import (
	"encoding/json"
	"maps"
	"slices"
	"time"

	"github.com/etnz/sitebook/date"
	"github.com/google/uuid"
)

// Version is the shape version stamped on new documents.
const Version = "2.0.0"

// timeNow is the clock used to stamp entities. Tests replace it.
var timeNow = func() time.Time { return time.Now().UTC() }

// NewID returns a fresh entity identifier.
var NewID = func() string { return uuid.NewString() }

// Role of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Status of a project.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOnHold    Status = "on-hold"
)

// PaymentType of an incoming client payment.
type PaymentType string

const (
	PaymentAdvance     PaymentType = "advance"
	PaymentInstallment PaymentType = "installment"
)

// Category of an outgoing expense.
type Category string

const (
	CategoryMaterial  Category = "material"
	CategoryLabor     Category = "labor"
	CategoryEquipment Category = "equipment"
	CategoryTransport Category = "transport"
	CategoryOther     Category = "other"
)

// Categories lists expense categories in display order.
var Categories = []Category{CategoryMaterial, CategoryLabor, CategoryEquipment, CategoryTransport, CategoryOther}

// BackupFrequency is informational only.
type BackupFrequency string

const (
	BackupDaily   BackupFrequency = "daily"
	BackupWeekly  BackupFrequency = "weekly"
	BackupMonthly BackupFrequency = "monthly"
)

// Document is the root of all persisted state.
//
// A Document is an immutable snapshot: mutations return a new Document and
// never modify the receiver, so it is safe to share between readers.
type Document struct {
	Users            []User    `json:"users"`
	Projects         []Project `json:"projects"`
	CurrentProjectID *string   `json:"currentProjectId"`
	Settings         Settings  `json:"settings"`
	Metadata         Metadata  `json:"metadata"`

	// Extra holds top-level fields this version does not know about. They are
	// kept so that loading and saving never drops stored data.
	Extra map[string]json.RawMessage `json:"-"`
}

// User is an application account. Passwords are stored as entered.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
}

// IsAdmin reports whether u has the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type Settings struct {
	Currency        string          `json:"currency"`
	DateFormat      string          `json:"dateFormat"`
	AutoBackup      bool            `json:"autoBackup"`
	BackupFrequency BackupFrequency `json:"backupFrequency"`
}

type Metadata struct {
	Version      string     `json:"version"`
	LastModified time.Time  `json:"lastModified"`
	CreatedAt    time.Time  `json:"createdAt"`
	BackupDate   *time.Time `json:"backupDate,omitempty"`
}

// MarshalJSON writes backupDate only on exported copies.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("version", m.Version)
	w.Append("lastModified", m.LastModified)
	w.Append("createdAt", m.CreatedAt)
	w.Optional("backupDate", m.BackupDate)
	return w.MarshalJSON()
}

// Project is a construction project. It exclusively owns its departments and
// both ledgers.
type Project struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	TotalCommittedAmount Amount       `json:"totalCommittedAmount"`
	Description          string       `json:"description"`
	StartDate            time.Time    `json:"startDate"`
	Status               Status       `json:"status"`
	Departments          []Department `json:"departments"`
	PaymentsIn           []PaymentIn  `json:"paymentsIn"`
	PaymentsOut          []PaymentOut `json:"paymentsOut"`
	CreatedAt            time.Time    `json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}

type Department struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
}

// PaymentIn is a payment received from the client.
type PaymentIn struct {
	ID          string       `json:"id"`
	Amount      Amount       `json:"amount"`
	Date        date.Moment  `json:"date"`
	Type        PaymentType  `json:"type"`
	Description string       `json:"description"`
	ClientName  string       `json:"clientName"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// PaymentOut is an expense paid on behalf of a department. DepartmentID may
// dangle once the department is deleted.
type PaymentOut struct {
	ID           string       `json:"id"`
	Amount       Amount       `json:"amount"`
	Date         date.Moment  `json:"date"`
	DepartmentID string       `json:"departmentId"`
	Description  string       `json:"description"`
	Category     Category     `json:"category"`
	Attachments  []Attachment `json:"attachments"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Attachment is a file embedded in a payment record. Data is a data URL.
type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	Data       string    `json:"data"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// DefaultDepartments are seeded, in this order, on every new project.
var DefaultDepartments = []string{"Mason", "Plumbing", "Electrical", "Interior", "Painting", "Miscellaneous"}

// DefaultSettings returns the settings of a new document.
func DefaultSettings() Settings {
	return Settings{
		Currency:        "₹",
		DateFormat:      date.DayMonthYear,
		AutoBackup:      false,
		BackupFrequency: BackupWeekly,
	}
}

// DefaultUsers returns the accounts seeded in a new document.
func DefaultUsers() []User {
	return []User{
		{ID: "1", Username: "admin", Password: "admin123", Role: RoleAdmin, Name: "Administrator"},
		{ID: "2", Username: "user", Password: "user123", Role: RoleUser, Name: "Regular User"},
	}
}

// NewDocument returns a fresh document with the given settings.
func NewDocument(settings Settings, now time.Time) *Document {
	return &Document{
		Users:    DefaultUsers(),
		Projects: []Project{},
		Settings: settings,
		Metadata: Metadata{
			Version:      Version,
			LastModified: now,
			CreatedAt:    now,
		},
	}
}

// NewProject returns an active project with the default departments and
// empty ledgers.
func NewProject(name string, committed Amount, now time.Time) Project {
	departments := make([]Department, 0, len(DefaultDepartments))
	for _, n := range DefaultDepartments {
		departments = append(departments, Department{ID: NewID(), Name: n, IsDefault: true})
	}
	return Project{
		ID:                   NewID(),
		Name:                 name,
		TotalCommittedAmount: committed,
		StartDate:            now,
		Status:               StatusActive,
		Departments:          departments,
		PaymentsIn:           []PaymentIn{},
		PaymentsOut:          []PaymentOut{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// MarshalJSON writes the known fields in a stable order followed by the
// Extra fields sorted by key.
func (d Document) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("users", d.Users)
	w.Append("projects", d.Projects)
	w.Append("currentProjectId", d.CurrentProjectID)
	w.Append("settings", d.Settings)
	w.Append("metadata", d.Metadata)
	for _, k := range slices.Sorted(maps.Keys(d.Extra)) {
		w.Append(k, d.Extra[k])
	}
	return w.MarshalJSON()
}

// CurrentProject returns the project referenced by CurrentProjectID.
func (d *Document) CurrentProject() (Project, bool) {
	if d.CurrentProjectID == nil {
		return Project{}, false
	}
	return d.Project(*d.CurrentProjectID)
}

// Project returns the project with this id.
func (d *Document) Project(id string) (Project, bool) {
	i := d.projectIndex(id)
	if i < 0 {
		return Project{}, false
	}
	return d.Projects[i], true
}

func (d *Document) projectIndex(id string) int {
	return slices.IndexFunc(d.Projects, func(p Project) bool { return p.ID == id })
}

// Department returns the department with this id.
func (p Project) Department(id string) (Department, bool) {
	i := slices.IndexFunc(p.Departments, func(d Department) bool { return d.ID == id })
	if i < 0 {
		return Department{}, false
	}
	return p.Departments[i], true
}

// clone returns a shallow copy of d owning its own Projects slice. Nested
// slices are shared and must be replaced, never modified in place.
func (d *Document) clone() *Document {
	next := *d
	next.Projects = slices.Clone(d.Projects)
	return &next
}
