package records

import (
	"strings"
	"unicode"
)

// Nested collection names as they appear in local JSON.
const (
	CollectionQualifications = "qualifications"
	CollectionDependents     = "dependents"
	CollectionTrainings      = "trainings"
	CollectionMedicalRecords = "medicalRecords"
	CollectionSalaryHistory  = "salaryHistory"
	CollectionBankDetails    = "bankDetails"
	CollectionAssets         = "assets"
)

// MigratedCollections are sent separately from the employee root during a
// server migration. The remaining collections travel embedded in the root.
var MigratedCollections = []string{
	CollectionQualifications,
	CollectionDependents,
	CollectionTrainings,
	CollectionMedicalRecords,
}

// CollectionSlug is the URL path segment the server uses for a migrated
// collection, e.g. "medical-records" for medicalRecords.
func CollectionSlug(collection string) string {
	var b strings.Builder
	for _, r := range collection {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CollectionFromSlug maps a path segment back to a migrated collection name.
func CollectionFromSlug(slug string) (string, bool) {
	for _, name := range MigratedCollections {
		if CollectionSlug(name) == slug {
			return name, true
		}
	}
	return "", false
}

type Employee struct {
	ID             LocalID   `json:"id"`
	EmployeeNumber string    `json:"employeeNumber,omitempty"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	DateOfBirth    string    `json:"dateOfBirth,omitempty"`
	Gender         string    `json:"gender,omitempty"`
	NationalID     string    `json:"nationalId,omitempty"`
	Department     string    `json:"department,omitempty"`
	Position       string    `json:"position,omitempty"`
	EmploymentType string    `json:"employmentType,omitempty"`
	Status         string    `json:"status,omitempty"`
	JoinDate       string    `json:"joinDate,omitempty"`
	ProfilePicture FileField `json:"profilePicture"`

	Qualifications []Qualification `json:"qualifications,omitempty"`
	Dependents     []Dependent     `json:"dependents,omitempty"`
	Trainings      []Training      `json:"trainings,omitempty"`
	MedicalRecords []MedicalRecord `json:"medicalRecords,omitempty"`
	SalaryHistory  []SalaryEntry   `json:"salaryHistory,omitempty"`
	BankDetails    []BankDetail    `json:"bankDetails,omitempty"`
	Assets         []Asset         `json:"assets,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`

	Extra Extra `json:"-"`
	orig  originals
}

type Qualification struct {
	ID           LocalID   `json:"id"`
	Degree       string    `json:"degree"`
	Institution  string    `json:"institution"`
	FieldOfStudy string    `json:"fieldOfStudy,omitempty"`
	Year         string    `json:"year,omitempty"`
	Grade        string    `json:"grade,omitempty"`
	DocumentURL  FileField `json:"documentUrl"`
	Extra        Extra     `json:"-"`
	orig         originals
}

type Dependent struct {
	ID           LocalID   `json:"id"`
	Name         string    `json:"name"`
	Relationship string    `json:"relationship"`
	DateOfBirth  string    `json:"dateOfBirth,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	DocumentURL  FileField `json:"documentUrl"`
	Extra        Extra     `json:"-"`
	orig         originals
}

type Training struct {
	ID             LocalID   `json:"id"`
	Title          string    `json:"title"`
	Provider       string    `json:"provider,omitempty"`
	StartDate      string    `json:"startDate,omitempty"`
	EndDate        string    `json:"endDate,omitempty"`
	Status         string    `json:"status,omitempty"`
	CertificateURL FileField `json:"certificateUrl"`
	Extra          Extra     `json:"-"`
	orig           originals
}

type MedicalRecord struct {
	ID          LocalID   `json:"id"`
	RecordType  string    `json:"recordType"`
	Date        string    `json:"date,omitempty"`
	Provider    string    `json:"provider,omitempty"`
	Description string    `json:"description,omitempty"`
	DocumentURL FileField `json:"documentUrl"`
	Extra       Extra     `json:"-"`
	orig        originals
}

type SalaryEntry struct {
	ID            LocalID `json:"id"`
	BasicSalary   Amount  `json:"basicSalary"`
	Allowances    Amount  `json:"allowances,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	EffectiveDate string  `json:"effectiveDate,omitempty"`
	Extra         Extra   `json:"-"`
	orig          originals
}

type BankDetail struct {
	ID            LocalID `json:"id"`
	BankName      string  `json:"bankName"`
	AccountName   string  `json:"accountName,omitempty"`
	AccountNumber string  `json:"accountNumber"`
	BranchCode    string  `json:"branchCode,omitempty"`
	IsPrimary     bool    `json:"isPrimary,omitempty"`
	Extra         Extra   `json:"-"`
	orig          originals
}

type Asset struct {
	ID           LocalID   `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category,omitempty"`
	SerialNumber string    `json:"serialNumber,omitempty"`
	AssignedDate string    `json:"assignedDate,omitempty"`
	ReturnDate   string    `json:"returnDate,omitempty"`
	Condition    string    `json:"condition,omitempty"`
	DocumentURL  FileField `json:"documentUrl"`
	Extra        Extra     `json:"-"`
	orig         originals
}

// FileSlot points at one attachment field inside an employee aggregate.
type FileSlot struct {
	Path  string
	Field *FileField
}

// FileSlots lists every attachment field of the employee, the profile
// picture first and then each nested entry in collection order.
func (e *Employee) FileSlots() []FileSlot {
	slots := []FileSlot{{Path: "profilePicture", Field: &e.ProfilePicture}}
	for i := range e.Qualifications {
		slots = append(slots, FileSlot{Path: slotPath(CollectionQualifications, e.Qualifications[i].ID, "documentUrl"), Field: &e.Qualifications[i].DocumentURL})
	}
	for i := range e.Dependents {
		slots = append(slots, FileSlot{Path: slotPath(CollectionDependents, e.Dependents[i].ID, "documentUrl"), Field: &e.Dependents[i].DocumentURL})
	}
	for i := range e.Trainings {
		slots = append(slots, FileSlot{Path: slotPath(CollectionTrainings, e.Trainings[i].ID, "certificateUrl"), Field: &e.Trainings[i].CertificateURL})
	}
	for i := range e.MedicalRecords {
		slots = append(slots, FileSlot{Path: slotPath(CollectionMedicalRecords, e.MedicalRecords[i].ID, "documentUrl"), Field: &e.MedicalRecords[i].DocumentURL})
	}
	for i := range e.Assets {
		slots = append(slots, FileSlot{Path: slotPath(CollectionAssets, e.Assets[i].ID, "documentUrl"), Field: &e.Assets[i].DocumentURL})
	}
	return slots
}

func slotPath(collection string, id LocalID, field string) string {
	return collection + "[" + string(id) + "]." + field
}

// WithoutMigratedCollections returns a shallow copy of the employee without
// the collections that are migrated through their own endpoints.
func (e Employee) WithoutMigratedCollections() Employee {
	e.Qualifications = nil
	e.Dependents = nil
	e.Trainings = nil
	e.MedicalRecords = nil
	return e
}

// CollectionLen reports the number of entries in the named collection, or -1
// for an unknown name.
func (e *Employee) CollectionLen(collection string) int {
	switch collection {
	case CollectionQualifications:
		return len(e.Qualifications)
	case CollectionDependents:
		return len(e.Dependents)
	case CollectionTrainings:
		return len(e.Trainings)
	case CollectionMedicalRecords:
		return len(e.MedicalRecords)
	case CollectionSalaryHistory:
		return len(e.SalaryHistory)
	case CollectionBankDetails:
		return len(e.BankDetails)
	case CollectionAssets:
		return len(e.Assets)
	default:
		return -1
	}
}

// Collection returns the named collection as a value suitable for JSON
// encoding, or nil for an unknown name.
func (e *Employee) Collection(collection string) any {
	switch collection {
	case CollectionQualifications:
		return e.Qualifications
	case CollectionDependents:
		return e.Dependents
	case CollectionTrainings:
		return e.Trainings
	case CollectionMedicalRecords:
		return e.MedicalRecords
	case CollectionSalaryHistory:
		return e.SalaryHistory
	case CollectionBankDetails:
		return e.BankDetails
	case CollectionAssets:
		return e.Assets
	default:
		return nil
	}
}

// RemoveEntry drops the entry with id from the named collection. It reports
// whether an entry was removed.
func (e *Employee) RemoveEntry(collection string, id LocalID) bool {
	switch collection {
	case CollectionQualifications:
		return removeByID(&e.Qualifications, id, func(v Qualification) LocalID { return v.ID })
	case CollectionDependents:
		return removeByID(&e.Dependents, id, func(v Dependent) LocalID { return v.ID })
	case CollectionTrainings:
		return removeByID(&e.Trainings, id, func(v Training) LocalID { return v.ID })
	case CollectionMedicalRecords:
		return removeByID(&e.MedicalRecords, id, func(v MedicalRecord) LocalID { return v.ID })
	case CollectionSalaryHistory:
		return removeByID(&e.SalaryHistory, id, func(v SalaryEntry) LocalID { return v.ID })
	case CollectionBankDetails:
		return removeByID(&e.BankDetails, id, func(v BankDetail) LocalID { return v.ID })
	case CollectionAssets:
		return removeByID(&e.Assets, id, func(v Asset) LocalID { return v.ID })
	default:
		return false
	}
}

func removeByID[T any](items *[]T, id LocalID, idOf func(T) LocalID) bool {
	kept := (*items)[:0]
	removed := false
	for _, item := range *items {
		if idOf(item) == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	*items = kept
	return removed
}

// Clone copies the employee and its collections so attachment fields can be
// rewritten without touching the original. Extra maps are shared.
func (e Employee) Clone() Employee {
	e.Qualifications = append([]Qualification(nil), e.Qualifications...)
	e.Dependents = append([]Dependent(nil), e.Dependents...)
	e.Trainings = append([]Training(nil), e.Trainings...)
	e.MedicalRecords = append([]MedicalRecord(nil), e.MedicalRecords...)
	e.SalaryHistory = append([]SalaryEntry(nil), e.SalaryHistory...)
	e.BankDetails = append([]BankDetail(nil), e.BankDetails...)
	e.Assets = append([]Asset(nil), e.Assets...)
	return e
}
