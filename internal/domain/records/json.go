package records

type (
	employeeFields      Employee
	qualificationFields Qualification
	dependentFields     Dependent
	trainingFields      Training
	medicalRecordFields MedicalRecord
	salaryEntryFields   SalaryEntry
	bankDetailFields    BankDetail
	assetFields         Asset
)

var (
	employeeFieldSet      = fieldsOf(employeeFields{})
	qualificationFieldSet = fieldsOf(qualificationFields{})
	dependentFieldSet     = fieldsOf(dependentFields{})
	trainingFieldSet      = fieldsOf(trainingFields{})
	medicalRecordFieldSet = fieldsOf(medicalRecordFields{})
	salaryEntryFieldSet   = fieldsOf(salaryEntryFields{})
	bankDetailFieldSet    = fieldsOf(bankDetailFields{})
	assetFieldSet         = fieldsOf(assetFields{})
)

func (e Employee) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(employeeFields(e), e.Extra, e.orig, employeeFieldSet)
}

func (e *Employee) UnmarshalJSON(data []byte) error {
	var v employeeFields
	extra, orig, err := decodeWithExtra(data, &v, employeeFieldSet)
	if err != nil {
		return err
	}
	v.Extra = extra
	v.orig = orig
	*e = Employee(v)
	return nil
}

func (q Qualification) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(qualificationFields(q), q.Extra, q.orig, qualificationFieldSet)
}

func (q *Qualification) UnmarshalJSON(data []byte) error {
	var v qualificationFields
	extra, orig, err := decodeWithExtra(data, &v, qualificationFieldSet)
	if err != nil {
		return err
	}
	v.Extra = extra
	v.orig = orig
	*q = Qualification(v)
	return nil
}

func (d Dependent) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(dependentFields(d), d.Extra, d.orig, dependentFieldSet)
}

func (d *Dependent) UnmarshalJSON(data []byte) error {
	var v dependentFields
	extra, orig, err := decodeWithExtra(data, &v, dependentFieldSet)
	if err != nil {
		return err
	}
	v.Extra = extra
	v.orig = orig
	*d = Dependent(v)
	return nil
}

func (t Training) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(trainingFields(t), t.Extra, t.orig, trainingFieldSet)
}

func (t *Training) UnmarshalJSON(data []byte) error {
	var v trainingFields
	extra, orig, err := decodeWithExtra(data, &v, trainingFieldSet)
	if err != nil {
		return err
	}
	v.Extra = extra
	v.orig = orig
	*t = Training(v)
	return nil
}

func (m MedicalRecord) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(medicalRecordFields(m), m.Extra, m.orig, medicalRecordFieldSet)
}

func (m *MedicalRecord) UnmarshalJSON(data []byte) error {
	var v medicalRecordFields
	extra, orig, err := decodeWithExtra(data, &v, medicalRecordFieldSet)
	if err != nil {
		return err
	}
	v.Extra = extra
	v.orig = orig
	*m = MedicalRecord(v)
	return nil
}

func (s SalaryEntry) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(salaryEntryFields(s), s.Extra, s.orig, salaryEntryFieldSet)
}

func (s *SalaryEntry) UnmarshalJSON(data []byte) error {
	var v salaryEntryFields
	extra, orig, err := decodeWithExtra(data, &v, salaryEntryFieldSet)
	if err != nil {
		return err
	}
	v.Extra = extra
	v.orig = orig
	*s = SalaryEntry(v)
	return nil
}

func (b BankDetail) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(bankDetailFields(b), b.Extra, b.orig, bankDetailFieldSet)
}

func (b *BankDetail) UnmarshalJSON(data []byte) error {
	var v bankDetailFields
	extra, orig, err := decodeWithExtra(data, &v, bankDetailFieldSet)
	if err != nil {
		return err
	}
	v.Extra = extra
	v.orig = orig
	*b = BankDetail(v)
	return nil
}

func (a Asset) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(assetFields(a), a.Extra, a.orig, assetFieldSet)
}

func (a *Asset) UnmarshalJSON(data []byte) error {
	var v assetFields
	extra, orig, err := decodeWithExtra(data, &v, assetFieldSet)
	if err != nil {
		return err
	}
	v.Extra = extra
	v.orig = orig
	*a = Asset(v)
	return nil
}
