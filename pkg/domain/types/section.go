package types

// Section identifies a business-record category. Each section owns one
// ordered field descriptor list and is bound to one downstream tracker.
type Section string

const (
	SectionWeeklyReports    Section = "weekly-reports"
	SectionTravelReports    Section = "travel-reports"
	SectionHardware         Section = "hardware-management"
	SectionEquipment        Section = "equipment-management"
	SectionExternalTraining Section = "external-training"
)

// AllSections returns all known sections in display order
func AllSections() []Section {
	return []Section{
		SectionWeeklyReports,
		SectionTravelReports,
		SectionHardware,
		SectionEquipment,
		SectionExternalTraining,
	}
}

// IsValid checks if the section is one of the known categories
func (s Section) IsValid() bool {
	switch s {
	case SectionWeeklyReports,
		SectionTravelReports,
		SectionHardware,
		SectionEquipment,
		SectionExternalTraining:
		return true
	default:
		return false
	}
}

// String returns the string representation of the section
func (s Section) String() string {
	return string(s)
}
