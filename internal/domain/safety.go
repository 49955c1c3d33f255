package domain

// SafetyKey identifies a daily safety statistic.
type SafetyKey string

const (
	SafetyNearMiss        SafetyKey = "nearmiss"
	SafetyFirstAid        SafetyKey = "firstaid"
	SafetyLTI             SafetyKey = "lti"
	SafetyFireIncidents   SafetyKey = "fireincidents"
	SafetyAuditsConducted SafetyKey = "auditsConducted"
	SafetyIncidentReport  SafetyKey = "incidentReport"
)

// SafetyField pairs a key with its report label.
type SafetyField struct {
	Key   SafetyKey
	Label string
}

// SafetyFields are the statistics shown in the safety table, in row order.
// SafetyIncidentReport is rendered separately below them.
var SafetyFields = []SafetyField{
	{SafetyNearMiss, "Near Miss"},
	{SafetyFirstAid, "First Aid"},
	{SafetyLTI, "LTI"},
	{SafetyFireIncidents, "Fire Incidents"},
	{SafetyAuditsConducted, "Audits Conducted"},
}

// SafetyRecord holds one day's safety counts. A nil record means no entry was
// made for the day.
type SafetyRecord map[SafetyKey]float64

// Value returns the count for key, or 0 when the record or key is absent.
func (r SafetyRecord) Value(key SafetyKey) float64 {
	if r == nil {
		return 0
	}
	return r[key]
}

// Lookup reports whether key was recorded, distinguishing a recorded zero
// from a missing entry.
func (r SafetyRecord) Lookup(key SafetyKey) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r[key]
	return v, ok
}

// TBTKey identifies a toolbox talk topic.
type TBTKey string

const (
	TBTSpecificPPE               TBTKey = "specificPPE"
	TBTHousekeeping              TBTKey = "housekeeping"
	TBTPlantEquipmentSafety      TBTKey = "plantEquipmentSafety"
	TBTWorkingUnderSuspendedLoad TBTKey = "workingUnderSuspendedLoad"
	TBTImportantOfEyeShower      TBTKey = "importantOfEyeShower"
)

// TBTField pairs a topic key with its report label.
type TBTField struct {
	Key   TBTKey
	Label string
}

// TBTFields are the toolbox talk topics in row order.
var TBTFields = []TBTField{
	{TBTSpecificPPE, "Specific PPE"},
	{TBTHousekeeping, "Housekeeping"},
	{TBTPlantEquipmentSafety, "Plant & Equipment Safety"},
	{TBTWorkingUnderSuspendedLoad, "Working Under Suspended Load"},
	{TBTImportantOfEyeShower, "Importance of Eye Shower"},
}

// TBTRecord holds one day's toolbox talk observations. A nil record means no
// entry was made for the day.
type TBTRecord map[TBTKey]string

// Value returns the observation for key, or "" when the record or key is absent.
func (r TBTRecord) Value(key TBTKey) string {
	if r == nil {
		return ""
	}
	return r[key]
}
