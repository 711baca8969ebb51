package decision

// Department names.
const (
	RoadsAndHighways      = "Roads & Highways"
	SanitationDepartment  = "Sanitation Department"
	WaterSupplyBoard      = "Water Supply Board"
	ElectricityBoard      = "Electricity Board"
	ForestryDepartment    = "Forestry Department"
	GeneralAdministration = "General Administration"
)

// DefaultDepartment receives issues that no table resolves.
const DefaultDepartment = GeneralAdministration

type issueRoute struct {
	issueType  string
	department string
}

// staticRoutes maps known issue types to departments.
var staticRoutes = []issueRoute{
	{"pothole", RoadsAndHighways},
	{"garbage", SanitationDepartment},
	{"garbage_overflow", SanitationDepartment},
	{"water_leak", WaterSupplyBoard},
	{"dead_animal", SanitationDepartment},
	{"streetlight", ElectricityBoard},
	{"streetlight_off", ElectricityBoard},
	{"drain_block", WaterSupplyBoard},
	{"fallen_tree", ForestryDepartment},
	{"illegal_parking", GeneralAdministration},
	{"fire_hazard", GeneralAdministration},
}

type keywordRoute struct {
	category   string
	keywords   []string
	department string
}

// keywordRoutes is scanned in order; within a category keywords are tried in
// order and the first substring hit decides.
var keywordRoutes = []keywordRoute{
	{"sanitation", []string{"sanitation", "waste", "garbage"}, SanitationDepartment},
	{"electricity", []string{"electricity", "streetlight", "light"}, ElectricityBoard},
	{"roads", []string{"pothole", "road", "highway"}, RoadsAndHighways},
	{"water", []string{"water", "pipeline", "leak"}, WaterSupplyBoard},
	{"drain", []string{"drain", "sewage", "drainage"}, WaterSupplyBoard},
	{"traffic", []string{"traffic", "parking", "ticket", "police"}, GeneralAdministration},
	{"animals", []string{"animal", "stray", "dog", "animal control"}, SanitationDepartment},
	{"fire", []string{"fire", "flammable", "extinguisher"}, GeneralAdministration},
}

// StaticDepartment returns the department statically mapped to issueType.
func StaticDepartment(issueType string) (string, bool) {
	for _, r := range staticRoutes {
		if r.issueType == issueType {
			return r.department, true
		}
	}
	return "", false
}

// Departments lists every routable department in first-appearance order
// across the static table, the keyword table and the default.
func Departments() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for _, r := range staticRoutes {
		add(r.department)
	}
	for _, r := range keywordRoutes {
		add(r.department)
	}
	add(DefaultDepartment)
	return out
}
