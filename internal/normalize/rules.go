package normalize

import "regexp"

type tagRule struct {
	pattern *regexp.Regexp
	tag     string
}

// tagRules are evaluated independently; a room receives every tag whose
// pattern matches its type or department.
var tagRules = []tagRule{
	{regexp.MustCompile(`(?i)office|workroom|administration`), "Office"},
	{regexp.MustCompile(`(?i)exam|patient|procedure|consult|isolation|operating`), "Clinical"},
	{regexp.MustCompile(`(?i)laborator|\blab\b`), "Lab"},
	{regexp.MustCompile(`(?i)restroom|toilet|shower|locker`), "Restroom"},
	{regexp.MustCompile(`(?i)storage|supply|utility`), "Storage"},
	{regexp.MustCompile(`(?i)mechanical|electrical|telecom|it closet|janitor|elevator|stair`), "Infrastructure"},
	{regexp.MustCompile(`(?i)conference|classroom|consult`), "Meeting"},
	{regexp.MustCompile(`(?i)waiting|reception|lobby|lounge|break room|kitchen`), "Public"},
	{regexp.MustCompile(`(?i)radiology|imaging|x-ray|mri|ct scan|ultrasound`), "Imaging"},
	{regexp.MustCompile(`(?i)pharmacy|medication`), "Pharmacy"},
	{regexp.MustCompile(`(?i)nurs`), "Nursing"},
	{regexp.MustCompile(`(?i)research`), "Research"},
}

// GenerateTags returns the category tags for a room, in rule order and
// without duplicates.
func GenerateTags(roomType, department string) []string {
	tags := []string{}
	seen := make(map[string]bool)
	for _, rule := range tagRules {
		if seen[rule.tag] {
			continue
		}
		if rule.pattern.MatchString(roomType) || rule.pattern.MatchString(department) {
			seen[rule.tag] = true
			tags = append(tags, rule.tag)
		}
	}
	return tags
}
