package matcher

import "strings"

// skillVariants maps canonical (lowercase) skill names to common aliases.
// Lookup is bidirectional: a variant resolves back to its canonical group.
var skillVariants = map[string][]string{
	// Programming languages
	"javascript": {"js", "ecmascript", "es6", "es2015", "es2016", "es2017", "es2018", "es2019", "es2020"},
	"typescript": {"ts"},
	"python":     {"py", "python3", "python 3"},
	"c#":         {"csharp", "c sharp", "dotnet", ".net", "c-sharp"},
	"c++":        {"cpp", "cplusplus", "c plus plus"},
	"golang":     {"go"},
	"ruby":       {"rb"},
	"rust":       {"rs"},

	// Frontend frameworks
	"react":   {"reactjs", "react.js", "react js"},
	"angular": {"angularjs", "angular.js", "angular 2", "angular2"},
	"vue":     {"vuejs", "vue.js", "vue js", "vue 3", "vue3"},
	"svelte":  {"sveltejs", "svelte.js"},
	"next.js": {"nextjs", "next js", "next"},
	"nuxt":    {"nuxtjs", "nuxt.js"},

	// Backend frameworks
	"node.js":   {"nodejs", "node js", "node"},
	"express":   {"expressjs", "express.js"},
	"django":    {"django rest", "drf"},
	"flask":     {"flask api"},
	"spring":    {"spring boot", "springboot"},
	"fastapi":   {"fast api"},
	".net core": {"dotnet core", "asp.net core", "aspnet core"},

	// Databases
	"postgresql":    {"postgres", "psql", "pgsql"},
	"mongodb":       {"mongo"},
	"mysql":         {"mariadb"},
	"sql server":    {"mssql", "microsoft sql", "ms sql"},
	"redis":         {"redis cache"},
	"elasticsearch": {"elastic", "es"},

	// Cloud
	"aws":        {"amazon web services", "amazon aws", "amazon cloud"},
	"azure":      {"microsoft azure", "ms azure"},
	"gcp":        {"google cloud", "google cloud platform"},
	"kubernetes": {"k8s"},
	"docker":     {"containerization", "containers"},

	// Tools & practices
	"git":                     {"github", "gitlab", "bitbucket", "version control"},
	"ci/cd":                   {"continuous integration", "continuous deployment", "jenkins", "github actions"},
	"agile":                   {"scrum", "kanban", "agile methodology"},
	"devops":                  {"dev ops", "development operations"},
	"test-driven development": {"tdd", "test driven"},
	"restful api":             {"rest api", "rest", "restful"},
	"graphql":                 {"graph ql"},

	// Soft skills
	"communication":      {"communication skills", "verbal communication", "written communication"},
	"leadership":         {"team leadership", "leading teams", "team lead"},
	"project management": {"project mgmt", "pm", "managing projects"},
	"problem solving":    {"problem-solving", "analytical skills", "critical thinking"},
	"teamwork":           {"team work", "collaboration", "team player"},
}

// Normalize canonicalizes a free-text skill string: lowercase, trimmed,
// whitespace collapsed, punctuation stripped except - + # .
func Normalize(skill string) string {
	s := strings.ToLower(strings.TrimSpace(skill))

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_',
			r == '-', r == '+', r == '#', r == '.':
			b.WriteRune(r)
			lastSpace = false
		default:
			// other punctuation dropped
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Expand returns the canonical form plus all known aliases of a skill.
// Unknown skills return an empty slice.
func Expand(skill string) []string {
	normalized := Normalize(skill)

	if aliases, ok := skillVariants[normalized]; ok {
		return append([]string{normalized}, aliases...)
	}

	for canonical, aliases := range skillVariants {
		for _, alias := range aliases {
			if alias == normalized {
				return append([]string{canonical}, aliases...)
			}
		}
	}

	return nil
}

// SkillsMatch reports whether two skill strings refer to the same skill,
// considering the synonym table and compound-skill containment
// ("Microsoft Excel" matches "Excel").
func SkillsMatch(a, b string) bool {
	na := Normalize(a)
	nb := Normalize(b)

	if na == nb {
		return true
	}

	va := Expand(na)
	vb := Expand(nb)
	if len(va) > 0 && len(vb) > 0 {
		set := make(map[string]bool, len(vb))
		for _, v := range vb {
			set[v] = true
		}
		for _, v := range va {
			if set[v] {
				return true
			}
		}
		return false
	}

	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
