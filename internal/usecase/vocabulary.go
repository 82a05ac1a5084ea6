package usecase

import "github.com/skillmatch/backend/internal/domain"

// skillVocabulary lists every recognized skill in match priority order.
// Earlier surfaces win when two could start at the same position, so
// "sql" shadows "sql server" and "testing" is tried before "manual testing"
// only at positions where the longer phrase cannot start.
var skillVocabulary = []domain.Term{
	// Web
	term("html"),
	term("css"),
	term("javascript"),
	term("react", "react.js", "react"),
	term("node", "node.js", "node"),
	term("redux"),
	term("vue", "vue.js", "vue"),
	term("ui/ux design"),
	term("responsive web development"),
	term("restful apis"),
	term("restful api"),
	term("rest apis"),
	term("rest api"),
	term("git"),
	term("version control"),
	term("flask"),
	term("django"),

	// Languages and data
	term("python"),
	term("sql"),
	term("excel"),
	term("tableau"),
	term("c++"),
	term("java"),
	term("r"),

	// Cloud and infrastructure
	term("aws"),
	term("azure"),
	term("google cloud"),
	term("linux"),
	term("docker"),
	term("kubernetes"),

	// ML and analysis
	term("machine learning"),
	term("data analysis"),
	term("tensorflow"),
	term("pytorch"),

	// Soft skills and process
	term("communication"),
	term("leadership"),
	term("agile"),
	term("scrum"),
	term("project management"),
	term("technical writing"),

	// QA, embedded, design
	term("selenium"),
	term("bug tracking"),
	term("data visualization"),
	term("microcontrollers"),
	term("rtos"),
	term("hardware interfacing"),
	term("adobe xd"),
	term("sketch"),
	term("prototyping"),
	term("research"),
	term("product management"),
	term("teamwork"),
	term("statistics"),
	term("virtualization"),
	term("testing"),
	term("manual testing"),
	term("automation testing"),
	term("penetration testing"),

	// Security and networking
	term("risk management"),
	term("networking"),
	term("cisco"),
	term("routing"),
	term("switching"),
	term("firewalls"),
	term("threat analysis"),
	term("security"),
	term("documentation"),

	// Integration and databases. "rest api" repeats an earlier surface and never wins.
	term("rest api"),
	term("api integration"),
	term("sql server"),
	term("oracle"),
	term("mysql"),
	term("database tuning"),
	term("backup and recovery"),
}

// term builds a vocabulary entry. With no surfaces the canonical name is its only surface.
func term(canonical string, surfaces ...string) domain.Term {
	if len(surfaces) == 0 {
		surfaces = []string{canonical}
	}
	return domain.Term{Canonical: canonical, Surfaces: surfaces}
}

// DefaultVocabulary returns a copy of the built-in skill vocabulary
func DefaultVocabulary() []domain.Term {
	out := make([]domain.Term, len(skillVocabulary))
	for i, t := range skillVocabulary {
		out[i] = domain.Term{
			Canonical: t.Canonical,
			Surfaces:  append([]string(nil), t.Surfaces...),
		}
	}
	return out
}
