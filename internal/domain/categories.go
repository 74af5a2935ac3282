package domain

// Фиксированный набор категорий навыков. Первая — дефолт для backward-fill.
var SkillCategories = []string{
	"Explain one idea clearly in 60 seconds",
	"Coding & Programming",
	"Design & Creativity",
	"Business & Marketing",
	"Science & Education",
	"Arts & Music",
	"Sports & Fitness",
	"Cooking & Food",
	"DIY & Crafts",
	"Other",
}

func DefaultSkillCategory() string { return SkillCategories[0] }

// CategoryAll — sentinel «без фильтра» в запросах поиска.
const CategoryAll = "all"

// NormalizeCategory — единая точка backward-fill: документы, созданные до
// появления поля skill_category, читаются с дефолтной категорией.
// Применяется на границе чтения из хранилища, не в хендлерах.
func NormalizeCategory(c *string) string {
	if c == nil || *c == "" {
		return DefaultSkillCategory()
	}
	return *c
}
