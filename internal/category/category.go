// Package category classifies live listings into the board's job categories
// using a fixed keyword table.
package category

import (
	"strings"

	"kaamkhoj/jobboard/internal/model"
)

// Default is used when the caller gives no category or an unknown one.
const Default = "programming-development"

// keys preserves the display order of categories.
var keys = []string{
	"programming-development",
	"design",
	"sales",
	"customer-support",
	"marketing",
	"project-management",
	"copywriting",
	"technology-it",
}

// keywords maps a category key to lowercase phrases. The first phrase is the
// primary search term sent to providers. Read-only after init.
var keywords = map[string][]string{
	"programming-development": {
		"software engineer", "developer", "programmer", "full stack", "frontend", "backend",
		"react", "node.js", "python", "java", "javascript", "devops", "data engineer",
		"machine learning", "ai engineer", "mobile developer", "ios", "android", "web developer",
		"software developer", "application developer", "systems developer",
	},
	"design": {
		"designer", "ui designer", "ux designer", "graphic designer", "web designer",
		"product designer", "visual designer", "creative designer", "art director",
		"illustrator", "brand designer", "interaction designer", "user experience designer",
	},
	"sales": {
		"sales representative", "account manager", "business development",
		"sales manager", "inside sales", "field sales", "sales executive",
		"customer success", "sales consultant", "territory manager", "sales director",
	},
	"customer-support": {
		"customer support", "customer service", "support specialist", "help desk",
		"technical support", "customer care", "support representative", "customer success",
		"support engineer", "customer experience", "support analyst",
	},
	"marketing": {
		"marketing", "digital marketing", "social media", "content marketing",
		"seo specialist", "ppc analyst", "brand manager", "marketing manager",
		"growth hacker", "email marketing", "affiliate marketing", "marketing specialist",
	},
	"project-management": {
		"project manager", "program manager", "product manager", "scrum master",
		"agile coach", "project coordinator", "technical project manager", "delivery manager",
		"project lead", "project director", "portfolio manager",
	},
	"copywriting": {
		"copywriter", "content writer", "technical writer", "content creator",
		"content strategist", "editor", "content manager", "creative writer",
		"blog writer", "content specialist", "marketing copywriter",
	},
	"technology-it": {
		"it specialist", "system administrator", "network engineer", "database administrator",
		"cloud engineer", "infrastructure engineer", "security engineer", "data analyst",
		"business analyst", "technical analyst", "it manager", "technology consultant",
	},
}

// Keys returns every known category key in display order.
func Keys() []string {
	return append([]string(nil), keys...)
}

// Known reports whether key is in the table.
func Known(key string) bool {
	_, ok := keywords[key]
	return ok
}

// Keywords returns a copy of the phrases for key, or nil for unknown keys.
func Keywords(key string) []string {
	kw, ok := keywords[key]
	if !ok {
		return nil
	}
	return append([]string(nil), kw...)
}

// Resolve maps a raw selector to a known key and its phrases, falling back
// to Default.
func Resolve(key string) (string, []string) {
	key = strings.TrimSpace(key)
	if !Known(key) {
		key = Default
	}
	return key, Keywords(key)
}

// Matches reports whether any keyword of the category appears (case-insensitive
// substring) in the listing's title, description or tags. Unknown categories
// match nothing.
func Matches(job model.JobListing, key string) bool {
	kw := keywords[key]
	if len(kw) == 0 {
		return false
	}
	blob := strings.ToLower(job.Title + " " + job.Description + " " + strings.Join(job.Tags, " "))
	for _, phrase := range kw {
		if strings.Contains(blob, phrase) {
			return true
		}
	}
	return false
}

// Filter keeps the listings matching key, preserving their order.
func Filter(jobs []model.JobListing, key string) []model.JobListing {
	out := make([]model.JobListing, 0, len(jobs))
	for _, j := range jobs {
		if Matches(j, key) {
			out = append(out, j)
		}
	}
	return out
}
