package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultFallbackCategory receives every file no rule matches
const DefaultFallbackCategory = "misc"

// DefaultSubcategory is used when no subcategory rule matches
const DefaultSubcategory = "general"

// CategoryKind selects the naming convention for organized files
type CategoryKind string

const (
	CategoryKindTopic   CategoryKind = "topic"
	CategoryKindProject CategoryKind = "project"
)

// Valid reports whether k is a known kind
func (k CategoryKind) Valid() bool {
	return k == CategoryKindTopic || k == CategoryKindProject
}

// Subcategory narrows a category by keyword
type Subcategory struct {
	Name     string
	Keywords []string
}

// CategoryRule is the rule set scored for one category
type CategoryRule struct {
	Name          string
	Kind          CategoryKind
	Keywords      []string
	Patterns      []string // Case-insensitive regular expressions
	Folders       []string // Exact directory segment names
	Subcategories []Subcategory

	compiled []*regexp.Regexp
}

// Slug returns the path-safe form of the category name
func (r CategoryRule) Slug() string {
	return Slugify(r.Name)
}

// Taxonomy is an ordered list of category rules plus a fallback category.
// Declaration order is significant: it breaks score ties.
type Taxonomy struct {
	categories []CategoryRule
	fallback   string
	bySlug     map[string]int
}

// NewTaxonomy validates rules, compiles patterns and appends the fallback
// category when it is not declared. The fallback is always listed last.
func NewTaxonomy(rules []CategoryRule, fallback string) (*Taxonomy, error) {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		fallback = DefaultFallbackCategory
	}
	if Slugify(fallback) == "" {
		return nil, fmt.Errorf("fallback category %q has no usable characters", fallback)
	}

	t := &Taxonomy{fallback: fallback, bySlug: make(map[string]int)}
	var fallbackRule *CategoryRule

	for i := range rules {
		rule := rules[i]
		rule.Name = strings.TrimSpace(rule.Name)
		if rule.Name == "" {
			return nil, fmt.Errorf("category %d: name is required", i+1)
		}
		if rule.Kind == "" {
			rule.Kind = CategoryKindTopic
		}
		if !rule.Kind.Valid() {
			return nil, fmt.Errorf("category %q: unknown kind %q", rule.Name, rule.Kind)
		}
		slug := rule.Slug()
		if slug == "" {
			return nil, fmt.Errorf("category %q: name has no usable characters", rule.Name)
		}
		if _, dup := t.bySlug[slug]; dup || (fallbackRule != nil && fallbackRule.Slug() == slug) {
			return nil, fmt.Errorf("category %q: duplicate name", rule.Name)
		}

		rule.compiled = make([]*regexp.Regexp, 0, len(rule.Patterns))
		for _, p := range rule.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("category %q: invalid pattern %q: %w", rule.Name, p, err)
			}
			rule.compiled = append(rule.compiled, re)
		}
		for j, sub := range rule.Subcategories {
			if Slugify(sub.Name) == "" {
				return nil, fmt.Errorf("category %q: subcategory %d: name is required", rule.Name, j+1)
			}
		}

		if slug == Slugify(fallback) {
			rule.Kind = CategoryKindTopic
			r := rule
			fallbackRule = &r
			continue
		}
		t.bySlug[slug] = len(t.categories)
		t.categories = append(t.categories, rule)
	}

	if fallbackRule == nil {
		fallbackRule = &CategoryRule{Name: fallback, Kind: CategoryKindTopic}
	}
	t.bySlug[fallbackRule.Slug()] = len(t.categories)
	t.categories = append(t.categories, *fallbackRule)
	t.fallback = fallbackRule.Name

	return t, nil
}

// MustTaxonomy is NewTaxonomy for static rule sets
func MustTaxonomy(rules []CategoryRule, fallback string) *Taxonomy {
	t, err := NewTaxonomy(rules, fallback)
	if err != nil {
		panic(err)
	}
	return t
}

// Categories returns the rules in declaration order, fallback last
func (t *Taxonomy) Categories() []CategoryRule {
	out := make([]CategoryRule, len(t.categories))
	copy(out, t.categories)
	return out
}

// Fallback returns the fallback category name
func (t *Taxonomy) Fallback() string {
	return t.fallback
}

// IsFallback reports whether name denotes the fallback category
func (t *Taxonomy) IsFallback(name string) bool {
	return Slugify(name) == Slugify(t.fallback)
}

// Category looks a rule up by name or slug
func (t *Taxonomy) Category(name string) (CategoryRule, bool) {
	i, ok := t.bySlug[Slugify(name)]
	if !ok {
		return CategoryRule{}, false
	}
	return t.categories[i], true
}

// KindOf returns the kind of a category; unknown categories are topics
func (t *Taxonomy) KindOf(name string) CategoryKind {
	if rule, ok := t.Category(name); ok {
		return rule.Kind
	}
	return CategoryKindTopic
}

// CanonicalName returns the declared name for a category, or name itself
func (t *Taxonomy) CanonicalName(name string) string {
	if rule, ok := t.Category(name); ok {
		return rule.Name
	}
	return name
}

// DefaultTaxonomy returns the built-in taxonomy used when no file is configured
func DefaultTaxonomy() *Taxonomy {
	return MustTaxonomy(DefaultCategoryRules(), DefaultFallbackCategory)
}

// DefaultCategoryRules returns the built-in categories, without a fallback
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{
			Name:     "birds",
			Kind:     CategoryKindTopic,
			Keywords: []string{"eagle", "owl", "hawk", "heron", "duck", "loon", "falcon"},
			Folders:  []string{"birds"},
			Subcategories: []Subcategory{
				{Name: "raptors", Keywords: []string{"eagle", "hawk", "owl", "falcon"}},
				{Name: "waterfowl", Keywords: []string{"duck", "loon", "heron", "goose"}},
			},
		},
		{
			Name:     "fish",
			Kind:     CategoryKindTopic,
			Keywords: []string{"bass", "trout", "salmon", "pike"},
			Folders:  []string{"fish"},
		},
		{
			Name:     "wildlife",
			Kind:     CategoryKindTopic,
			Keywords: []string{"deer", "bear", "fox", "wolf", "elk"},
			Folders:  []string{"wildlife", "animals"},
		},
		{
			Name:     "commissions",
			Kind:     CategoryKindProject,
			Keywords: []string{"commission"},
			Patterns: []string{`\bclient[-_ ]?\d+`},
			Folders:  []string{"commissions"},
		},
	}
}
