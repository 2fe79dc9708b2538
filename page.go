package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxFAQAnswerRunes = 400

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	faqHeading    = regexp.MustCompile(`(?i)## Frequently Asked Questions`)
	faqQuestion   = regexp.MustCompile(`\*\*([^*]+\?)\*\*\s*\n([^\n*]+)`)
	lowerCaser    = cases.Lower(language.AmericanEnglish)
)

// Slugify lowercases name, collapses whitespace runs into hyphens and drops apostrophes.
func Slugify(name string) string {
	slug := lowerCaser.String(strings.TrimSpace(name))
	slug = whitespaceRun.ReplaceAllString(slug, "-")
	return strings.NewReplacer("'", "", "’", "").Replace(slug)
}

// ComponentName derives the React component name for a page.
func ComponentName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String() + "Page"
}

// FAQItem is one question/answer pair lifted from the generated copy
type FAQItem struct {
	Question string
	Answer   string
}

// ExtractFAQ finds bolded questions in the FAQ section. Model output varies,
// so no match simply yields an empty list.
func ExtractFAQ(text string) []FAQItem {
	loc := faqHeading.FindStringIndex(text)
	if loc == nil {
		return []FAQItem{}
	}
	section := text[loc[1]:]
	if next := strings.Index(section, "##"); next >= 0 {
		section = section[:next]
	}

	items := []FAQItem{}
	for _, m := range faqQuestion.FindAllStringSubmatch(section, -1) {
		answer := strings.TrimSpace(m[2])
		if r := []rune(answer); len(r) > maxFAQAnswerRunes {
			answer = string(r[:maxFAQAnswerRunes])
		}
		items = append(items, FAQItem{
			Question: strings.TrimSpace(m[1]),
			Answer:   answer,
		})
	}
	return items
}

// PageMetadata is the Next.js metadata export of a page
type PageMetadata struct {
	Title            string
	Description      string
	Keywords         string
	Canonical        string
	OpenGraphTitle   string
	OpenGraphDesc    string
	OpenGraphType    string
	IncludeOpenGraph bool
}

// Link is a navigable cross-link
type Link struct {
	Label string
	Href  string
}

// ProductBlock is a static product teaser
type ProductBlock struct {
	Title       string
	Description string
	Href        string
	CTA         string
}

// Products are the same on every city page.
var Products = []ProductBlock{
	{
		Title:       "Fresh Corn Tortillas",
		Description: "Authentic masa flavor, gluten-free, perfect for tacos and enchiladas.",
		Href:        "/products/corn-tortillas",
		CTA:         "Shop Corn Tortillas",
	},
	{
		Title:       "Premium Flour Tortillas",
		Description: "Soft and pliable, ideal for burritos, wraps, and quesadillas.",
		Href:        "/products/flour-tortillas",
		CTA:         "Shop Flour Tortillas",
	},
	{
		Title:       "Butter Tortillas",
		Description: "Rich, buttery flavor that elevates any dish. A Texas favorite.",
		Href:        "/products/butter-tortillas",
		CTA:         "Shop Butter Tortillas",
	},
}

// CityPage is everything page.tsx is rendered from
type CityPage struct {
	City           string
	State          string
	StateSlug      string
	CitySlug       string
	ComponentName  string
	Metadata       PageMetadata
	FAQ            []FAQItem
	FAQSchema      map[string]any
	BusinessSchema map[string]any
	Breadcrumbs    []Link
	Products       []ProductBlock
	Body           string
	Disclaimer     string
	NearbyLinks    []Link
}

// BuildCityPage derives the page model from a unit and its generated copy.
func BuildCityPage(u Unit, text, siteURL string) *CityPage {
	stateSlug := Slugify(u.State)
	citySlug := Slugify(u.City)
	pagePath := fmt.Sprintf("/locations/%s/%s", stateSlug, citySlug)
	canonical := strings.TrimRight(siteURL, "/") + pagePath

	faq := ExtractFAQ(text)
	questions := make([]map[string]any, 0, len(faq))
	for _, f := range faq {
		questions = append(questions, map[string]any{
			"@type": "Question",
			"name":  f.Question,
			"acceptedAnswer": map[string]any{
				"@type": "Answer",
				"text":  f.Answer,
			},
		})
	}

	nearby := make([]Link, 0, len(u.NearbyCities))
	for _, c := range u.NearbyCities {
		nearby = append(nearby, Link{Label: c, Href: fmt.Sprintf("/locations/%s/%s", stateSlug, Slugify(c))})
	}

	return &CityPage{
		City:          u.City,
		State:         u.State,
		StateSlug:     stateSlug,
		CitySlug:      citySlug,
		ComponentName: ComponentName(u.City),
		Metadata: PageMetadata{
			Title:            fmt.Sprintf("Authentic Texas Tortillas Delivered to %s | Lonestar Tortillas", u.City),
			Description:      fmt.Sprintf("Get authentic H-E-B Texas tortillas shipped directly to %s, %s. Fresh flour & corn tortillas for tacos, burritos & more. FREE Freshness First Shipping, premium quality.", u.City, u.State),
			Keywords:         fmt.Sprintf("tortillas %s, Texas tortillas %s, H-E-B tortillas delivery, authentic Mexican tortillas %s, fresh tortillas shipped", u.City, u.State, u.City),
			Canonical:        canonical,
			OpenGraphTitle:   fmt.Sprintf("Texas Tortillas Delivered to %s | Lonestar Tortillas", u.City),
			OpenGraphDesc:    fmt.Sprintf("Authentic H-E-B tortillas shipped fresh to %s. Experience the taste of Texas.", u.City),
			OpenGraphType:    "website",
			IncludeOpenGraph: true,
		},
		FAQ: faq,
		FAQSchema: map[string]any{
			"@context":   "https://schema.org",
			"@type":      "FAQPage",
			"mainEntity": questions,
		},
		BusinessSchema: map[string]any{
			"@context":    "https://schema.org",
			"@type":       "LocalBusiness",
			"name":        fmt.Sprintf("Lonestar Tortillas - %s Delivery", u.City),
			"description": fmt.Sprintf("Authentic Texas tortillas delivered to %s, %s", u.City, u.State),
			"areaServed": map[string]any{
				"@type": "City",
				"name":  u.City,
				"containedInPlace": map[string]any{
					"@type": "State",
					"name":  u.State,
				},
			},
			"url":        canonical,
			"telephone":  "+1-512-TORTILLA",
			"priceRange": "$$",
		},
		Breadcrumbs: []Link{
			{Label: "Home", Href: "/"},
			{Label: "Locations", Href: "/locations"},
			{Label: u.State, Href: "/locations/" + stateSlug},
			{Label: u.City},
		},
		Products:    Products,
		Body:        text,
		Disclaimer:  Disclaimer,
		NearbyLinks: nearby,
	}
}

// HubCity is one entry on a state hub page
type HubCity struct {
	Name       string
	Slug       string
	Href       string
	Population string
	Region     string
}

// HubPage is everything a state page.tsx is rendered from
type HubPage struct {
	State         string
	StateSlug     string
	StateAbbr     string
	ComponentName string
	Metadata      PageMetadata
	Breadcrumbs   []Link
	Cities        []HubCity
	Regions       []string
	FirstCity     string
	LastCity      string
	Disclaimer    string
}

// BuildHubPage derives the hub model for one state from all its selected units.
func BuildHubPage(state string, units []Unit, siteURL string) *HubPage {
	stateSlug := Slugify(state)

	abbr := ""
	if len(units) > 0 {
		abbr = units[0].StateAbbr
	}
	if abbr == "" {
		abbr = strings.ToUpper(string([]rune(state)[:min(2, len([]rune(state)))]))
	}

	cities := make([]HubCity, 0, len(units))
	var names []string
	seenRegion := make(map[string]bool)
	var regions []string
	for _, u := range units {
		slug := Slugify(u.City)
		pop := u.Population
		if pop == "" {
			pop = "Major city"
		}
		cities = append(cities, HubCity{
			Name:       u.City,
			Slug:       slug,
			Href:       fmt.Sprintf("/locations/%s/%s", stateSlug, slug),
			Population: pop,
			Region:     u.Region,
		})
		names = append(names, u.City)
		if u.Region != "" && !seenRegion[u.Region] {
			seenRegion[u.Region] = true
			regions = append(regions, u.Region)
		}
	}

	page := &HubPage{
		State:         state,
		StateSlug:     stateSlug,
		StateAbbr:     abbr,
		ComponentName: ComponentName(state),
		Metadata: PageMetadata{
			Title:       fmt.Sprintf("Texas Tortillas Delivered to %s | Lonestar Tortillas", state),
			Description: fmt.Sprintf("Get authentic H-E-B Texas tortillas shipped to %s. We deliver to %s, and all %s cities. Fast 2-3 day shipping.", state, strings.Join(names[:min(4, len(names))], ", "), abbr),
			Canonical:   strings.TrimRight(siteURL, "/") + "/locations/" + stateSlug,
		},
		Breadcrumbs: []Link{
			{Label: "Home", Href: "/"},
			{Label: "Locations", Href: "/locations"},
			{Label: state},
		},
		Cities:     cities,
		Regions:    regions,
		Disclaimer: Disclaimer,
	}

	keywords := fmt.Sprintf("tortillas %s, Texas tortillas %s, H-E-B tortillas delivery %s", state, abbr, state)
	if len(names) > 0 {
		keywords += ", authentic tortillas " + names[0]
		page.FirstCity = names[0]
		page.LastCity = names[len(names)-1]
	}
	page.Metadata.Keywords = keywords
	return page
}

var templateFuncs = template.FuncMap{
	// js renders a double-quoted string literal
	"js": func(s string) (string, error) {
		b, err := marshalJSON(s, false)
		return string(b), err
	},
	// jsonld renders an indented object literal
	"jsonld": func(v any) (string, error) {
		b, err := marshalJSON(v, true)
		return string(b), err
	},
}

func marshalJSON(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ParsePageTemplate parses a page template with the rendering helpers.
func ParsePageTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(templateFuncs).Parse(text)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s template", name)
	}
	return tmpl, nil
}

// RenderCityPage renders page.tsx for a city.
func RenderCityPage(tmpl *template.Template, page *CityPage) (string, error) {
	return execute(tmpl, page)
}

// RenderHubPage renders page.tsx for a state hub.
func RenderHubPage(tmpl *template.Template, page *HubPage) (string, error) {
	return execute(tmpl, page)
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "executing %s template", tmpl.Name())
	}
	return buf.String(), nil
}
