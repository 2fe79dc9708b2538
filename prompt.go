package main

import (
	"fmt"
	"strings"
)

// Disclaimer must appear on every generated page.
const Disclaimer = "Independent reseller. Not affiliated with or endorsed by H-E-B."

// TargetKeywords are the search phrases a city page is written for.
func TargetKeywords(u Unit) []string {
	return []string{
		"tortillas " + u.City,
		"Texas tortillas " + u.StateAbbr,
		"H-E-B tortillas " + u.State,
		"authentic tortillas delivery " + u.City,
		"Mexican food " + u.City,
	}
}

// BuildPrompt renders the writer instruction for one city.
func BuildPrompt(u Unit) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are an expert SEO content writer for Lonestar Tortillas, a Texas-based company that ships authentic H-E-B tortillas nationwide (except within Texas).

Write a comprehensive 2000+ word landing page for customers in %[1]s, %[2]s. The page should:

1. TARGET KEYWORDS:
`, u.City, u.State)
	for _, k := range TargetKeywords(u) {
		fmt.Fprintf(&b, "- %q\n", k)
	}

	fmt.Fprintf(&b, `
2. PAGE STRUCTURE (use these exact H2/H3 headers):

## Authentic Texas Tortillas Delivered to %[1]s
[150 word intro about getting real Texas tortillas delivered to %[1]s]

## Why %[1]s Residents Choose Texas Tortillas
[400 words about authenticity, quality, H-E-B heritage, what makes Texas tortillas special]

## Our Products
### Fresh Corn Tortillas
[100 words]
### Premium Flour Tortillas
[100 words]
### Butter Tortillas
[100 words]

## Shipping to %[1]s, %[2]s
[200 words about shipping times, costs, delivery areas in %[3]s]

## %[1]s's Mexican Food Scene
[400 words about local Mexican restaurants, home cooking culture, how our tortillas elevate the experience. Reference specific neighborhoods or food traditions if known]

## Perfect Pairings: Recipes for %[1]s Home Cooks
[300 words suggesting 4-5 recipes that work well - breakfast tacos, brisket tacos, quesadillas, etc.]

## Frequently Asked Questions
[5-6 FAQs with answers, 300 words total. Put each question in bold on its own line, followed by the answer on the next line]
- How long does shipping take to %[1]s?
- How should I store my tortillas?
- Are your tortillas gluten-free?
- What's the minimum order?
- Do you ship to other cities in %[2]s?

## Order Authentic Texas Tortillas Today
[100 word closing CTA encouraging them to shop]

3. IMPORTANT REQUIREMENTS:
- Write in a warm, friendly Texas voice
- Include "Shop Now" call-to-action references
- Mention related cities: %[4]s
- Reference that we ship throughout %[2]s and nearby states: %[5]s
`, u.City, u.State, u.Region, strings.Join(u.NearbyCities, ", "), strings.Join(u.NearbyStates, ", "))

	if len(u.LocalFood) > 0 {
		fmt.Fprintf(&b, "- Work in these local food favorites: %s\n", strings.Join(u.LocalFood, ", "))
	}

	fmt.Fprintf(&b, `- Include the mandatory disclaimer: %q
- Do NOT use emojis
- Write for SEO but keep it natural and readable
- Include internal link suggestions like [Link to: /shop], [Link to: /guides/how-to-store-tortillas], etc.

4. OUTPUT FORMAT:
Return ONLY the content sections, not the code. I will handle the TypeScript/React wrapper.
Start with the h2 headers and content.
`, Disclaimer)

	return b.String()
}
