package briefing

import (
	"fmt"
	"strings"

	"threatdeck/internal/feeds"
	"threatdeck/internal/models"
)

const promptDescriptionLimit = 300

// buildPrompt lays out the threat and the asset it landed on, then asks for
// a fixed three-section response the parser can cut apart.
func buildPrompt(threat models.Threat, asset models.Asset) string {
	var b strings.Builder

	b.WriteString("You are a cybersecurity analyst generating a threat intelligence briefing.\n\n")

	b.WriteString("THREAT:\n")
	fmt.Fprintf(&b, "- ID: %s\n", threat.SourceID)
	fmt.Fprintf(&b, "- Title: %s\n", threat.Title)
	fmt.Fprintf(&b, "- Source: %s\n", threat.Source)
	fmt.Fprintf(&b, "- Severity: %s\n", threat.Severity)
	if threat.CVSSScore != nil {
		fmt.Fprintf(&b, "- CVSS: %.1f\n", *threat.CVSSScore)
	} else {
		b.WriteString("- CVSS: unknown\n")
	}
	fmt.Fprintf(&b, "- Exploits Available: %t\n", threat.ExploitsAvailable)
	fmt.Fprintf(&b, "- Actively Exploited: %t\n", threat.ActivelyExploited)
	fmt.Fprintf(&b, "- Description: %s\n\n", feeds.Truncate(threat.Description, promptDescriptionLimit))

	b.WriteString("AFFECTED ASSET:\n")
	fmt.Fprintf(&b, "- Name: %s\n", asset.Name)
	fmt.Fprintf(&b, "- Type: %s\n", asset.Type)
	fmt.Fprintf(&b, "- Vendor: %s\n", deref(asset.Vendor))
	fmt.Fprintf(&b, "- Product: %s\n", deref(asset.Product))
	fmt.Fprintf(&b, "- Version: %s\n\n", deref(asset.Version))

	b.WriteString("Respond with EXACTLY these three labeled sections:\n")
	b.WriteString("SUMMARY: (2-3 sentences about the threat and how it affects this specific asset)\n")
	b.WriteString("REMEDIATION: (3-5 specific actionable steps to mitigate this threat)\n")
	b.WriteString("IMPACT: (2-3 sentences about potential business consequences if unaddressed)\n")

	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return "unknown"
	}
	return *s
}

const rawSummaryLimit = 200

// longest markers first so a bold label is consumed whole
var sectionMarkers = map[string][]string{
	"SUMMARY":     {"**SUMMARY:**", "**SUMMARY**:", "SUMMARY:"},
	"REMEDIATION": {"**REMEDIATION:**", "**REMEDIATION**:", "REMEDIATION:"},
	"IMPACT":      {"**IMPACT:**", "**IMPACT**:", "BUSINESS IMPACT:", "IMPACT:"},
}

var nextSections = map[string][]string{
	"SUMMARY":     {"REMEDIATION"},
	"REMEDIATION": {"IMPACT"},
	"IMPACT":      {},
}

// parseSections cuts the generator output into the three briefing fields.
// When the summary label cannot be found the raw text is kept, truncated,
// and the other sections stay empty.
func parseSections(text string) briefingContent {
	summary := extractSection(text, "SUMMARY")
	if summary == "" {
		return briefingContent{summary: feeds.Truncate(strings.TrimSpace(text), rawSummaryLimit)}
	}
	return briefingContent{
		summary:     summary,
		remediation: extractSection(text, "REMEDIATION"),
		impact:      extractSection(text, "IMPACT"),
	}
}

// extractSection returns the text between a section's label and the next
// section's label (or end of text). Empty when the label is absent.
func extractSection(text, section string) string {
	upper := strings.ToUpper(text)

	start := -1
	for _, marker := range sectionMarkers[section] {
		if pos := strings.Index(upper, marker); pos != -1 {
			start = pos + len(marker)
			break
		}
	}
	if start == -1 {
		return ""
	}

	end := len(text)
	for _, next := range nextSections[section] {
		for _, marker := range sectionMarkers[next] {
			if pos := strings.Index(upper[start:], marker); pos != -1 && start+pos < end {
				end = start + pos
			}
		}
	}

	return strings.TrimSpace(text[start:end])
}
