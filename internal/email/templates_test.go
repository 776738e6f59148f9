package email

import (
	"strings"
	"testing"
)

func TestRenderLeadNotificationTemplate(t *testing.T) {
	content, err := renderEmailTemplate("lead_notification.html", leadNotificationEmailData{
		Title:        "New qualified lead",
		Heading:      "A lead just qualified",
		ManagerName:  "Dana",
		PropertyName: "Maple Court",
		LeadScore:    "85",
		CTALabel:     "Open conversation",
		CTAURL:       "https://portal.example.com/conversations",
	})
	if err != nil {
		t.Fatalf("renderEmailTemplate: %v", err)
	}

	for _, want := range []string{"Dana", "Maple Court", "85", "Open conversation", "https://portal.example.com/conversations"} {
		if !strings.Contains(content, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}
}

func TestRenderOmitsScoreLineWhenUnscored(t *testing.T) {
	content, err := renderEmailTemplate("lead_notification.html", leadNotificationEmailData{
		Title:        "New qualified lead",
		Heading:      "A lead just qualified",
		ManagerName:  "Dana",
		PropertyName: "Maple Court",
		LeadScore:    formatScore(nil),
		CTALabel:     "Open conversation",
		CTAURL:       "https://portal.example.com/conversations",
	})
	if err != nil {
		t.Fatalf("renderEmailTemplate: %v", err)
	}

	if strings.Contains(content, "lead score") {
		t.Error("score line rendered for an unscored conversation")
	}
	if !strings.Contains(content, "Maple Court") {
		t.Error("rendered email missing property name")
	}
}

func TestFormatScore(t *testing.T) {
	if got := formatScore(nil); got != "" {
		t.Errorf("formatScore(nil) = %q, want empty", got)
	}
	score := 42
	if got := formatScore(&score); got != "42" {
		t.Errorf("formatScore(42) = %q", got)
	}
}

func TestSubjectPerNotificationType(t *testing.T) {
	if got := subjectFor("tour_scheduled"); got != subjectTourScheduled {
		t.Errorf("subjectFor(tour_scheduled) = %q", got)
	}
	if got := subjectFor("new_qualified_lead"); got != subjectQualifiedLead {
		t.Errorf("subjectFor(new_qualified_lead) = %q", got)
	}
}
