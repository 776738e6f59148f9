package email

const (
	subjectQualifiedLead = "New qualified lead"
	subjectTourScheduled = "Tour scheduled"
)

func subjectFor(notificationType string) string {
	if notificationType == "tour_scheduled" {
		return subjectTourScheduled
	}
	return subjectQualifiedLead
}
