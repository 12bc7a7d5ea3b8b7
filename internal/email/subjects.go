package email

const (
	subjectFollowupScheduledFmt = "Follow-up scheduled for lead %s"
	subjectFollowupReminderFmt  = "Follow-up due for lead %s"
	subjectSaleRecordedFmt      = "Sale recorded for lead %s"
	subjectTargetAchievedFmt    = "Target achieved: %s"
)
