package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconDone      = "✓"
	IconOpen      = "○"
	IconCheckList = "" // nf-fa-tasks
	IconMail      = ""
	IconBrain     = "\U000F09D1"
	IconHistory   = "" // nf-fa-history
	IconBoard     = "" // nf-fa-columns

	IconNotifyInfo    = "\uf05a" // nf-fa-info_circle
	IconNotifyWarning = "\uf071" // nf-fa-warning
	IconNotifyError   = "\uf057" // nf-fa-times_circle
)
