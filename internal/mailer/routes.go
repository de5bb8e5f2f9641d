package mailer

// Branch names accepted on the contact form. Anything else routes to the
// default mailbox.
const (
	BranchRuimsig     = "Ruimsig"
	BranchWeltevreden = "Weltevreden Park"
)

// Routes maps a submission's branch selection to a destination mailbox.
// Branch-specific mailboxes fall back to Default when unset.
type Routes struct {
	Default     string
	Ruimsig     string
	Weltevreden string
}

// To returns the destination mailbox for the given branch.
func (r Routes) To(branch string) string {
	switch branch {
	case BranchRuimsig:
		if r.Ruimsig != "" {
			return r.Ruimsig
		}
	case BranchWeltevreden:
		if r.Weltevreden != "" {
			return r.Weltevreden
		}
	}
	return r.Default
}
