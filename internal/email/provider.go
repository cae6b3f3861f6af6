package email

// Provider abstracts outgoing mail so services never depend on SMTP
// directly and tests can swap in a mock.
type Provider interface {
	SendWelcome(to, name string) error
}

// NoopProvider is used when no SMTP host is configured.
type NoopProvider struct{}

func (NoopProvider) SendWelcome(to, name string) error { return nil }
