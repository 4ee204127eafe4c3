package event

// Provider is the opaque external collaborator that produced an Event —
// a bot session, a meta channel, a scheduler ping. The routing core never
// calls methods on a Provider; it only compares identity.
type Provider interface {
	ProviderName() string
}

// BotSession identifies events originating from a live chat session.
type BotSession struct{ Name string }

func (b BotSession) ProviderName() string { return b.Name }

// MetaProvider identifies events originating from platform metadata
// (heartbeats, connection state changes).
type MetaProvider struct{ Name string }

func (m MetaProvider) ProviderName() string { return m.Name }

// ChannelProvider identifies events originating from a named channel
// bridge (e.g. a webhook relay).
type ChannelProvider struct{ Name string }

func (c ChannelProvider) ProviderName() string { return c.Name }

// schedulerSource is the Provider tag attached to synthetic timeout-ping
// events raised by the wait subsystem. There is exactly one instance;
// callers compare against SchedulerSource by identity.
type schedulerSource struct{}

func (schedulerSource) ProviderName() string { return "scheduler" }

// SchedulerSource is the singleton Provider identifying self-scheduled
// wait-timeout ping events.
var SchedulerSource Provider = schedulerSource{}

// MethodNotInjectedError is raised by a collaborator-facing method (e.g.
// a reply helper layered outside this core) that has not been bound to a
// live transport.
type MethodNotInjectedError struct{ Method string }

func (e *MethodNotInjectedError) Error() string {
	return "method not injected: " + e.Method
}
