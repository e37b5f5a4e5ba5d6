package driven

// Announcer receives short status messages for the user,
// such as find results. An empty message clears the status.
type Announcer interface {
	Announce(message string)
}
