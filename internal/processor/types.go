package processor

// Processor turns match events into notifications.
type Processor struct {
	matches  MatchReader
	players  PlayerReader
	notifier Notifier
}
