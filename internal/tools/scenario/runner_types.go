package scenario

// scenarioState carries the ids accumulated while a scenario runs. Seats and
// personas are addressed by the names the script gave them; arguments by the
// order the script added them.
type scenarioState struct {
	gameID    string
	hostName  string
	users     map[string]string
	personas  map[string]string
	arguments []string
}
