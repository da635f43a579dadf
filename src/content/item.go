package content

// Item is one row of ingested lesson content. Items are immutable once
// ingested; the JSON field names are the wire contract the assistant's tool
// output is built from.
type Item struct {
	ID    string `json:"contentId"`
	Title string `json:"contentName"`
	URL   string `json:"contentURL"`
	Type  string `json:"contentType"`
	Goal  string `json:"contentGoal"`
	Age   string `json:"contentAge"`
	Level string `json:"contentLevel"`
	Skill string `json:"contentSkill"`
}

// ScoredItem pairs an item with the search service's relevance score.
type ScoredItem struct {
	Item
	Score float64 `json:"score"`
}
