package sports

// Sport selects the box-score variant carried by a BoxScore envelope.
type Sport string

const (
	SportBasketball Sport = "basketball"
	SportHockey     Sport = "hockey"
	SportBaseball   Sport = "baseball"
)

// BoxScore is the full detail document for a single game. It is a closed
// tagged union: Sport names the variant and exactly one of the variant
// pointers is populated. The cache and orchestrator treat it as an opaque
// serializable value; only Validate inspects sport-specific structure.
type BoxScore struct {
	GameID string `json:"gameId"`
	Sport  Sport  `json:"sport"`
	Game   Game   `json:"game"`

	Basketball *BasketballBox `json:"basketball,omitempty"`
	Hockey     *HockeyBox     `json:"hockey,omitempty"`
	Baseball   *BaseballBox   `json:"baseball,omitempty"`
}

// PlayerLine is a basketball player stat line.
type PlayerLine struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Minutes  int    `json:"minutes"`
	Points   int    `json:"points"`
	Rebounds int    `json:"rebounds"`
	Assists  int    `json:"assists"`
}

// BasketballBox carries per-team player stat lines.
type BasketballBox struct {
	HomePlayers []PlayerLine `json:"homePlayers"`
	AwayPlayers []PlayerLine `json:"awayPlayers"`
}

// SkaterLine is a hockey player stat line.
type SkaterLine struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Goals    int    `json:"goals"`
	Assists  int    `json:"assists"`
	Shots    int    `json:"shots"`
}

// HockeyBox carries per-team skater lines.
type HockeyBox struct {
	HomeSkaters []SkaterLine `json:"homeSkaters"`
	AwaySkaters []SkaterLine `json:"awaySkaters"`
}

// BattingLine is a baseball batter stat line.
type BattingLine struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	AtBats   int    `json:"atBats"`
	Hits     int    `json:"hits"`
	Runs     int    `json:"runs"`
	RBI      int    `json:"rbi"`
}

// BaseballBox carries per-team batting lines.
type BaseballBox struct {
	HomeBatters []BattingLine `json:"homeBatters"`
	AwayBatters []BattingLine `json:"awayBatters"`
}
