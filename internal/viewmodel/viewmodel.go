package viewmodel

// FigureOption describes one library figure on the home page.
type FigureOption struct {
	Index int
	Name  string
	Edges int
	Valid bool
	Error string
}

// HomePage holds data for the landing page.
type HomePage struct {
	Title   string
	Figures []FigureOption
}

// GamePage holds data for the main game page template.
type GamePage struct {
	Title    string
	GameID   string
	ShareURL string
	IsOwner  bool
	Status   string
	Round    RoundFragment
	Scores   ScoresFragment
}

// RoundFragment holds data for the round UI fragment.
type RoundFragment struct {
	GameID         string
	Status         string
	IsOwner        bool
	CurrentRound   int
	TotalRounds    int
	RoundStartedMs int64
	DurationMs     int64
	FigureIndex    int
	FigureName     string
	FigureEdges    int
	Tolerance      float64
	Progress       int
	Lost           bool
	Completed      bool
	NextRoundMs    int64
	RoundKey       string
}

// ScoresFragment holds data for the scores panel.
type ScoresFragment struct {
	GameID  string
	Status  string
	IsOwner bool
	Points  int
	Best    int
	Message string
}
