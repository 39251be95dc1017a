package model

const (
	DefaultTopN = 5
	MaxTopN     = 20
)

// StatsScope selects the rows an aggregate runs over. A zero UserID is the
// global scope.
type StatsScope struct {
	UserID int64
}

func GlobalScope() StatsScope           { return StatsScope{} }
func UserScope(userID int64) StatsScope { return StatsScope{UserID: userID} }

func (s StatsScope) IsGlobal() bool { return s.UserID == 0 }

type LanguageCount struct {
	Language string
	Count    int
}

type UserRepoCount struct {
	Login     string
	RepoCount int
}

type MonthCount struct {
	Month string // YYYY-MM
	Count int
}

// StatisticsSnapshot is computed per request. TotalUsers and TopUsersByRepos
// are only meaningful in the global scope.
type StatisticsSnapshot struct {
	Scope                  StatsScope
	TotalRepos             int
	TotalUsers             int
	Languages              []LanguageCount
	TopUsersByRepos        []UserRepoCount
	TimelineCreatedMonthly []MonthCount
}

// NewStatisticsSnapshot returns a snapshot with non-nil, empty lists.
func NewStatisticsSnapshot(scope StatsScope) *StatisticsSnapshot {
	s := &StatisticsSnapshot{
		Scope:                  scope,
		Languages:              []LanguageCount{},
		TimelineCreatedMonthly: []MonthCount{},
	}
	if scope.IsGlobal() {
		s.TopUsersByRepos = []UserRepoCount{}
	}
	return s
}
