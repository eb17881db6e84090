package model

// Record is one emitted row: a player week or a team defense week.
// Each position has its own concrete type with a fixed field set.
type Record interface {
	Identity() Base
}

// Base holds the fields shared by every record.
type Base struct {
	Season            int      `json:"season"`
	Week              int      `json:"week"`
	SeasonType        string   `json:"season_type"`
	PlayerID          string   `json:"player_id"`
	PlayerName        string   `json:"player_name"`
	PlayerDisplayName string   `json:"player_display_name"`
	Position          Position `json:"position"`
	Team              string   `json:"team"`
	OpponentTeam      string   `json:"opponent_team"`
	HeadshotURL       *string  `json:"headshot_url"`
	FantasyPointsPPR  float64  `json:"fantasy_points_ppr"`
}

// Identity returns the shared fields of a record.
func (b Base) Identity() Base {
	return b
}

// InjuryStatus is the weekly injury designation of a player.
type InjuryStatus struct {
	ReportStatus   string `json:"report_status"`
	PracticeStatus string `json:"practice_status"`
}

const (
	DefaultReportStatus   = "Healthy"
	DefaultPracticeStatus = "Full"
)

// HealthyStatus is used when no injury report matches a player.
func HealthyStatus() InjuryStatus {
	return InjuryStatus{ReportStatus: DefaultReportStatus, PracticeStatus: DefaultPracticeStatus}
}

// PassingLine is shared by the provider row and the QB record.
type PassingLine struct {
	Completions           Stat `json:"completions" csv:"completions"`
	Attempts              Stat `json:"attempts" csv:"attempts"`
	PassingYards          Stat `json:"passing_yards" csv:"passing_yards"`
	PassingTDs            Stat `json:"passing_tds" csv:"passing_tds"`
	PassingInterceptions  Stat `json:"passing_interceptions" csv:"passing_interceptions"`
	SacksSuffered         Stat `json:"sacks_suffered" csv:"sacks_suffered"`
	SackYardsLost         Stat `json:"sack_yards_lost" csv:"sack_yards_lost"`
	Passing2PTConversions Stat `json:"passing_2pt_conversions" csv:"passing_2pt_conversions"`
}

type RushingLine struct {
	Carries               Stat `json:"carries" csv:"carries"`
	RushingYards          Stat `json:"rushing_yards" csv:"rushing_yards"`
	RushingTDs            Stat `json:"rushing_tds" csv:"rushing_tds"`
	RushingFumbles        Stat `json:"rushing_fumbles" csv:"rushing_fumbles"`
	RushingFumblesLost    Stat `json:"rushing_fumbles_lost" csv:"rushing_fumbles_lost"`
	Rushing2PTConversions Stat `json:"rushing_2pt_conversions" csv:"rushing_2pt_conversions"`
}

type ReceivingLine struct {
	Receptions              Stat `json:"receptions" csv:"receptions"`
	Targets                 Stat `json:"targets" csv:"targets"`
	ReceivingYards          Stat `json:"receiving_yards" csv:"receiving_yards"`
	ReceivingTDs            Stat `json:"receiving_tds" csv:"receiving_tds"`
	ReceivingFumbles        Stat `json:"receiving_fumbles" csv:"receiving_fumbles"`
	ReceivingFumblesLost    Stat `json:"receiving_fumbles_lost" csv:"receiving_fumbles_lost"`
	Receiving2PTConversions Stat `json:"receiving_2pt_conversions" csv:"receiving_2pt_conversions"`
	TargetShare             Stat `json:"target_share" csv:"target_share"`
}

// KickingLine carries field goal tallies by distance bucket.
type KickingLine struct {
	FGMade       Stat `json:"fg_made" csv:"fg_made"`
	FGAtt        Stat `json:"fg_att" csv:"fg_att"`
	FGMissed     Stat `json:"fg_missed" csv:"fg_missed"`
	FGBlocked    Stat `json:"fg_blocked" csv:"fg_blocked"`
	FGLong       Stat `json:"fg_long" csv:"fg_long"`
	FGMade0To19  Stat `json:"fg_made_0_19" csv:"fg_made_0_19"`
	FGMade20To29 Stat `json:"fg_made_20_29" csv:"fg_made_20_29"`
	FGMade30To39 Stat `json:"fg_made_30_39" csv:"fg_made_30_39"`
	FGMade40To49 Stat `json:"fg_made_40_49" csv:"fg_made_40_49"`
	FGMade50To59 Stat `json:"fg_made_50_59" csv:"fg_made_50_59"`
	FGMade60Plus Stat `json:"fg_made_60_" csv:"fg_made_60_"`
	PATMade      Stat `json:"pat_made" csv:"pat_made"`
	PATAtt       Stat `json:"pat_att" csv:"pat_att"`
	PATMissed    Stat `json:"pat_missed" csv:"pat_missed"`
}

// DefenseLine carries team defense tallies. PointsAllowed is derived from
// schedules and never read from the provider table.
type DefenseLine struct {
	DefSacks          Stat `json:"def_sacks" csv:"def_sacks"`
	DefInterceptions  Stat `json:"def_interceptions" csv:"def_interceptions"`
	DefFumblesForced  Stat `json:"def_fumbles_forced" csv:"def_fumbles_forced"`
	FumbleRecoveryOpp Stat `json:"fumble_recovery_opp" csv:"fumble_recovery_opp"`
	DefTDs            Stat `json:"def_tds" csv:"def_tds"`
	SpecialTeamsTDs   Stat `json:"special_teams_tds" csv:"special_teams_tds"`
	DefSafeties       Stat `json:"def_safeties" csv:"def_safeties"`
	PointsAllowed     Stat `json:"points_allowed" csv:"-"`
}

type QuarterbackWeek struct {
	Base
	InjuryStatus
	PassingLine
	RushingLine
}

type RunningBackWeek struct {
	Base
	InjuryStatus
	RushingLine
	ReceivingLine
}

// ReceiverWeek covers both WR and TE.
type ReceiverWeek struct {
	Base
	InjuryStatus
	ReceivingLine
	RushingLine
}

type KickerWeek struct {
	Base
	InjuryStatus
	KickingLine
}

// DefenseWeek is a synthesized team defense record.
type DefenseWeek struct {
	Base
	DefenseLine
}

// OtherWeek is emitted for positions without a stat allow-list.
type OtherWeek struct {
	Base
	InjuryStatus
}
