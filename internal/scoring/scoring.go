// Package scoring holds the fantasy formulas that override or replace the
// provider's passthrough points.
package scoring

import "github.com/fortuna/gridiron/internal/model"

// Kicker scores a kicker week by field goal distance:
// 3 for 0-39 yards, 4 for 40-49, 5 for 50+, 1 per PAT, -1 per miss.
func Kicker(k model.KickingLine) float64 {
	short := k.FGMade0To19.Float() + k.FGMade20To29.Float() + k.FGMade30To39.Float()
	long := k.FGMade50To59.Float() + k.FGMade60Plus.Float()

	return 3*short +
		4*k.FGMade40To49.Float() +
		5*long +
		k.PATMade.Float() -
		k.FGMissed.Float() -
		k.PATMissed.Float()
}

// PointsAllowedBucket maps points allowed to the defense tier bonus.
func PointsAllowedBucket(pa float64) float64 {
	switch {
	case pa <= 0:
		return 10
	case pa <= 6:
		return 7
	case pa <= 13:
		return 4
	case pa <= 20:
		return 1
	case pa <= 27:
		return 0
	case pa <= 34:
		return -1
	default:
		return -4
	}
}

// DefenseOptions toggles optional scoring categories.
type DefenseOptions struct {
	// FumblesForced awards one point per forced fumble. Off by default.
	FumblesForced bool
}

// TeamDefense scores a team defense week. A missing points_allowed value
// contributes nothing.
func TeamDefense(d model.DefenseLine, opts DefenseOptions) float64 {
	pts := d.DefSacks.Float() +
		2*d.DefInterceptions.Float() +
		2*d.FumbleRecoveryOpp.Float() +
		6*(d.DefTDs.Float()+d.SpecialTeamsTDs.Float()) +
		2*d.DefSafeties.Float()

	if opts.FumblesForced {
		pts += d.DefFumblesForced.Float()
	}
	if d.PointsAllowed.Valid {
		pts += PointsAllowedBucket(d.PointsAllowed.Value)
	}
	return pts
}
